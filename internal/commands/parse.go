package commands

import (
	"strings"

	"github.com/mattn/go-shellwords"
	"golang.org/x/text/unicode/norm"
)

// StripInvocation returns the command text of content when it addresses the
// bot, either by a leading mention of botID or by prefix (when non-empty).
func StripInvocation(content, botID, prefix string) (string, bool) {
	content = strings.TrimSpace(content)

	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if botID != "" && strings.HasPrefix(content, mention) {
			return strings.TrimSpace(content[len(mention):]), true
		}
	}
	if prefix != "" && strings.HasPrefix(content, prefix) {
		return strings.TrimSpace(content[len(prefix):]), true
	}
	return "", false
}

// tokenize splits command text into words, honoring shell-style quoting.
func tokenize(text string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false
	return parser.Parse(norm.NFC.String(text))
}

// parseBool accepts the spellings users commonly type for a boolean.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "t", "1", "enable", "on":
		return true, true
	case "no", "n", "false", "f", "0", "disable", "off":
		return false, true
	}
	return false, false
}

// parseChannelRef extracts a channel id from a "<#id>" mention. Other input
// is returned unchanged for matching by id or name.
func parseChannelRef(arg string) string {
	if strings.HasPrefix(arg, "<#") && strings.HasSuffix(arg, ">") {
		return arg[2 : len(arg)-1]
	}
	return strings.TrimPrefix(arg, "#")
}
