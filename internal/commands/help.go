package commands

import (
	"fmt"
	"strings"
)

const botDescription = "Deletes old messages from certain channels."

type commandInfo struct {
	name        string
	params      string
	help        string
	subcommands []commandInfo
}

var commandTable = []commandInfo{
	{
		name:   "channels",
		params: "<subcommand>",
		help:   "Manage list of channels that should be swept",
		subcommands: []commandInfo{
			{name: "add", params: "<channel>", help: "Add a channel to be swept"},
			{name: "list", help: "Show all channels in this server being swept"},
			{name: "remove", params: "<channel>", help: "Remove a channel from sweep list"},
		},
	},
	{name: "help", params: "[command]", help: "Shows this message"},
	{name: "maxage", params: "[ageMinutes]", help: "Get/set age (in minutes) of messages which should be swept, for current channel"},
	{name: "sweepnow", params: "[ignoreAge=False]", help: "Sweep the current channel immediately, optionally ignoring message ages"},
}

func lookupInfo(path string) (commandInfo, bool) {
	words := strings.Fields(path)
	if len(words) == 0 {
		return commandInfo{}, false
	}

	table := commandTable
	var found commandInfo
	for _, w := range words {
		ok := false
		for _, c := range table {
			if c.name == w {
				found, table, ok = c, c.subcommands, true
				break
			}
		}
		if !ok {
			return commandInfo{}, false
		}
	}
	found.name = strings.Join(words, " ")
	return found, true
}

// HelpText renders the help page. An empty path gives the overview; a
// command path ("channels add") gives that command's usage.
func HelpText(invoker, path string) (string, error) {
	b := &strings.Builder{}
	b.WriteString("```\n")

	if strings.TrimSpace(path) == "" {
		b.WriteString(botDescription + "\n\n")
		writeCommandList(b, "Commands:", commandTable)
		fmt.Fprintf(b, "\nType %s help command for more info on a command.\n", invoker)
		b.WriteString("```")
		return b.String(), nil
	}

	info, ok := lookupInfo(path)
	if !ok {
		return "", fmt.Errorf("No command called \"%s\" found.", strings.TrimSpace(path))
	}

	usage := strings.TrimSpace(invoker + " " + info.name + " " + info.params)
	b.WriteString(usage + "\n\n" + info.help + "\n")
	if len(info.subcommands) > 0 {
		b.WriteString("\n")
		writeCommandList(b, "Commands:", info.subcommands)
	}
	b.WriteString("```")
	return b.String(), nil
}

func writeCommandList(b *strings.Builder, title string, cmds []commandInfo) {
	width := 0
	for _, c := range cmds {
		width = max(width, len(c.name))
	}

	b.WriteString(title + "\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "  %-*s %s\n", width, c.name, c.help)
	}
}
