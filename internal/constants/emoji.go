package constants

// Reactions used as terse replies to commands.
const (
	EmojiCheck = "✅"          // success, affirmative option
	EmojiCross = "❎"          // negative option
	EmojiStop  = "⏹"          // confirmation denied
	EmojiPoop  = "\U0001F4A9" // failure or confirmation timed out
)
