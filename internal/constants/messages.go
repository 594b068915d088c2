package constants

// Replies for configuration outcomes.
const (
	MsgAlreadySweeping   = "I am already sweeping %s"
	MsgNotSweeping       = "I am not currently sweeping %s"
	MsgSweepingList      = "In `%s` I am configured to sweep:\n\t%s"
	MsgNoChannels        = "I'm not configured to sweep any channels in `%s`"
	MsgSweepNotEnabled   = "Sweeping is not enabled for %s"
	MsgMaxAge            = "Messages in %s will be deleted after %s"
	MsgConfirmIgnoreAge  = "Are you sure you want to delete **all unpinned messages** in %s, regardless of age?"
	MsgPresenceSweeping  = "messages go poof in #%s"
	MsgChannelListIndent = "\n\t"
)

// Replies for command errors.
const (
	MsgUnknownCommand    = "Command \"%s\" is not found"
	MsgExpectedCommand   = "Expected a command"
	MsgExpectedSubcmd    = "Expected a subcommand"
	MsgMissingArgument   = "%s is a required argument that is missing."
	MsgBadInteger        = "Converting to \"int\" failed for parameter \"%s\"."
	MsgBadBool           = "%s is not a recognised boolean option"
	MsgChannelNotFound   = "Channel \"%s\" not found."
	MsgTooManyArguments  = "Too many arguments passed to %s"
	MsgMissingPermission = "You are missing Administrator permission(s) to run this command."
	MsgStroke            = "Oopsie poopsie! I had a stroke trying to process that"
)

// Startup messages.
const (
	MsgNeedToken     = "Need bot token to run!"
	MsgNeedTokenHint = "Define BOT_TOKEN in environment, or create token.txt in working directory"

	MsgConfigValidationError = "❌ Configuration validation failed:\n"
	MsgConfigValidatePrefix  = "  - %v\n"
)
