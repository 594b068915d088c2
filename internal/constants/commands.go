package constants

// Command names understood by the command surface.
const (
	CommandChannels = "channels"
	CommandMaxAge   = "maxage"
	CommandSweepNow = "sweepnow"
	CommandHelp     = "help"

	SubcommandAdd    = "add"
	SubcommandRemove = "remove"
	SubcommandList   = "list"
)

// Sweep triggers, used as log fields and metric labels.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)
