package exitcodes

// Exit codes for logsweep
// The interactive flow itself always ends with Success, whatever the user
// picked. The other codes are only reachable through opt-in settings or a
// signal.
const (
	Success       = 0   // Run finished (any choice, including invalid input)
	InvalidConfig = 2   // --config file invalid or missing, or a configured file inside logs/ or data/output/
	RuntimeError  = 4   // History database or other opt-in sink failed to open
	Interrupted   = 130 // SIGINT/SIGTERM while waiting at the prompt
)
