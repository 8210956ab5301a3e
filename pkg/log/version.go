package log

// Version of the log module. The facade refuses to build a server against a
// log module older than MinCompatibleVersion.
const (
	Version              = "1.1.0"
	MinCompatibleVersion = "1.0.0"
)
