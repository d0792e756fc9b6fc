package core

// LogLine is a raw line read from a tailed source before classification.
type LogLine struct {
	Instance string `json:"instance"`
	TsUnixMs int64  `json:"ts_unix_ms"`
	Stream   string `json:"stream"` // "file", "stdout", "stderr", "journal"
	Line     string `json:"line"`
}
