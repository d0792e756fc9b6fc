package core

import "fmt"

// Log record types produced by the logs endpoint.
const (
	TypeError   = "error"
	TypeWarn    = "warn"
	TypeInfo    = "info"
	TypeMessage = "message"
)

// Type selectors understood by the log filter in addition to the record types.
const (
	SelectAll  = "all"
	SelectMisc = "misc"
)

// FilterTypes lists the type selector values in display order.
var FilterTypes = []string{SelectAll, TypeError, TypeWarn, TypeInfo, TypeMessage, SelectMisc}

// LogRecord is a single pre-formatted log entry as served by an instance.
type LogRecord struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// String renders the record the way the CLI prints it.
func (r LogRecord) String() string {
	return fmt.Sprintf("[%s] %s", r.Type, r.Content)
}

// Batch is the body of a successful logs response.
type Batch struct {
	LastUpdate int64       `json:"last_update"`
	Logs       []LogRecord `json:"logs"`
}
