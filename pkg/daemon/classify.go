package daemon

import (
	"regexp"

	"github.com/modoterra/logpanel/pkg/core"
)

var (
	errorLevel = regexp.MustCompile(`(?i)\b(fatal|panic|crit|critical|emerg|emergency|alert|err|error|severe)\b`)
	warnLevel  = regexp.MustCompile(`(?i)\b(warn|warning)\b`)
	infoLevel  = regexp.MustCompile(`(?i)\b(info|notice)\b`)
)

// Classify maps a raw line to a record type by the first matching level
// token class, checked from most to least severe.
func Classify(line string) string {
	switch {
	case errorLevel.MatchString(line):
		return core.TypeError
	case warnLevel.MatchString(line):
		return core.TypeWarn
	case infoLevel.MatchString(line):
		return core.TypeInfo
	default:
		return core.TypeMessage
	}
}
