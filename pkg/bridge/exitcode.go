package bridge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
)

// ExitCodeTable maps bridge exit codes to their documented cause.
var ExitCodeTable = map[string]string{
	"0": "Bridge execution successfully completed",
	"1": "Undefined error, check error logs",
	"2": "Error from adapter end",
	"3": "Failed to shutdown the bridge",
	"8": "The config option bridge.break has been set to true",
	"9": "Bridge initialization failed",
}

var trailingNumberRegex = regexp.MustCompile(`(\d+)$`)

// TranslateExitCode rewrites a failure status line ending in an exit code into
// "Exit Code: N <cause>". Lines without a known trailing code are returned unchanged.
// Only the last digit of the trailing number is looked up.
func TranslateExitCode(message string) string {
	clean := strings.TrimSpace(stripansi.Strip(message))

	token := trailingNumberRegex.FindString(clean)
	if token == "" {
		return message
	}

	code := token[len(token)-1:]
	cause, ok := ExitCodeTable[code]
	if !ok {
		return message
	}
	return fmt.Sprintf("Exit Code: %s %s", code, cause)
}
