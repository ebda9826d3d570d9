package cli

import "fmt"

// ExitError maps a command failure to a process exit code. Validate uses
// distinct codes for manual-review and reject so CI can branch on them.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit with code %d", e.Code)
	}
	return e.Message
}
