package core

import (
	"os"
	"syscall"
)

// Exit codes for the application.
// Signal-based exits follow the Unix 128 + signal number convention.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)

// ExitCodeForSignal returns the exit code for a process killed by sig.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return ExitCodeSIGINT
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	default:
		return ExitCodeError
	}
}

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}
