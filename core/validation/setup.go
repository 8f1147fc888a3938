package validation

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"imagestudio/core"
)

// PrintSetupInstructions prints the steps that resolve a missing credential
// or other configuration problem.
func PrintSetupInstructions(w io.Writer, cerr *core.ConfigError) {
	if cerr == nil {
		return
	}

	fmt.Fprintln(w)
	color.New(color.FgYellow, color.Bold).Fprintf(w, "⚠ %s\n", cerr.Message)
	if cerr.Action != "" {
		fmt.Fprintf(w, "  %s\n", cerr.Action)
	}
	if len(cerr.Steps) > 0 {
		fmt.Fprintln(w)
		color.New(color.FgCyan).Fprintln(w, "  To fix this:")
		for i, step := range cerr.Steps {
			fmt.Fprintf(w, "    %d. %s\n", i+1, step)
		}
	}
	fmt.Fprintln(w)
	color.New(color.FgHiBlack).Fprintln(w, "  The web page shows these instructions until the application is restarted with a credential.")
	fmt.Fprintln(w)
}
