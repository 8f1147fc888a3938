// Package validation runs the startup checks printed to the console before
// the server starts, and the setup instructions shown when a credential is
// missing.
package validation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// Outcome is what a check reports.
type Outcome struct {
	Status  StepStatus
	Message string
	Error   error
}

// Pass, Warn, Fail and Skip build Outcomes.
func Pass(msg string) Outcome            { return Outcome{Status: StepPassed, Message: msg} }
func Warn(msg string, err error) Outcome { return Outcome{Status: StepWarning, Message: msg, Error: err} }
func Fail(msg string, err error) Outcome { return Outcome{Status: StepFailed, Message: msg, Error: err} }
func Skip(msg string) Outcome            { return Outcome{Status: StepSkipped, Message: msg} }

// Check is one named startup check.
type Check struct {
	Name string
	Run  func() Outcome
}

// ValidationSuite runs startup checks in order and prints coloured progress.
// Warnings and skips do not fail the suite.
type ValidationSuite struct {
	title        string
	output       io.Writer
	checks       []Check
	showProgress bool
	failFast     bool
}

// NewValidationSuite creates an empty suite printing to stdout.
func NewValidationSuite(title string) *ValidationSuite {
	return &ValidationSuite{
		title:        title,
		output:       os.Stdout,
		showProgress: true,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast skips the remaining checks after the first failure.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// Add appends checks.
func (s *ValidationSuite) Add(checks ...Check) *ValidationSuite {
	s.checks = append(s.checks, checks...)
	return s
}

// Validate runs every check and returns the combined result.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, len(s.checks))

	if s.showProgress {
		s.printHeader(s.title)
	}

	failed := false
	for _, check := range s.checks {
		if failed && s.failFast {
			step := ValidationStep{Name: check.Name, Status: StepSkipped, Message: "Skipped after earlier failure"}
			if s.showProgress {
				s.printStep(step)
			}
			steps = append(steps, step)
			continue
		}
		step := s.runStep(check)
		if step.Status == StepFailed {
			failed = true
		}
		steps = append(steps, step)
	}

	result := s.buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// runStep executes a check with timing and progress output.
func (s *ValidationSuite) runStep(check Check) ValidationStep {
	if s.showProgress {
		s.printStepStart(check.Name)
	}

	startTime := time.Now()
	outcome := check.Run()
	step := ValidationStep{
		Name:    check.Name,
		Status:  outcome.Status,
		Message: outcome.Message,
		Error:   outcome.Error,
		Latency: time.Since(startTime),
	}

	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// buildResult creates a SuiteResult from completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		}
	}

	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution (for real-time feedback).
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  ◌ %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	// Add message if present
	if step.Message != "" {
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(s.output, " - %s", step.Message)
	}

	fmt.Fprintln(s.output)

	// Print error details for failed and warning steps
	if (step.Status == StepFailed || step.Status == StepWarning) && step.Error != nil {
		errColor := color.New(color.FgRed)
		errColor.Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Ready ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed, %d warnings, in %v)",
			result.PassedSteps, result.TotalSteps, result.Warnings, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Setup Required ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ━━━")
	}

	fmt.Fprintln(s.output)
}

// GetErrors returns all errors from failed steps.
func (r SuiteResult) GetErrors() []error {
	errs := make([]error, 0)
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			errs = append(errs, step.Error)
		}
	}
	return errs
}

// GetFirstError returns the first error from failed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	if r.Success {
		sb.WriteString("Startup checks passed: ")
	} else {
		sb.WriteString("Startup checks failed: ")
	}
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
