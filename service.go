// service.go runs the studio under the platform service manager (Windows
// services, systemd, launchd) using github.com/kardianos/service.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"

	"imagestudio/core"
)

// stopGrace is added to the shutdown timeout when Stop waits for run to return.
const stopGrace = 5 * time.Second

// Program implements service.Interface. Start runs the studio in the
// background and Stop requests the same graceful shutdown as SIGTERM.
type Program struct {
	run  func(stop <-chan struct{}) int
	exit func(code int)

	// stopTimeout bounds how long Stop waits. Zero means SHUTDOWN_TIMEOUT
	// plus stopGrace, read when Stop is called so a value from .env counts.
	stopTimeout time.Duration

	stop chan struct{}
	done chan struct{}
	code int
}

// NewProgram returns a Program that serves the studio.
func NewProgram() *Program {
	return &Program{run: run, exit: os.Exit}
}

// Start is called when the service is started. It must not block.
func (p *Program) Start(s service.Service) error {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.code = p.run(p.stop)
		select {
		case <-p.stop:
		default:
			// Exited without Stop, so report the failure to the service manager
			if p.code != core.ExitCodeSuccess {
				p.exit(p.code)
			}
		}
	}()
	return nil
}

// Stop is called when the service is stopped.
func (p *Program) Stop(s service.Service) error {
	close(p.stop)

	select {
	case <-p.done:
		return nil
	case <-time.After(p.waitTimeout()):
		return fmt.Errorf("timeout waiting for service to stop")
	}
}

func (p *Program) waitTimeout() time.Duration {
	if p.stopTimeout > 0 {
		return p.stopTimeout
	}
	shutdown := core.ParseDurationEnv("SHUTDOWN_TIMEOUT", int(core.DefaultShutdownTimeout/time.Second))
	if shutdown <= 0 {
		shutdown = core.DefaultShutdownTimeout
	}
	return shutdown + stopGrace
}

// ServiceConfig returns the service definition.
func ServiceConfig() *service.Config {
	cfg := &service.Config{
		Name:        "imagestudio",
		DisplayName: "Image Studio",
		Description: "Web studio for generating images from text prompts",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
	// .env is read from the working directory
	if exe, err := os.Executable(); err == nil {
		cfg.WorkingDirectory = filepath.Dir(exe)
	}
	return cfg
}

// serviceControl is the subset of service.Service used by the commands.
type serviceControl interface {
	Install() error
	Uninstall() error
	Start() error
	Stop() error
	Restart() error
	Status() (service.Status, error)
}

func newService() (serviceControl, error) {
	s, err := service.New(NewProgram(), ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// RunAsService runs under the service manager when not started from a
// terminal. It reports false when running interactively.
func RunAsService() (bool, error) {
	if service.Interactive() {
		return false, nil
	}

	s, err := service.New(NewProgram(), ServiceConfig())
	if err != nil {
		return false, fmt.Errorf("failed to create service: %w", err)
	}
	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}
	return true, nil
}

// PrintServiceUsage prints the help for the service commands.
func PrintServiceUsage(w io.Writer) {
	fmt.Fprintln(w, "Image Studio Service Management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: imagestudio <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  install    Install the application as a system service")
	fmt.Fprintln(w, "  uninstall  Remove the system service (alias: remove)")
	fmt.Fprintln(w, "  start      Start the service")
	fmt.Fprintln(w, "  stop       Stop the service")
	fmt.Fprintln(w, "  restart    Restart the service (stop then start)")
	fmt.Fprintln(w, "  status     Show the current service status")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run without arguments to start the studio in the foreground.")
}

// HandleServiceCommand handles service-related command-line arguments.
// Returns true if a service command was handled, false otherwise. A failed
// command exits the process.
func HandleServiceCommand(args []string) bool {
	handled, err := handleServiceCommand(args, newService, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	return handled
}

func handleServiceCommand(args []string, open func() (serviceControl, error), out io.Writer) (bool, error) {
	if len(args) < 2 {
		return false, nil
	}

	var (
		op   func(serviceControl) error
		done string
	)
	switch args[1] {
	case "install":
		op, done = serviceControl.Install, "Service installed successfully"
	case "uninstall", "remove":
		op, done = serviceControl.Uninstall, "Service uninstalled successfully"
	case "start":
		op, done = serviceControl.Start, "Service started successfully"
	case "stop":
		op, done = serviceControl.Stop, "Service stopped successfully"
	case "restart":
		op, done = serviceControl.Restart, "Service restarted successfully"
	case "status":
		op = func(s serviceControl) error {
			status, err := s.Status()
			if err != nil && !errors.Is(err, service.ErrNotInstalled) {
				return fmt.Errorf("failed to get service status: %w", err)
			}
			fmt.Fprintln(out, statusText(status, err))
			return nil
		}
	case "version", "-v", "--version":
		fmt.Fprintln(out, core.GetVersionInfo())
		return true, nil
	case "help", "-h", "--help", "-help":
		PrintServiceUsage(out)
		return true, nil
	default:
		return false, nil
	}

	s, err := open()
	if err != nil {
		return true, err
	}
	if err := op(s); err != nil {
		return true, fmt.Errorf("%s: %w", args[1], err)
	}
	if done != "" {
		fmt.Fprintln(out, done)
	}
	return true, nil
}

func statusText(status service.Status, err error) string {
	if errors.Is(err, service.ErrNotInstalled) {
		return "Service is not installed"
	}
	switch status {
	case service.StatusRunning:
		return "Service is running"
	case service.StatusStopped:
		return "Service is stopped"
	default:
		return "Service status unknown"
	}
}
