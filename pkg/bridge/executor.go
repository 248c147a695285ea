package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/CompassSecurity/bridgerun/pkg/format"
	"github.com/rs/zerolog/log"
)

// Executor locates the installed bridge and runs it.
type Executor struct {
	InstallDir string
	Platform   Platform
	// LookPath searches the system path, exec.LookPath unless replaced.
	LookPath func(file string) (string, error)
	Stdout   io.Writer
	Stderr   io.Writer
}

func NewExecutor(installDir string, platform Platform) *Executor {
	return &Executor{
		InstallDir: installDir,
		Platform:   platform,
		LookPath:   exec.LookPath,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// ResolveExecutable returns the bridge path, preferring the install directory over the system path.
func (e *Executor) ResolveExecutable() (string, error) {
	exe := e.Platform.ExecutableName()
	var searched []string

	if e.InstallDir != "" {
		candidate := filepath.Join(e.InstallDir, exe)
		searched = append(searched, candidate)
		if format.IsRegularFile(candidate) {
			return candidate, nil
		}
	}

	if e.LookPath != nil {
		searched = append(searched, "$PATH")
		if p, err := e.LookPath(exe); err == nil && p != "" {
			return p, nil
		}
	}

	return "", &BridgeNotFoundError{Name: exe, Searched: searched}
}

// ExecuteBridgeCommand runs the bridge with cmd in workingDir and returns its exit code.
// A non-zero exit code is not an error here, failing to start the process is.
func (e *Executor) ExecuteBridgeCommand(ctx context.Context, cmd Command, workingDir string) (int, error) {
	executable, err := e.ResolveExecutable()
	if err != nil {
		return -1, err
	}

	log.Info().Str("bridge", executable).Str("command", cmd.String()).Str("dir", workingDir).Msg("Executing bridge")

	// #nosec G204 - executable is the resolved bridge binary, arguments are built by CommandBuilder
	proc := exec.CommandContext(ctx, executable, cmd...)
	proc.Dir = workingDir
	proc.Stdout = e.Stdout
	proc.Stderr = e.Stderr

	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Debug().Int("exitCode", exitErr.ExitCode()).Msg("Bridge exited")
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed executing bridge: %w", err)
	}

	log.Debug().Int("exitCode", 0).Msg("Bridge exited")
	return 0, nil
}
