// Package runner sequences a single bridge run: validate, fetch, build, execute.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/CompassSecurity/bridgerun/pkg/bridge"
	"github.com/CompassSecurity/bridgerun/pkg/config"
	"github.com/CompassSecurity/bridgerun/pkg/scan"
	"github.com/CompassSecurity/bridgerun/pkg/system"
	"github.com/rs/zerolog/log"
)

const failurePrefix = "Workflow failed! "

type Fetcher interface {
	DownloadBridge(ctx context.Context, tempDir string) (bridge.InstalledArtifact, error)
}

type CommandPreparer interface {
	PrepareCommand(cfg scan.Configuration, tempDir string) (bridge.Command, error)
}

type Executor interface {
	ExecuteBridgeCommand(ctx context.Context, cmd bridge.Command, workingDir string) (int, error)
}

// Options are settings that do not come from job inputs.
type Options struct {
	// GOOS selects the bridge platform, runtime.GOOS when empty.
	GOOS            string
	MaxDownloadSize int64
	// HandleSignals removes the temp directory on SIGINT/SIGTERM.
	HandleSignals bool
}

// Runner is the orchestrator of one job invocation.
type Runner struct {
	Inputs     config.Inputs
	WorkingDir string

	Fetcher     Fetcher
	Commands    CommandPreparer
	NewExecutor func(artifact bridge.InstalledArtifact) Executor

	CreateTempDir  func() (string, error)
	CleanupTempDir func(dir string) error
	HandleSignals  bool
}

// New wires the production collaborators for inputs.
func New(inputs config.Inputs, opts Options) (*Runner, error) {
	fetcher, err := NewFetcher(inputs, opts)
	if err != nil {
		return nil, err
	}

	workingDir := inputs.Get(config.WorkspaceKey)
	if workingDir == "" {
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed determining working directory: %w", err)
		}
	}

	builder := bridge.CommandBuilder{Diagnostics: inputs.Bool(config.IncludeDiagnosticsKey)}
	if inputs.IsSet(config.WorkspaceKey) {
		builder.OutputDir = filepath.Join(workingDir, ".bridge")
	}

	platform := fetcher.Resolver.Platform
	return &Runner{
		Inputs:     inputs,
		WorkingDir: workingDir,
		Fetcher:    fetcher,
		Commands:   builder,
		NewExecutor: func(artifact bridge.InstalledArtifact) Executor {
			return bridge.NewExecutor(filepath.Dir(artifact.Executable), platform)
		},
		CreateTempDir:  system.CreateTempDir,
		CleanupTempDir: system.CleanupTempDir,
		HandleSignals:  opts.HandleSignals,
	}, nil
}

// NewFetcher builds the resolver and fetcher configured by inputs.
func NewFetcher(inputs config.Inputs, opts Options) (*bridge.Fetcher, error) {
	baseURL := inputs.Get(config.BridgeBaseURLKey)
	if baseURL != "" {
		if err := config.ValidateURL(baseURL, config.BridgeBaseURLKey); err != nil {
			return nil, err
		}
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	downloadURL, _ := inputs.Lookup(config.BridgeDownloadURLKey)
	resolver := bridge.NewResolver(baseURL, bridge.DetectPlatform(goos))
	return bridge.NewFetcher(resolver, bridge.FetchOptions{
		DownloadURL:     downloadURL,
		Version:         inputs.Get(config.BridgeDownloadVersionKey),
		InstallDir:      inputs.Get(config.BridgeInstallPathKey),
		MaxDownloadSize: opts.MaxDownloadSize,
	}), nil
}

// Run executes the pipeline and returns the bridge exit code. A non-zero code is
// reported as *bridge.ExitCodeError. The temp directory is removed on every path.
func (r *Runner) Run(ctx context.Context) (int, error) {
	cfg, err := scan.DetermineScanType(r.Inputs)
	if err != nil {
		return -1, err
	}
	log.Info().Str("backend", string(cfg.Backend())).Msg("Starting bridge run")

	tempDir, err := r.CreateTempDir()
	if err != nil {
		return -1, err
	}
	defer r.cleanup(tempDir)

	if r.HandleSignals {
		stop := system.RegisterGracefulShutdownHandler(func() { r.cleanup(tempDir) })
		defer stop()
	}

	artifact, err := r.Fetcher.DownloadBridge(ctx, tempDir)
	if err != nil {
		return -1, err
	}
	log.Debug().Str("bridge", artifact.Executable).Str("version", artifact.Version).Bool("cached", artifact.Cached).Msg("Bridge ready")

	cmd, err := r.Commands.PrepareCommand(cfg, tempDir)
	if err != nil {
		return -1, err
	}

	code, err := r.NewExecutor(artifact).ExecuteBridgeCommand(ctx, cmd, r.WorkingDir)
	if err != nil {
		return -1, err
	}
	if code != 0 {
		return code, &bridge.ExitCodeError{Code: code}
	}

	log.Info().Str("result", bridge.ExitCodeTable["0"]).Msg("Bridge run finished")
	return 0, nil
}

func (r *Runner) cleanup(tempDir string) {
	if err := r.CleanupTempDir(tempDir); err != nil {
		log.Warn().Err(err).Msg("Failed cleaning up temp directory")
	}
}

// FailureMessage renders err as the single line reported to the job runner.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var exitErr *bridge.ExitCodeError
	if errors.As(err, &exitErr) {
		return failurePrefix + bridge.TranslateExitCode(err.Error())
	}
	return failurePrefix + err.Error()
}
