// Package flags declares the input flags shared by the run and resolve commands.
package flags

import (
	"os"
	"strconv"

	"github.com/CompassSecurity/bridgerun/pkg/config"
	"github.com/spf13/cobra"
)

// InputFlags hold the cross-cutting inputs that can be given on the command line.
// Backend inputs come from the config file or INPUT_* environment variables.
type InputFlags struct {
	ConfigFile            string
	BridgeDownloadURL     string
	BridgeDownloadVersion string
	BridgeBaseURL         string
	BridgePath            string
	Workspace             string
	IncludeDiagnostics    bool
	MaxDownloadSize       string
}

// flagKeys maps flag names to the input key they override.
var flagKeys = map[string]string{
	"bridge-download-url":     config.BridgeDownloadURLKey,
	"bridge-download-version": config.BridgeDownloadVersionKey,
	"bridge-base-url":         config.BridgeBaseURLKey,
	"bridge-path":             config.BridgeInstallPathKey,
	"workspace":               config.WorkspaceKey,
	"include-diagnostics":     config.IncludeDiagnosticsKey,
}

func AddInputFlags(cmd *cobra.Command, opts *InputFlags) {
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML or JSON file with job inputs, overridden by INPUT_* environment variables and flags")
	cmd.Flags().StringVar(&opts.BridgeDownloadURL, "bridge-download-url", "", "Explicit bridge archive URL, must match the host platform")
	cmd.Flags().StringVar(&opts.BridgeDownloadVersion, "bridge-download-version", "", "Bridge version to install, e.g. 0.1.67. Defaults to the latest version")
	cmd.Flags().StringVar(&opts.BridgeBaseURL, "bridge-base-url", "", "Artifact repository serving bridge releases (default the public Synopsys repository)")
	cmd.Flags().StringVar(&opts.BridgePath, "bridge-path", "", "Bridge install directory (default $HOME/synopsys-bridge)")
	cmd.Flags().StringVarP(&opts.Workspace, "workspace", "w", "", "Working directory of the bridge (default current directory)")
	cmd.Flags().BoolVar(&opts.IncludeDiagnostics, "include-diagnostics", false, "Ask the bridge to collect diagnostics")
	cmd.Flags().StringVar(&opts.MaxDownloadSize, "max-download-size", config.DefaultMaxDownloadSize, "Max bridge archive size to download, e.g. 500MB")
}

// Overrides returns the input values of all flags the user set explicitly.
func (opts *InputFlags) Overrides(cmd *cobra.Command) map[string]string {
	values := map[string]string{
		"bridge-download-url":     opts.BridgeDownloadURL,
		"bridge-download-version": opts.BridgeDownloadVersion,
		"bridge-base-url":         opts.BridgeBaseURL,
		"bridge-path":             opts.BridgePath,
		"workspace":               opts.Workspace,
		"include-diagnostics":     strconv.FormatBool(opts.IncludeDiagnostics),
	}

	overrides := map[string]string{}
	for flagName, key := range flagKeys {
		if cmd.Flags().Changed(flagName) {
			overrides[key] = values[flagName]
		}
	}
	return overrides
}

// LoadInputs reads the inputs from the config file, the process environment and the flags.
func (opts *InputFlags) LoadInputs(cmd *cobra.Command) (config.Inputs, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: opts.ConfigFile,
		Environ:    os.Environ(),
		Overrides:  opts.Overrides(cmd),
	})
}
