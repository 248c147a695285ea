package run

import (
	"github.com/CompassSecurity/bridgerun/internal/cmd/common"
	"github.com/CompassSecurity/bridgerun/internal/cmd/flags"
	"github.com/CompassSecurity/bridgerun/pkg/config"
	"github.com/CompassSecurity/bridgerun/pkg/logging"
	"github.com/CompassSecurity/bridgerun/pkg/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRunCmd() *cobra.Command {
	opts := &flags.InputFlags{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Install the bridge and run the configured scan",
		Long: `Validate the scan inputs, install the bridge and run it for exactly one backend.

### Inputs
Inputs are read from, in increasing priority:
- the --config file (YAML or JSON)
- INPUT_<NAME> environment variables, e.g. INPUT_BLACKDUCK_URL, as set by CI runners
- the flags below

The backend is selected by its URL input: polaris_serverUrl, blackduck_url or coverity_url.
The bridge exit code becomes the process exit code.
		`,
		Example: `
# Black Duck full scan with the latest bridge
INPUT_BLACKDUCK_URL=https://blackduck.example.com INPUT_BLACKDUCK_APITOKEN=xxxxx INPUT_BLACKDUCK_SCAN_FULL=true bridgerun run

# Coverity scan from a config file with a pinned bridge version
bridgerun run --config bridgerun.yml --bridge-download-version 0.1.67

# Use an internal mirror and a preinstalled bridge
bridgerun run --config bridgerun.json --bridge-base-url https://artifactory.internal/synopsys-bridge --bridge-path /opt/synopsys-bridge
		`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, opts)
		},
	}
	flags.AddInputFlags(runCmd, opts)

	return runCmd
}

func Run(cmd *cobra.Command, opts *flags.InputFlags) error {
	maxDownloadSize, err := config.ParseMaxDownloadSize(opts.MaxDownloadSize)
	if err != nil {
		log.Fatal().Err(err).Str("size", opts.MaxDownloadSize).Msg("Failed parsing max-download-size flag")
	}

	inputs, err := opts.LoadInputs(cmd)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed loading inputs")
	}
	log.Debug().Strs("inputs", inputs.Keys()).Msg("Loaded inputs")

	r, err := runner.New(inputs, runner.Options{MaxDownloadSize: maxDownloadSize, HandleSignals: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed setting up bridge run")
	}

	code, err := r.Run(cmd.Context())
	if err != nil {
		logging.Failed().Int("exitCode", code).Msg(runner.FailureMessage(err))
		return &common.ExitError{Code: code, Err: err}
	}
	return nil
}
