package resolve

import (
	"fmt"
	"runtime"

	"github.com/CompassSecurity/bridgerun/internal/cmd/flags"
	"github.com/CompassSecurity/bridgerun/pkg/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ResolveOptions struct {
	flags.InputFlags
	GOOS string
}

func NewResolveCmd() *cobra.Command {
	opts := &ResolveOptions{}

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the bridge version and archive URL a run would install",
		Long: `Resolve the bridge download the same way run does, without downloading anything.
Prints "<version> <url>" on stdout. The version is empty for explicit URLs without a version.`,
		Example: `
# Latest bridge for this machine
bridgerun resolve

# Check that a pinned version exists for Windows runners
bridgerun resolve --bridge-download-version 0.1.67 --os windows
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Resolve(cmd, opts)
		},
	}
	flags.AddInputFlags(resolveCmd, &opts.InputFlags)
	resolveCmd.Flags().StringVar(&opts.GOOS, "os", runtime.GOOS, "Target operating system (darwin, windows, linux)")

	return resolveCmd
}

func Resolve(cmd *cobra.Command, opts *ResolveOptions) error {
	inputs, err := opts.LoadInputs(cmd)
	if err != nil {
		return err
	}

	fetcher, err := runner.NewFetcher(inputs, runner.Options{GOOS: opts.GOOS})
	if err != nil {
		return err
	}

	url, version, err := fetcher.ResolveDownload(cmd.Context())
	if err != nil {
		return err
	}

	log.Debug().Str("version", version).Str("url", url).Str("platform", string(fetcher.Resolver.Platform)).Msg("Resolved bridge")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version, url)
	return err
}
