// Package cmd assembles the bridgerun command tree.
package cmd

import (
	"github.com/CompassSecurity/bridgerun/internal/cmd/common"
	"github.com/CompassSecurity/bridgerun/internal/cmd/resolve"
	"github.com/CompassSecurity/bridgerun/internal/cmd/run"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bridgerun",
		Short: "Install and run the Synopsys bridge for Polaris, Black Duck or Coverity scans",
		Long: `bridgerun is a CI job helper. It validates the scan inputs of one backend, installs the
matching bridge release for the host platform and runs it, reporting the bridge exit code.`,
		Version: common.Version,
	}

	rootCmd.AddCommand(run.NewRunCmd())
	rootCmd.AddCommand(resolve.NewResolveCmd())

	common.SetupPersistentPreRun(rootCmd)
	common.AddCommonFlags(rootCmd)

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	return rootCmd
}
