package cli

import (
	"github.com/contentsafety/gosdk/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	loader := &config.Loader{ConfigPath: config.DefaultConfigPath, DotEnvPath: config.DefaultDotEnvPath}
	rootOpts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "contentsafety",
		Short:         "Detect protected material in code and prompt attacks with Azure AI Content Safety",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("contentsafety version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", config.DefaultConfigPath, "Path to contentsafety.yml (optional)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.DotEnvPath, "env-file", config.DefaultDotEnvPath, "Path to a .env file (optional)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if rootOpts.ConfigPath != "" {
			loader.ConfigPath = rootOpts.ConfigPath
		}
		if rootOpts.DotEnvPath != "" {
			loader.DotEnvPath = rootOpts.DotEnvPath
		}
	}

	rootCmd.AddCommand(
		newDetectCmd(loader),
		newShieldCmd(loader),
	)

	return rootCmd
}

type rootOptions struct {
	ConfigPath string
	DotEnvPath string
}
