package main

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "Investment Research"
	version = "1.0.0"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "research",
		Short:         "AI-assisted investment research backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (TOML or YAML)")

	rootCmd.AddCommand(
		serveCmd(&cfgFile),
		analyzeCmd(&cfgFile),
		cleanCmd(&cfgFile),
		watchCmd(&cfgFile),
		userCmd(&cfgFile),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
