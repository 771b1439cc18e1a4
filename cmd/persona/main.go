package main

import (
	"os"

	"github.com/spf13/cobra"

	"persona/cmd/persona/ask"
	"persona/cmd/persona/serve"
	"persona/cmd/persona/setup"
	"persona/internal/logger"
)

func main() {
	logger.Init()
	rootCmd := &cobra.Command{
		Use:   "persona",
		Short: "Persona answers questions about its owner's career on their website",
	}

	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(ask.Cmd)
	rootCmd.AddCommand(setup.Cmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
