package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/askai/internal/cli"
	"github.com/cloo-solutions/askai/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := client.AskCmd()
	rootCmd.Version = version

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.HealthCmd())
	rootCmd.AddCommand(client.ConfigCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
