package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/askai/internal/cli"
	"github.com/cloo-solutions/askai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "askd",
		Short: "askai server and operator CLI",
		Long:  "askai answers questions from a FAQ knowledge base, a fixed rule list and a remote language model",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.KBCmd())
	rootCmd.AddCommand(admin.LogCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
