package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AskCmd returns the root "ask" command. Arguments are joined into one
// question; with no arguments the question is read from stdin.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a question",
		Long: `Send a question to the askai server and print the answer.

Environment variables:
  ASKAI_API_URL   API base URL (default: http://localhost:5000)`,
		Example: `  ask "What is a carbon credit?"
  echo "carbon price" | ask`,
		Args: cobra.ArbitraryArgs,
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	answer, err := client.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("output"); jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"question": question, "answer": answer})
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func readQuestion(args []string, stdin io.Reader) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read question from stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return "", fmt.Errorf("no question provided")
	}
	return question, nil
}

// HealthCmd returns the "health" command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			status, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("output"); jsonOutput {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server:            %s\n", client.BaseURL())
			fmt.Fprintf(cmd.OutOrStdout(), "Status:            %s\n", status.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "FAQ entries:       %d\n", status.FAQEntries)
			fmt.Fprintf(cmd.OutOrStdout(), "Remote configured: %t\n", status.RemoteConfigured)
			return nil
		},
	}
}

// ConfigCmd returns the "config" command group for the saved server URL.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Save the server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateAPIURL(args[0]); err != nil {
				return err
			}
			if err := SaveGlobalConfig(&GlobalConfig{APIURL: args[0]}); err != nil {
				return err
			}
			path, _ := GetConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", args[0], path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved server URL and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagURL, _ := cmd.Flags().GetString("api-url")
			url, source, err := ResolveAPIURL(flagURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", url, source)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return DeleteGlobalConfig()
		},
	})

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
