package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/askai/internal/config"
	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/cloo-solutions/askai/internal/knowledge"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/spf13/cobra"
)

func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and publish the knowledge base",
		Long:  "List knowledge base entries, test local matching and publish a knowledge base file to S3",
	}

	cmd.PersistentFlags().String("path", "", "Knowledge base location (overrides ASKAI_KB_PATH)")
	cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.PersistentFlags().Bool("debug", false, "Show loader diagnostics")

	cmd.AddCommand(KBListCmd())
	cmd.AddCommand(KBMatchCmd())
	cmd.AddCommand(KBPushCmd())

	return cmd
}

func KBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge base entries in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadKBConfig(cmd)
			if err != nil {
				return err
			}
			kb, _, err := loadKnowledge(cmd.Context(), cfg, cliLogger(cmd))
			if err != nil {
				return err
			}
			outputFormat, _ := cmd.Flags().GetString("output")
			return printEntries(cmd.OutOrStdout(), outputFormat, cfg.KBPath, kb.Entries())
		},
	}
}

func printEntries(w io.Writer, outputFormat, location string, entries []domain.KnowledgeEntry) error {
	if outputFormat == "json" {
		data := make([]map[string]string, len(entries))
		for i, e := range entries {
			data[i] = map[string]string{"phrase": e.Phrase, "answer": e.Answer}
		}
		return writeJSON(w, map[string]interface{}{"source": location, "entries": data})
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No entries in %s\n", location)
		return nil
	}
	fmt.Fprintf(w, "%d entries in %s:\n", len(entries), location)
	for i, e := range entries {
		fmt.Fprintf(w, "  %d. %q -> %s\n", i+1, e.Phrase, e.Answer)
	}
	return nil
}

func KBMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <question>",
		Short: "Show which local tier would answer a question",
		Long:  "Run the knowledge base and rule tiers against a question without calling the remote provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadKBConfig(cmd)
			if err != nil {
				return err
			}
			q, err := domain.NewQuestion(args[0])
			if err != nil {
				return err
			}

			logger := cliLogger(cmd)
			kb, rules, err := loadKnowledge(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			resolver := service.NewResolver(kb, rules, nil, nil, logger)
			answer, ok := resolver.MatchLocal(q)
			outputFormat, _ := cmd.Flags().GetString("output")
			return printMatch(cmd.OutOrStdout(), outputFormat, answer, ok)
		},
	}
}

func printMatch(w io.Writer, outputFormat string, answer domain.Answer, ok bool) error {
	if outputFormat == "json" {
		if !ok {
			return writeJSON(w, map[string]interface{}{"matched": false, "tier": domain.TierRemote})
		}
		return writeJSON(w, map[string]interface{}{
			"matched":     true,
			"tier":        answer.Tier,
			"matched_key": answer.MatchedKey,
			"answer":      answer.Text,
		})
	}

	if !ok {
		fmt.Fprintln(w, "No local match; the question would be sent to the remote provider")
		return nil
	}
	fmt.Fprintf(w, "Tier:    %s\nMatched: %q\nAnswer:  %s\n", answer.Tier, answer.MatchedKey, answer.Text)
	return nil
}

func KBPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Validate a knowledge base file and upload it to S3",
		Long: `Validate a JSON or YAML knowledge base file and upload it to the configured
bucket. Point ASKAI_KB_PATH at the printed s3:// location to serve it.`,
		Args: cobra.ExactArgs(1),
		RunE: runKBPush,
	}

	cmd.Flags().String("key", "", "Object key (default: the file name)")
	cmd.Flags().String("bucket", "", "Bucket (overrides ASKAI_S3_BUCKET)")

	return cmd
}

func runKBPush(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	key, _ := cmd.Flags().GetString("key")
	if key == "" {
		key = filepath.Base(path)
	}
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket == "" {
		bucket = cfg.S3Bucket
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	client, err := newS3Client(ctx, cfg, bucket)
	if err != nil {
		return err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return err
	}

	count, err := pushKnowledge(ctx, client, key, data)
	if err != nil {
		return err
	}

	location := "s3://" + client.Bucket() + "/" + key
	outputFormat, _ := cmd.Flags().GetString("output")
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"location": location, "entries": count})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d entries to %s\n", count, location)
	return nil
}

type objectPutter interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// pushKnowledge uploads data only if it parses as a knowledge base in the
// format implied by key.
func pushKnowledge(ctx context.Context, putter objectPutter, key string, data []byte) (int, error) {
	format := knowledge.FormatFor(key)
	entries, err := knowledge.ParseEntries(bytes.NewReader(data), format)
	if err != nil {
		return 0, fmt.Errorf("refusing to push invalid knowledge base: %w", err)
	}
	count := domain.NewKnowledgeBase(entries).Len()

	if err := putter.PutObject(ctx, key, data, contentTypeFor(format)); err != nil {
		return 0, err
	}
	return count, nil
}

func contentTypeFor(format knowledge.Format) string {
	if format == knowledge.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func loadKBConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		cfg.KBPath = path
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
