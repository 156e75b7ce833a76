package admin

import (
	"fmt"
	"io"

	"github.com/cloo-solutions/askai/internal/config"
	"github.com/cloo-solutions/askai/internal/database"
	"github.com/cloo-solutions/askai/internal/pagination"
	"github.com/cloo-solutions/askai/internal/repository"
	"github.com/cloo-solutions/askai/internal/service"
	"github.com/spf13/cobra"
)

func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect the question log",
		Long:  "Read questions recorded by the server when ASKAI_DATABASE_URL is set",
	}

	cmd.AddCommand(LogRecentCmd())

	return cmd
}

func LogRecentCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("question log not configured: set ASKAI_DATABASE_URL")
			}

			pageCursor, err := pagination.DecodeCursor(cursor)
			if err != nil {
				return err
			}

			pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			page, err := repository.NewQuestionLogRepository(pool).ListWithCursor(ctx, pageCursor, limit)
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			return printQuestionLog(cmd.OutOrStdout(), outputFormat, page)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func printQuestionLog(w io.Writer, outputFormat string, page *pagination.PageResult[service.QuestionLogEntry]) error {
	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(page.Items))
		for i, e := range page.Items {
			data[i] = map[string]interface{}{
				"id":          e.ID,
				"request_id":  e.RequestID,
				"question":    e.Question,
				"tier":        e.Tier,
				"outcome":     e.Outcome,
				"matched_key": e.MatchedKey,
				"duration_ms": e.DurationMs,
				"created_at":  e.CreatedAt,
			}
		}
		return writeJSON(w, map[string]interface{}{
			"items":    data,
			"cursor":   page.Cursor,
			"has_more": page.HasMore,
		})
	}

	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No questions recorded")
		return nil
	}
	for _, e := range page.Items {
		detail := e.MatchedKey
		if e.Outcome != "" {
			detail = string(e.Outcome)
		}
		fmt.Fprintf(w, "  %s  %-6s %-22s %5dms  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tier, detail, e.DurationMs, e.Question)
	}
	if page.HasMore && page.Cursor != "" {
		fmt.Fprintf(w, "\nMore results available. Use --cursor %s\n", page.Cursor)
	}
	return nil
}
