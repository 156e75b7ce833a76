package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/askai/internal/config"
	"github.com/cloo-solutions/askai/internal/knowledge"
	"github.com/cloo-solutions/askai/internal/logging"
	"github.com/cloo-solutions/askai/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliLogger writes warnings to stderr, or everything with --debug.
func cliLogger(cmd *cobra.Command) *zap.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logging.NewCLI(debug)
}

func newS3Client(ctx context.Context, cfg *config.Config, bucket string) (*storage.S3Client, error) {
	if !cfg.HasS3() {
		return nil, fmt.Errorf("S3 credentials not configured: set ASKAI_S3_ACCESS_KEY_ID and ASKAI_S3_SECRET_ACCESS_KEY")
	}
	if bucket == "" {
		bucket = cfg.S3Bucket
	}
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          bucket,
		UsePathStyle:    cfg.S3Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return client, nil
}

// sourceFor resolves a knowledge base or rules location, binding an S3 client
// to the location's bucket when needed.
func sourceFor(ctx context.Context, cfg *config.Config, location string) (knowledge.Source, error) {
	if !knowledge.IsS3Location(location) {
		return knowledge.SourceFor(location, nil)
	}

	bucket, _, ok := knowledge.ParseS3URI(location)
	if !ok {
		return knowledge.SourceFor(location, nil)
	}
	client, err := newS3Client(ctx, cfg, bucket)
	if err != nil {
		return nil, err
	}
	return knowledge.SourceFor(location, client)
}
