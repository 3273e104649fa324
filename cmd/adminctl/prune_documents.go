package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/pkg/storage"
)

func newPruneDocumentsCmd(rt *runtime) *cobra.Command {
	var (
		olderThan time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "prune-documents",
		Short: "Delete stored registration forms past their retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl := olderThan
			if ttl <= 0 {
				ttl = rt.cfg.Documents.RetentionTTL
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "would remove forms in %s older than %s\n", rt.cfg.Documents.StorageDir, ttl)
				return nil
			}
			_, err := pruneDocuments(cmd.OutOrStdout(), rt.cfg.Documents.StorageDir, ttl, rt.logger)
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention period (default: DOCUMENTS_RETENTION_TTL)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the target without deleting")
	return cmd
}

func pruneDocuments(out io.Writer, dir string, ttl time.Duration, logger *zap.Logger) (int, error) {
	if dir == "" {
		return 0, fmt.Errorf("DOCUMENTS_STORAGE_DIR is not configured")
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return 0, fmt.Errorf("open document storage: %w", err)
	}
	removed, err := store.CleanupOlderThan(ttl)
	if err != nil {
		return len(removed), fmt.Errorf("prune documents: %w", err)
	}
	for _, name := range removed {
		logger.Info("registration form pruned", zap.String("path", name))
	}
	fmt.Fprintf(out, "removed %d form(s)\n", len(removed))
	return len(removed), nil
}
