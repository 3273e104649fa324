package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/pkg/config"
	"github.com/noah-isme/church-events-api/pkg/logger"
)

var version = "dev"

// runtime is resolved once per invocation before any subcommand runs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Operational tasks for the church events API",
		Long:          `adminctl runs schema migrations, provisions administrator accounts and prunes stored registration forms using the same environment as the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newCreateAdminCmd(rt))
	root.AddCommand(newPruneDocumentsCmd(rt))
	return root
}
