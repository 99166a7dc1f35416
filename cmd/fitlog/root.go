package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitlog/internal/config"
	"fitlog/internal/domain"
	"fitlog/internal/logger"
)

// cli carries what every subcommand needs. Tests replace open to share one
// store between commands.
type cli struct {
	envFiles []string
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
	open     func(cfg *config.Config) (*backend, error)
}

func newCLI() *cli {
	return &cli{now: time.Now, open: openBackend}
}

func (c *cli) today() string {
	return domain.Today(c.now())
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "fitlog",
		Short:        "Personal fitness log: weight history, notes and workout sessions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg == nil {
				cfg, err := config.Load(c.envFiles...)
				if err != nil {
					return err
				}
				c.cfg = cfg
			}
			if c.log == nil {
				log, err := logger.New(c.cfg.LogLevel, c.cfg.LogFormat)
				if err != nil {
					return err
				}
				c.log = log
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files to load before the environment (default .env)")

	root.AddCommand(
		newServeCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newWeightCmd(c),
		newNotesCmd(c),
		newSessionsCmd(c),
	)
	return root
}

// withBackend opens the configured store for the duration of fn.
func (c *cli) withBackend(fn func(b *backend) error) error {
	b, err := c.open(c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			c.log.Warn("closing store", zap.Error(err))
		}
	}()
	return fn(b)
}
