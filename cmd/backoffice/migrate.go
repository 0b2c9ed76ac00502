package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Warky-Devs/backoffice/pkg/config"
	"github.com/Warky-Devs/backoffice/pkg/logger"
	"github.com/Warky-Devs/backoffice/pkg/migrations"
	"github.com/Warky-Devs/backoffice/pkg/models"
)

func migrateCmd() *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema of the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverPostgres {
				if down > 0 {
					return migrations.Down(cfg.PostgresDSN, down)
				}
				return migrations.Up(cfg.PostgresDSN)
			}

			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			return migrateSQLite(cmd.Context(), b)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many postgres migrations instead")
	return cmd
}

// migrateSQLite creates the tables from the models for the sqlite drivers
func migrateSQLite(ctx context.Context, b *backend) error {
	switch {
	case b.gorm != nil:
		if err := b.gorm.AutoMigrate(models.GetModels()...); err != nil {
			return errors.Wrap(err, "auto migrate")
		}
	case b.bun != nil:
		for _, model := range models.GetModels() {
			if _, err := b.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return errors.Wrapf(err, "create table for %T", model)
			}
		}
	default:
		return errors.New("no sqlite backend open")
	}
	logger.Info("Schema up to date")
	return nil
}
