package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		direction string
		steps     int
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the encounter journal schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if direction != "up" && direction != "down" {
				return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
			}
			start := time.Now()
			m, err := migrations.New(a.cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer m.Close()

			switch {
			case direction == "up" && steps > 0:
				err = m.Steps(steps)
			case direction == "up":
				err = m.Up()
			case steps > 0:
				err = m.Steps(-steps)
			default:
				err = m.Down()
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration failed: %w", err)
			}

			version, dirty, _ := m.Version()
			a.logger.Info("migrate finished",
				zap.String("direction", direction),
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
				zap.Bool("changed", err == nil),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction: up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}
