// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/motofleet/internal/platform/config"
	"github.com/taibuivan/motofleet/internal/platform/migration"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd(logger func() *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := migration.RunUp(database.URL, database.MigrationPath, logger()); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			database, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := migration.RunDown(database.URL, database.MigrationPath, steps, logger()); err != nil {
				return err
			}
			cmd.Printf("Rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			status, err := migration.Version(database.URL, database.MigrationPath, logger())
			if err != nil {
				return err
			}
			cmd.Println(describeStatus(status))
			return nil
		},
	})

	return cmd
}

func describeStatus(status migration.Status) string {
	switch {
	case status.Empty:
		return "No migrations applied"
	case status.Dirty:
		return fmt.Sprintf("Version %d (dirty: manual intervention required)", status.Version)
	default:
		return fmt.Sprintf("Version %d", status.Version)
	}
}
