// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/motofleet/internal/platform/config"
	pgstore "github.com/taibuivan/motofleet/internal/platform/postgres"
	"github.com/taibuivan/motofleet/internal/platform/sec"
	"github.com/taibuivan/motofleet/internal/users/account"
	"github.com/taibuivan/motofleet/internal/users/auth"
)

// EnvAdminPassword is read when --password is omitted.
const EnvAdminPassword = "MOTOFLEET_ADMIN_PASSWORD"

const defaultSeedTimeout = 30 * time.Second

// seedConfig holds the flags of the seed-admin command.
type seedConfig struct {
	input   account.SeedInput
	timeout time.Duration
}

// Seeder creates the first administrator.
type Seeder interface {
	SeedAdmin(context context.Context, input account.SeedInput) (account.SeedResult, error)
}

// NewSeedAdminCmd creates the seed-admin command.
func NewSeedAdminCmd(logger func() *slog.Logger) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first ADMIN account",
		Long: `Creates an ADMIN account in an empty store.
Running it again with the same email changes nothing. It refuses to run
against a store that already holds other accounts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.input.Password == "" {
				cfg.input.Password = os.Getenv(EnvAdminPassword)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
			defer cancel()

			database, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			log := logger()
			pool, err := pgstore.NewPool(ctx, database.URL, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			hasher := sec.NewArgon2Hasher(sec.DefaultArgon2Params, 1)
			service := account.NewService(auth.NewUserRepository(pool), hasher, log)
			return runSeed(ctx, cmd, service, cfg.input)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.input.FirstName, "first-name", "Fleet", "first name of the administrator")
	flags.StringVar(&cfg.input.LastName, "last-name", "Admin", "last name of the administrator")
	flags.StringVar(&cfg.input.Email, "email", "", "email of the administrator")
	flags.StringVar(&cfg.input.Password, "password", "", "password of the administrator (defaults to $"+EnvAdminPassword+")")
	flags.DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, seeder Seeder, input account.SeedInput) error {
	if input.Password == "" {
		return fmt.Errorf("a password is required: pass --password or set %s", EnvAdminPassword)
	}

	result, err := seeder.SeedAdmin(ctx, input)
	if errors.Is(err, account.ErrAlreadySeeded) {
		return err
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if result.Created {
		cmd.Printf("Created ADMIN %s (%s)\n", result.User.Email, result.User.ID)
	} else {
		cmd.Printf("Account %s already exists; nothing to do\n", result.User.Email)
	}
	return nil
}
