// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/motofleet/internal/platform/constants"
)

// NewRootCmd creates the root command for the MotoFleet operator CLI.
func NewRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "motofleetctl",
		Short:         "MotoFleet identity service administration",
		Long:          `Applies and inspects database migrations and bootstraps the first ADMIN account.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(NewMigrateCmd(func() *slog.Logger { return newLogger(debug) }))
	cmd.AddCommand(NewSeedAdminCmd(func() *slog.Logger { return newLogger(debug) }))

	return cmd
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, "motofleetctl"))
}
