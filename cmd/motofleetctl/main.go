// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command motofleetctl is the operator CLI: schema migrations and the first
// administrator account.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
