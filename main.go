package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"search-storefront/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "search-storefront: %v\n", err)
		os.Exit(1)
	}
}
