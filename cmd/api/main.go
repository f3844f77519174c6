// Package main provides the entry point for the shelfmatch server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfmatch/internal/di"
	"github.com/listenupapp/shelfmatch/internal/di/providers"
	"github.com/listenupapp/shelfmatch/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		if shutdownErr := injector.Shutdown(); shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", shutdownErr)
		}
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	log.Info("Server running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts services down in reverse dependency order:
	// HTTP server, inbox, then storage and its directory lock.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Storage uses a wrapper type; close it explicitly. A second close is a no-op.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close catalog storage", "error", err)
		}
	}

	log.Info("See you space cowboy...")
}
