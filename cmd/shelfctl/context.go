package main

import (
	"context"
	"fmt"
	"io"

	"github.com/listenupapp/shelfmatch/internal/config"
	"github.com/listenupapp/shelfmatch/internal/logger"
	"github.com/listenupapp/shelfmatch/internal/service"
	"github.com/listenupapp/shelfmatch/internal/store/backend"
)

type globalOptions struct {
	dataDir  string
	driver   string
	envFile  string
	logLevel string
	json     bool
}

// commandContext opens the catalog for one command and closes it afterwards.
type commandContext struct {
	opts    *globalOptions
	stderr  io.Writer
	handle  *backend.Handle
	catalog *service.CatalogService
}

func newCommandContext(opts *globalOptions) *commandContext {
	return &commandContext{opts: opts}
}

// withCatalog runs fn against an open catalog, releasing the directory lock
// even when fn fails.
func (c *commandContext) withCatalog(ctx context.Context, fn func(*service.CatalogService) error) (err error) {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(svc)
}

func (c *commandContext) configArgs() []string {
	args := []string{"--env-file", c.opts.envFile, "--log-level", c.opts.logLevel}
	if c.opts.dataDir != "" {
		args = append(args, "--data-dir", c.opts.dataDir)
	}
	if c.opts.driver != "" {
		args = append(args, "--storage-driver", c.opts.driver)
	}
	return args
}

func (c *commandContext) service(ctx context.Context) (*service.CatalogService, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}

	cfg, err := config.Load(c.configArgs())
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Writer:  c.stderr,
		Format:  logger.FormatPretty,
		Level:   logger.ParseLevel(cfg.Logger.Level),
		NoColor: true,
	})

	h, err := backend.Open(cfg.Storage, log.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("open catalog in %s: %w", cfg.Storage.DataDir, err)
	}

	svc, err := service.NewCatalogService(ctx, h, log.Component("catalog"))
	if err != nil {
		_ = h.Close() //nolint:errcheck // Already failing
		return nil, err
	}

	c.handle = h
	c.catalog = svc
	return svc, nil
}

func (c *commandContext) close() error {
	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	c.catalog = nil
	return err
}
