package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfmatch/internal/config"
	"github.com/listenupapp/shelfmatch/internal/logger"
	"github.com/listenupapp/shelfmatch/internal/service"
	"github.com/listenupapp/shelfmatch/internal/watcher"
)

// InboxHandle wraps the drop-folder watcher with shutdown capability.
// Service is nil when no inbox is configured.
type InboxHandle struct {
	Service *service.InboxService
	watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	return h.watcher.Stop()
}

// ProvideInbox starts the drop-folder ingester when an inbox path is configured.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	if cfg.Import.InboxPath == "" {
		log.Info("Drop-folder ingestion disabled by configuration")
		return &InboxHandle{}, nil
	}

	w, err := watcher.New(log.Component("watcher"), cfg.Import.InboxPath, watcher.Options{
		Extensions:   []string{".csv"},
		SettleDelay:  cfg.Import.SettleDelay,
		IgnoreHidden: true,
	})
	if err != nil {
		return nil, err
	}

	svc, err := service.NewInboxService(catalog, w, log.Component("inbox"))
	if err != nil {
		_ = w.Stop() //nolint:errcheck // Already failing
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	log.Info("Drop-folder ingestion started", "path", cfg.Import.InboxPath)

	return &InboxHandle{Service: svc, watcher: w, cancel: cancel}, nil
}
