package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/shelfmatch/internal/config"
	"github.com/listenupapp/shelfmatch/internal/logger"
	"github.com/listenupapp/shelfmatch/internal/service"
	"github.com/listenupapp/shelfmatch/internal/store/backend"
)

// StoreHandle wraps the locked repository with shutdown capability.
type StoreHandle struct {
	*backend.Handle
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore locks the data directory and opens the configured repository.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	h, err := backend.Open(cfg.Storage, log.Component("store"))
	if err != nil {
		return nil, err
	}

	log.Info("Catalog storage opened", "driver", h.Driver(), "path", h.Path())

	return &StoreHandle{Handle: h}, nil
}

// ProvideCatalogService loads the catalog and pending conflicts.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return service.NewCatalogService(ctx, storeHandle, log.Component("catalog"))
}
