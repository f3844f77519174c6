package api

import (
	"github.com/listenupapp/shelfmatch/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Catalog *service.CatalogService
}
