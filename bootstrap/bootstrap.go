package bootstrap

import (
	"net/http"

	"hindtrade-backend/internal/config"
	"hindtrade-backend/internal/interfaces/router"
)

// New builds the app as an http.Handler for the serverless entry point, which
// only imports this package. Schema migration is left to cmd/api.
func New() (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	return router.Handler(app), nil
}
