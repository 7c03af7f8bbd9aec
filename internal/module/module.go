// Package module defines the interface every Dhatukala feature module
// implements and the registry that composes them at startup.
package module

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a module.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Module defines the interface that all Dhatukala feature modules implement.
type Module interface {
	// Name returns the module's unique identifier (e.g., "catalog", "rates").
	Name() string

	// Version returns the module's semantic version.
	Version() string

	// Init initializes the module with configuration and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the module's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop() error

	// Routes returns the HTTP routes this module exposes.
	Routes() []Route
}
