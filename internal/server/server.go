package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/adapters/tree"
	"github.com/jamesgeorge007/postwoman/pkg/workspace/service"
)

// Server contains the server configuration.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// Service is the workspace service with every configured provider
	// registered.
	Service *service.Service

	// Store is the snapshot store exposed over the sync API.
	Store tree.Store

	// Logger is the logger for the server.
	Logger hclog.Logger
}
