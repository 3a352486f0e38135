package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesgeorge007/postwoman/internal/api"
	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
	"github.com/jamesgeorge007/postwoman/internal/config"
	"github.com/jamesgeorge007/postwoman/internal/server"
)

const shutdownTimeout = 10 * time.Second

type Command struct {
	*base.Command

	flagConfig string
	flagAddr   string
}

func (c *Command) Synopsis() string {
	return "Run the workspace sync server"
}

func (c *Command) Help() string {
	return `Usage: postwoman serve [options]

  Serve one provider's workspaces over the REST sync API so that remote
  providers on other machines can share them.

  The served provider comes from the server block of the config file.
  Without one, the default workspace's provider is served.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.StringVar(&c.flagAddr, "addr", "",
		"Address to listen on. Overrides server.addr in the config file.")
	return f
}

func (c *Command) Run(args []string) int {
	log, ui := c.Log, c.UI

	if err := c.Flags().Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, cfg, err := c.Runtime(ctx, c.flagConfig)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error("error closing workspace service", "error", err)
		}
	}()

	srvCfg := serverConfig(cfg)
	if c.flagAddr != "" {
		srvCfg.Addr = c.flagAddr
	}
	cfg.Server = srvCfg

	store, err := rt.Store(srvCfg.Provider)
	if err != nil {
		ui.Error(fmt.Sprintf("error resolving served provider: %v", err))
		return 1
	}

	httpSrv := &http.Server{
		Addr: srvCfg.Addr,
		Handler: api.NewMux(server.Server{
			Config:  cfg,
			Service: rt.Service,
			Store:   store,
			Logger:  log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srvCfg.Addr, "provider", srvCfg.Provider,
			"auth", srvCfg.JWTSecret != "")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			ui.Error(fmt.Sprintf("error starting server: %v", err))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		ui.Error(fmt.Sprintf("error shutting down server: %v", err))
		return 1
	}
	return 0
}

// serverConfig returns the server block, falling back to serving the
// default workspace's provider, or the first provider.
func serverConfig(cfg *config.Config) *config.Server {
	if cfg.Server != nil {
		return cfg.Server
	}
	s := &config.Server{Addr: config.DefaultServerAddr}
	switch {
	case cfg.DefaultWorkspace != nil:
		s.Provider = cfg.DefaultWorkspace.Provider
	case len(cfg.Providers) > 0:
		s.Provider = cfg.Providers[0].ID
	}
	return s
}
