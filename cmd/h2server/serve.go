package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sagarc03/h2server"
	"github.com/sagarc03/h2server/accesslog"
	"github.com/sagarc03/h2server/config"
	"github.com/sagarc03/h2server/filesystem"
	h2http "github.com/sagarc03/h2server/http"
	"github.com/sagarc03/h2server/render"
)

var serveCmd = &cobra.Command{
	Use:   "serve [port|url]",
	Short: "Start the HTTP server",
	Long:  `Start the h2server HTTP server. This is also what running h2server without a subcommand does.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// site is a ready-to-serve handler and the resources behind it.
type site struct {
	handler http.Handler
	root    *os.Root
}

func (s *site) Close() error {
	return s.root.Close()
}

// newSite opens the served root and assembles the route table and router.
func newSite(cfg *config.Config, ep config.Endpoint) (*site, error) {
	rootDir, err := filepath.Abs(cfg.Files.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}

	srv := &h2server.Server{
		RootDir:          rootDir,
		OverlayDir:       cfg.Files.Static,
		DefaultPages:     cfg.Files.Index,
		DirectoryList:    cfg.Files.DirectoryList,
		MaxContentLength: cfg.Server.MaxLength,
		Probe:            filesystem.NewProbe(root),
		Logger:           slog.Default(),
	}
	if err := srv.Validate(); err != nil {
		_ = root.Close()
		return nil, err
	}

	access := accesslog.New(accesslog.Options{UTC: cfg.Log.UTC, IncludeIP: cfg.Log.IP})
	routes, err := buildRoutes(cfg, routeDeps{
		accessLog: access.Handler(),
		templates: render.NewTemplates(),
		scripts:   render.NewScripts(cfg.Render.Interpreter, cfg.Render.InterpreterArgs, nil),
	})
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("build routes: %w", err)
	}

	table, err := h2server.NewRouteTable(routes,
		h2server.WithFallback(h2http.NewFileServer().Serve),
		h2server.WithForwarder(h2http.NewForwarder(nil)),
	)
	if err != nil {
		_ = root.Close()
		return nil, err
	}

	var metrics *h2http.Metrics
	if cfg.Metrics.Enabled {
		metrics = h2http.NewMetrics()
	}

	handler := h2http.NewHandler(&h2http.HandlerConfig{
		RootPath:    ep.BasePath,
		CORS:        cfg.CORS,
		Metrics:     metrics,
		MetricsPath: cfg.Metrics.Path,
	}, table, srv)

	slog.Debug("route table ready", "routes", table.Len(), "root", rootDir)

	return &site{handler: handler.Router(), root: root}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	ep, err := cfg.Server.Endpoint()
	if err != nil {
		return err
	}

	s, err := newSite(cfg, ep)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	useTLS := ep.Scheme == "https"
	handler := s.handler
	if cfg.Server.HTTP2 && !useTLS {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if useTLS {
		if cfg.Server.HTTP2 {
			if err := http2.ConfigureServer(server, &http2.Server{}); err != nil {
				return fmt.Errorf("configure http2: %w", err)
			}
		} else {
			// Without --http2 TLS connections stay on HTTP/1.1.
			server.TLSNextProto = map[string]func(*http.Server, *tls.Conn, http.Handler){}
		}
	}

	listener, err := net.Listen("tcp", ep.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", ep.Addr, err)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	siteURL := ep.URL(listener.Addr().String())
	color.New(color.FgGreen).Fprintf(color.Output, "Server Running At %s\n", siteURL)
	slog.Info("starting server", "addr", listener.Addr().String(), "root", cfg.Files.Root, "https", useTLS, "http2", cfg.Server.HTTP2)

	if cfg.Browser.Open {
		if err := openBrowser(cfg.Browser.Client, browserURL(siteURL, cfg.Browser.Path)); err != nil {
			slog.Warn("open browser failed", "err", err)
		}
	}

	if useTLS {
		cert, key := cfg.Server.Cert, cfg.Server.Key
		if cert == "" {
			cert = "cert.pem"
		}
		if key == "" {
			key = "key.pem"
		}
		err = server.ServeTLS(listener, cert, key)
	} else {
		err = server.Serve(listener)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
