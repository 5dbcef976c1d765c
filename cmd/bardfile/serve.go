package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/internal/preview"
	"github.com/vango-dev/bardfile/pkg/blobs"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		markup     string
		noLive     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Serve the configured fields in a browser.

The page updates live while files are attached, uploaded and removed
through the preview API. Blob metadata lives in the configured store
(memory, badger or s3).

Examples:
  bardfile serve
  bardfile serve --config bardfile.yaml --port=8080
  bardfile serve --markup form.html --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Preview.Port = port
			}
			if host != "" {
				cfg.Preview.Host = host
			}
			if markup != "" {
				cfg.Preview.Markup = markup
			}
			if noLive {
				cfg.Preview.Live = false
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: bardfile.json in the project root)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVarP(&markup, "markup", "m", "", "HTML file holding the fields")
	cmd.Flags().BoolVar(&noLive, "no-live", false, "Disable live updates")

	return cmd
}

func runServe(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var markup string
	if path := cfg.MarkupPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.New(errors.ErrMarkup).Wrap(err)
		}
		markup = string(data)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server, err := preview.NewServer(preview.ServerOptions{
		Config:   cfg,
		Markup:   markup,
		Store:    store,
		Registry: reg,
	})
	if err != nil {
		return err
	}
	defer server.Close()

	printBanner()
	fmt.Println("  preview")
	fmt.Println()
	success("%d field(s) ready", len(server.Fields()))
	info("Blob store: %s", cfg.Blobs.Store)
	info("Open %s", cfg.URL())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = server.Start(ctx)
	fmt.Println("\n  Shutting down...")
	return err
}

// loadConfig reads path, or the config of the project root when path is
// empty. Without a project config the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if _, err := config.FindProjectRoot(wd); err != nil {
		warn("No %s found, using defaults", config.ConfigFileName)
		return config.New(), nil
	}
	return config.LoadFromWorkingDir()
}

func openStore(cfg *config.Config) (blobs.Store, func() error, error) {
	return preview.OpenStore(cfg)
}
