package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mosaicflow/mosaic"
	httpAdapter "github.com/mosaicflow/mosaic/internal/adapters/http"
	"github.com/mosaicflow/mosaic/pkg/observability"
	"github.com/mosaicflow/mosaic/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long:  `Starts the Mosaic engine in server mode, exposing workflow editing and execution over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addr
		}

		logger := newLogger(cfg)

		gen, err := buildGenerator(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		store, err := buildStore(cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		sessions := session.NewManager(store,
			session.WithLogger(logger),
			session.WithEngineFactory(func() *mosaic.Engine {
				return mosaic.New(
					mosaic.WithGenerator(gen),
					mosaic.WithLogger(logger),
					mosaic.WithLifecycleHooks(metrics.Hooks()),
				)
			}),
		)

		handler := httpAdapter.NewHandler(sessions, httpAdapter.WithLogger(logger))

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Mosaic Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Mosaic Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
