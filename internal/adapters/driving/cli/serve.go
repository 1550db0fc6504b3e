package cli

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept replication requests over HTTP",
	Long: `Starts the HTTP trigger: POST /replicate, GET /healthz and GET /metrics.
The config file is watched and applied on change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveListen  string
	serveNoWatch bool
)

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload the config file on change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	cfg := r.Config()

	var path string
	if !serveNoWatch {
		if path, err = resolvedConfigPath(); err != nil {
			return err
		}
	}

	addr := serveListen
	if addr == "" {
		addr = cfg.Server.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.Serve(ctx, ln, httpapi.NewHandler(r, r.MetricsHandler()), httpapi.ServerConfig{
			ReadTimeout:  cfg.Server.ReadTimeout.Duration,
			WriteTimeout: cfg.Server.WriteTimeout.Duration,
		})
	})
	if !serveNoWatch {
		g.Go(func() error {
			return file.Watch(ctx, path, func(next *file.Config) {
				if err := r.Apply(next); err != nil {
					logger.Error("serve: config %s not applied: %v", path, err)
					return
				}
				logger.Info("serve: applied config %s", path)
			})
		})
	}

	cmd.Printf("Listening on %s\n", ln.Addr())
	return g.Wait()
}
