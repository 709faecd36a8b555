package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/weftlabs/weft"
	httpadapter "github.com/weftlabs/weft/pkg/adapters/http"
	"github.com/weftlabs/weft/pkg/adapters/memory"
	redisadapter "github.com/weftlabs/weft/pkg/adapters/redis"
	"github.com/weftlabs/weft/pkg/observability"
	"github.com/weftlabs/weft/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a pipeline over HTTP with Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address for the run API")
	serveCmd.Flags().String("redis", "", "Redis address for run persistence (in-memory when empty)")
	serveCmd.Flags().Duration("node-timeout", 2*time.Minute, "Timeout per node execution")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	logger := newLogger(cmd)
	path, _ := cmd.Flags().GetString("pipeline")
	addr, _ := cmd.Flags().GetString("addr")
	redisAddr, _ := cmd.Flags().GetString("redis")
	nodeTimeout, _ := cmd.Flags().GetDuration("node-timeout")

	var store ports.RunStore
	if redisAddr != "" {
		store = redisadapter.New(redisAddr, "", 0)
		logger.Info("using redis run store", "addr", redisAddr)
	} else {
		store = memory.NewStore()
		logger.Info("using in-memory run store")
	}

	metrics := observability.New(prometheus.DefaultRegisterer)

	eng, pipeline, err := buildEngine(path, logger,
		weft.WithNodeTimeout(nodeTimeout),
		weft.WithRunStore(store),
		weft.WithHooks(metrics.Hooks()),
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpadapter.NewHandler(pipeline.Name, eng, store, logger))

	server := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving pipeline", "pipeline", pipeline.Name, "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
