// voicepeer runs the scripted dev peer: a local voice agent the dashboard
// engine can bootstrap against without the production backend.
package main

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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/devpeer"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := logging.New(logging.Config{Level: *level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	peer := devpeer.New(devpeer.Options{
		Logger: logger,
		APIKey: os.Getenv("RAGBOX_API_KEY"),
	})
	srv := &http.Server{Addr: *addr, Handler: peer.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("[Peer] listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("[Peer] %v", err)
		os.Exit(1)
	}
	logger.Info("[Peer] stopped")
}
