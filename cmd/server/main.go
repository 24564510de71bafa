// Command server runs the in-memory garage backend for local development.
// State is lost on exit.
//
//	go run ./cmd/server -addr 127.0.0.1:8000 -admin admin:admin
//	go run ./cmd/client/cli -a http://127.0.0.1:8000/api
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/dmitrijs2005/garagekeeper/internal/testbackend"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	admin := flag.String("admin", "admin:admin", "seed administrator as username:password (empty to skip)")
	level := flag.String("l", "info", "log level")
	flag.Parse()

	logger := logging.New(*level, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := testbackend.NewDetached()
	if *admin != "" {
		username, password, ok := strings.Cut(*admin, ":")
		if !ok || username == "" {
			log.Fatalf("invalid -admin %q, want username:password", *admin)
		}
		if len(password) > testbackend.MaxPasswordBytes {
			log.Fatalf("-admin password is longer than %d bytes", testbackend.MaxPasswordBytes)
		}
		u := backend.AddUser(username, password, true)
		logger.Info(ctx, "seeded administrator", "id", u.ID, "username", u.Username)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "serving", "addr", *addr, "api", "http://"+*addr+testbackend.APIPrefix)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("%v", err)
	}
}
