package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/garagekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/garagekeeper/internal/client/appstate"
	"github.com/dmitrijs2005/garagekeeper/internal/client/cli"
	"github.com/dmitrijs2005/garagekeeper/internal/client/config"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := appstate.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer st.Close()

	cli.NewApp(st, os.Stdin, os.Stdout).Run(ctx)
}
