package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/modvice/shopstock/config"
	"github.com/modvice/shopstock/internal/adminapi"
	"github.com/modvice/shopstock/internal/app"
	"github.com/modvice/shopstock/internal/webserver"
	"github.com/modvice/shopstock/pkg/common"
)

var (
	confFile = flag.String("c", "/etc/shopstock.yml", "config file")
	showVer  = flag.Bool("v", false, "show version")
	initDb   = flag.Bool("initdb", false, "drop and recreate all tables")
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("shopstock %s (built %s)\n", version, buildTime)
		return
	}

	cfg := config.LoadConfig(*confFile)
	common.MakeDir(cfg.System.Workdir)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	server := webserver.Init(application)
	server.RegisterAuthRoutes()
	adminapi.Init()

	go func() {
		if err := server.Listen(); err != nil {
			zap.S().Fatalf("web server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	zap.S().Info("shutting down")
}
