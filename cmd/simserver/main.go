// Command simserver runs the Double-Layer HotStuff simulation server:
// an HTTP/WebSocket API in front of an in-memory session manager backed
// by an embedded Pebble store, grounded on
// uhyunpark-hyperlicked/cmd/node/main.go's wiring shape (load config,
// build logger, construct the domain objects, start the API server,
// wait on a signal context).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uhyunpark/hyperlicked/params"
	"github.com/uhyunpark/hyperlicked/pkg/httpapi"
	"github.com/uhyunpark/hyperlicked/pkg/session"
	"github.com/uhyunpark/hyperlicked/pkg/store"
	"github.com/uhyunpark/hyperlicked/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	if err := os.MkdirAll("data", 0755); err != nil {
		sugar.Fatalw("data_dir_failed", "err", err)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		sugar.Fatalw("store_open_failed", "err", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := session.NewManager(sugar, util.RealClock{}, db, nil)
	apiServer := httpapi.NewServer(manager, sugar)
	manager.SetBroadcaster(apiServer.Hub())

	restored, err := db.LoadAll()
	if err != nil {
		sugar.Warnw("session_restore_failed", "err", err)
	}
	for _, snap := range restored {
		manager.Restore(snap)
	}
	sugar.Infow("sessions_restored", "count", len(restored))

	go apiServer.Hub().Run(ctx.Done())

	sugar.Infow("simserver_starting",
		"addr", cfg.Server.Addr,
		"default_node_count", cfg.Defaults.NodeCount,
		"default_branch_count", cfg.Defaults.BranchCount)

	go func() {
		if err := apiServer.Start(cfg.Server.Addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("simserver_shutting_down")
}
