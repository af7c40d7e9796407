// Package main exports the stored tip collection to stdout in a chosen
// format. Useful for piping into files or spreadsheets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tipbase-server/internal/binding"
	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/grid"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/service"
	"github.com/tipbase-server/internal/storage"
)

func main() {
	format := flag.String("format", "csv", "Export format: csv, excel, html, text, print")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.Init(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))

	kv, err := storage.NewRedisKV(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()
	bus := event.NewBus(nil, logging.Global())
	tipsService := service.NewTipsService(kv, bus, cfg.Tips, logging.Global())

	tipsBinding := binding.NewTipsBinding(ctx, tipsService, bus)
	defer tipsBinding.Close()
	if !tipsBinding.Loaded() {
		log.Fatal("Failed to load tips")
	}
	tips := tipsBinding.Tips()

	columns := []grid.Column[*models.GeneratedTip]{
		{ID: "id", Header: "ID", Value: func(t *models.GeneratedTip) interface{} { return t.ID }, Sortable: true},
		{ID: "generated", Header: "Generated", Value: func(t *models.GeneratedTip) interface{} {
			return time.UnixMilli(t.Timestamp).Format(time.RFC3339)
		}, Sortable: true},
		{ID: "fixtures", Header: "Fixtures", Value: func(t *models.GeneratedTip) interface{} { return len(t.Fixtures) }, Sortable: true},
		{ID: "status", Header: "Status", Value: func(t *models.GeneratedTip) interface{} { return string(t.Status) }, Sortable: true},
		{ID: "tipster", Header: "Tipster", Value: func(t *models.GeneratedTip) interface{} { return t.AssignedTipsterName }, Sortable: true},
	}

	g, err := grid.New(ctx, grid.Config[*models.GeneratedTip]{
		Columns: columns,
		RowID:   func(t *models.GeneratedTip) string { return t.ID },
	}, tips)
	if err != nil {
		log.Fatalf("Failed to build grid: %v", err)
	}

	data, err := g.Export(grid.Format(*format), "Generated Tips")
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	if _, err := os.Stdout.Write(data); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d tips as %s\n", len(tips), *format)
}
