package main

import (
	"context"
	"flag"
	"log"

	"github.com/fatih/color"

	"retention-flow-be/internal/bootstrap"
	"retention-flow-be/internal/config"
	"retention-flow-be/pkg/database"
)

func main() {
	days := flag.Int("days", 1, "number of trailing UTC days to rebuild")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	color.Cyan("🚀 Running retention ETL for %d day(s)\n", *days)

	res, err := container.ETLService.Run(context.Background(), *days)
	if err != nil {
		color.Red("ETL failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Processed %d day(s) in %s", res.DaysProcessed, res.Duration)
	color.Green("Purged %d expired event(s)", res.EventsPurged)

	if len(res.Insights) == 0 {
		color.Yellow("No insights detected")
		return
	}
	color.Yellow("Insights:")
	for _, ins := range res.Insights {
		color.Yellow("  [%s] %s", ins.Kind, ins.Message)
	}
}
