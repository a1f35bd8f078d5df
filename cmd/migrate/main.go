package main

import (
	"flag"

	"collateral-ledger/internal/config"
	"collateral-ledger/internal/infrastructure/logger"
	"collateral-ledger/internal/infrastructure/migrations"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if *down > 0 {
		if err := migrations.Down(cfg.MySQLDSN(), *down); err != nil {
			log.Fatal(err)
		}
		log.WithField("steps", *down).Info("rolled back")
		return
	}
	if err := migrations.Up(cfg.MySQLDSN()); err != nil {
		log.Fatal(err)
	}
	log.Info("schema up to date")
}
