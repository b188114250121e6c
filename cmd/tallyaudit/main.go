package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/governance/internal/config"
	"github.com/vncsmyrnk/governance/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.Postgres.Host, "db-host", cfg.Postgres.Host, "Database host")
	flag.StringVar(&cfg.Postgres.Port, "db-port", cfg.Postgres.Port, "Database port")
	flag.StringVar(&cfg.Postgres.User, "db-user", cfg.Postgres.User, "Database user")
	flag.StringVar(&cfg.Postgres.Password, "db-pass", cfg.Postgres.Password, "Database password")
	flag.StringVar(&cfg.Postgres.DB, "db-name", cfg.Postgres.DB, "Database name")
	timeout := flag.Duration("timeout", 5*time.Minute, "Audit timeout")
	flag.Parse()

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	auditService := services.NewAuditService(postgres.NewLedgerRepository(db))

	// keep a stuck query from hanging the job
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Println("Starting tally audit...")

	discrepancies, err := auditService.AuditTallies(ctx)
	if err != nil {
		log.Fatalf("Error auditing tallies: %v", err)
	}

	for _, d := range discrepancies {
		log.Printf("proposal %s: stored %d/%d, counted %d/%d",
			d.ProposalID, d.StoredFor, d.StoredAgainst, d.CountedFor, d.CountedAgainst)
	}
	if len(discrepancies) > 0 {
		log.Printf("Tally audit found %d discrepancies.", len(discrepancies))
		db.Close()
		os.Exit(1)
	}

	log.Println("Tally audit completed, all tallies match.")
}
