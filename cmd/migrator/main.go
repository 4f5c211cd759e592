package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/subject-quiz/internal/bank"
	"github.com/gokatarajesh/subject-quiz/internal/config"
	"github.com/gokatarajesh/subject-quiz/internal/db/repository"
)

func main() {
	var (
		command  = flag.String("command", "up", "Command: up, down, status, or seed")
		dir      = flag.String("dir", "db/migrations", "Directory containing migration files")
		banksDir = flag.String("banks", "banks", "Directory of bank files loaded by seed")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	var pg config.Postgres
	if err := env.Parse(&pg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse postgres config")
	}
	if pg.User == "" || pg.Database == "" {
		log.Fatal().Msg("PG_USER and PG_DATABASE environment variables are required")
	}

	if *command == "seed" {
		if err := seed(pg, *banksDir); err != nil {
			log.Fatal().Err(err).Str("dir", *banksDir).Msg("seed failed")
		}
		return
	}

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Int("port", pg.Port).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pg.Host).
		Str("database", pg.Database).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("failed to set goose dialect")
	}

	switch *command {
	case "up":
		if err := goose.Up(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")

	case "down":
		if err := goose.Down(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations down")
		}
		log.Info().Msg("migrations rolled back successfully")

	case "status":
		if err := goose.Status(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, status, or seed")
	}
}

// seed copies every bank file under dir into Postgres, replacing subjects that already exist.
func seed(pg config.Postgres, dir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	banks, err := bank.LoadDir(dir, log.Logger)
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, pg.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := repository.NewBankRepository(repository.NewPGStore(pool))

	subjects, err := banks.Subjects(ctx)
	if err != nil {
		return err
	}
	for _, s := range subjects {
		templates, err := banks.Bank(ctx, s.ID)
		if err != nil {
			return err
		}
		if err := repo.Replace(ctx, s.ID, s.Title, bank.ToRows(templates)); err != nil {
			return err
		}
		log.Info().Str("subject", s.ID).Int("questions", len(templates)).Msg("subject seeded")
	}
	return nil
}
