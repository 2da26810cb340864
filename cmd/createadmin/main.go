package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/config"
	"github.com/GTDGit/stockcentral/internal/database"
	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/repository"
	"github.com/GTDGit/stockcentral/internal/service"
)

// createadmin provisions an admin account allowed to manage the catalog.
func main() {
	var (
		email    = flag.String("email", "", "Admin email address (required)")
		password = flag.String("password", "", "Admin password (required)")
		name     = flag.String("name", "", "Display name")
		caps     = flag.String("capabilities", models.CapabilityManageCatalog, "Comma separated capabilities")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	authSvc := service.NewAdminAuthService(repository.NewAdminUserRepository(db), cfg.JWTSecret, cfg.JWTTTL)
	user, err := authSvc.CreateAdmin(ctx, *email, *password, *name, splitCapabilities(*caps))
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("failed to create admin")
	}

	log.Info().Int("user_id", user.ID).Str("email", user.Email).Strs("capabilities", user.Capabilities).Msg("admin created")
}

func splitCapabilities(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
