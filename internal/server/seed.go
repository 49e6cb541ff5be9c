package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/scorekeep/scorekeep/internal/scoring"
)

// SeedDefaults populates a fresh database: one preset template per sport
// when none exist, and the bootstrap admin account when credentials are
// configured. Safe to call on every startup.
func SeedDefaults(ctx context.Context, logger *slog.Logger, store Store, adminEmail, adminPassword string) error {
	n, err := store.CountTemplates(ctx)
	if err != nil {
		return fmt.Errorf("counting templates: %w", err)
	}

	if n == 0 {
		presets := []struct {
			sport scoring.Sport
			name  string
			color scoring.TemplateColor
		}{
			{scoring.SportVolleyball, "Volleyball", scoring.ColorBlue},
			{scoring.SportSquash, "Squash", scoring.ColorOrange},
			{scoring.SportUltimate, "Ultimate", scoring.ColorGreen},
		}

		for _, p := range presets {
			tpl, err := scoring.NewTemplate(p.sport, p.name, scoring.DefaultRules(p.sport))
			if err != nil {
				return fmt.Errorf("building %s preset: %w", p.sport, err)
			}
			tpl.Color = p.color
			if _, err := store.CreateTemplate(ctx, tpl); err != nil {
				return fmt.Errorf("seeding %s preset: %w", p.sport, err)
			}
		}
		logger.Info("seeded preset templates", "count", len(presets))
	}

	if adminEmail != "" && adminPassword != "" {
		_, _, err := store.AdminByEmail(ctx, adminEmail)
		if errors.Is(err, ErrNotFound) {
			hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hashing admin password: %w", err)
			}
			if err := store.CreateAdmin(ctx, adminEmail, string(hash)); err != nil {
				return fmt.Errorf("creating admin: %w", err)
			}
			logger.Info("created bootstrap admin", "email", adminEmail)
		} else if err != nil {
			return fmt.Errorf("looking up admin: %w", err)
		}
	}

	return nil
}
