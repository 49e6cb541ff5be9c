package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, rdb *redis.Client, store Store, spaDir string) {
	broker := NewBroker()
	reg := NewRegistry(store)
	live := NewLiveCache(rdb)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("ScoreKeep API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))
	r.Get("/ws/matches/{matchID}", handleWatch(logger, reg, broker))

	// Match routes — open to scorekeepers and spectators.
	r.Route("/api/matches", func(r chi.Router) {
		r.Post("/", handleCreateMatch(store, reg, live))
		r.Get("/", handleListMatches(store))
		r.Get("/{matchID}", handleGetMatch(reg))
		r.Post("/{matchID}/score", handleScore(reg, store, broker, live))
		r.Post("/{matchID}/games", handleStartGame(reg, store, broker, live))
		r.Post("/{matchID}/warmup", handleStartWarmup(reg, store, broker, live))
		r.Post("/{matchID}/warmup/end", handleEndWarmup(reg, store, broker, live))
		r.Post("/{matchID}/end", handleEndMatch(reg, store, broker, live))
		r.Get("/{matchID}/events", handleEvents(reg, broker))

		r.With(adminAuthMiddleware(store)).Delete("/{matchID}", handleDeleteMatch(store, reg, live))
	})

	// Template reads are open; writes require admin auth.
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", handleListTemplates(store))
		r.Get("/{templateID}", handleGetTemplate(store))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(store))
			r.Post("/", handleCreateTemplate(store))
			r.Put("/{templateID}", handleUpdateTemplate(store))
			r.Delete("/{templateID}", handleDeleteTemplate(store))
		})
	})

	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.With(adminAuthMiddleware(store)).Get("/api/admin/me", handleAdminMe())

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
