// Package main is the entry point for the bancho login-and-presence server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"akatsuki.pw/bancho/internal/channels"
	"akatsuki.pw/bancho/internal/config"
	"akatsuki.pw/bancho/internal/database"
	"akatsuki.pw/bancho/internal/geo"
	"akatsuki.pw/bancho/internal/handlers"
	"akatsuki.pw/bancho/internal/kv"
	"akatsuki.pw/bancho/internal/lock"
	"akatsuki.pw/bancho/internal/login"
	"akatsuki.pw/bancho/internal/models"
	"akatsuki.pw/bancho/internal/notify"
	"akatsuki.pw/bancho/internal/sessions"
	"akatsuki.pw/bancho/internal/streams"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.DBPath, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	store, err := kv.New(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer store.Close()

	locks := lock.NewManager(store.Client())

	geoReader, err := geo.Open(cfg.GeolocationDBPath)
	if err != nil {
		log.Fatalf("Failed to open geolocation database: %v", err)
	}
	defer geoReader.Close()

	streamRegistry := streams.New(db)
	channelRegistry := channels.New(db, streamRegistry)
	sessionRegistry := sessions.New(db, store, streamRegistry)
	notifier := notify.New(db, notify.Config{
		GeneralWebhookURL:      cfg.DiscordGeneralAnticheatWebhook,
		ConfidentialWebhookURL: cfg.DiscordConfidentialAnticheatWebhook,
	})

	loginController := login.New(db, store, locks, geoReader, sessionRegistry, channelRegistry, streamRegistry, notifier, cfg)

	log.Println("Bootstrapping BanchoBot session")
	if err := connectBot(sessionRegistry, db); err != nil {
		log.Fatalf("Failed to bootstrap BanchoBot session: %v", err)
	}

	log.Println("Seeding channel catalog")
	if err := instantiateChannels(channelRegistry, db); err != nil {
		log.Fatalf("Failed to seed channel catalog: %v", err)
	}

	router := setupRouter(cfg, loginController)
	srv := &http.Server{Addr: cfg.ServerAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server is ready for connections and listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed with error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutdown signal received. Starting graceful shutdown...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Error during graceful server shutdown: %v", err)
	}

	log.Println("Server stopped successfully. Exiting.")
}

// connectBot mirrors connect_aika: it's a no-op if the BanchoBot already has
// a live token (e.g. a restart without a database reset), otherwise it
// fetches the user 999 row and creates its session exactly as the original
// does (empty ip, utc_offset 24, no tournament/DM-block flags).
func connectBot(sessionRegistry *sessions.Registry, db *database.DB) error {
	if _, err := sessionRegistry.FetchBot(); err == nil {
		return nil
	}

	botUser, err := db.GetUserByID(sessions.BotUserID)
	if err != nil {
		return err
	}

	_, err = sessionRegistry.CreateOne(sessions.NewTokenParams{
		UserID:            botUser.ID,
		Username:          botUser.Username,
		Privileges:        botUser.Privileges,
		Whitelist:         botUser.Whitelist,
		SilenceEndTime:    botUser.SilenceEnd,
		IP:                "",
		UTCOffset:         24,
		Tournament:        false,
		BlockNonFriendsDM: false,
	})
	return err
}

// instantiateChannels mirrors instantiate_channels: every row of the static
// bancho_channels seed table is created in 'channels' unless it's already
// present, with moderated always false at seed time.
func instantiateChannels(channelRegistry *channels.Registry, db *database.DB) error {
	catalog, err := db.FetchBanchoChannelsCatalog()
	if err != nil {
		return err
	}

	for _, entry := range catalog {
		if _, err := channelRegistry.FetchOne(entry.Name); err == nil {
			continue
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		if err := channelRegistry.CreateOne(&models.Channel{
			Name:        entry.Name,
			Description: entry.Description,
			PublicRead:  entry.PublicRead,
			PublicWrite: entry.PublicWrite,
			Moderated:   false,
			Instance:    entry.Temp,
		}); err != nil {
			return err
		}
	}
	return nil
}

// setupRouter wires the bancho wire endpoint and the status endpoint behind
// the teacher's standard CORS/logging/recovery middleware stack.
func setupRouter(cfg *config.AppConfig, loginController *login.Controller) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CoopMiddleware)
	setupCORS(r, cfg)

	banchoHandler := handlers.NewBanchoHandler(loginController)
	statusHandler := handlers.NewStatusHandler(cfg)

	banchoHandler.RegisterRoutes(r)
	statusHandler.RegisterRoutes(r)

	return r
}

func setupCORS(r *chi.Mux, cfg *config.AppConfig) {
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "osu-token", "User-Agent"},
		ExposedHeaders:   []string{"cho-token", "Content-Length", "Content-Type"},
		MaxAge:           cfg.CORSMaxAge,
	}).Handler)
}

// CoopMiddleware sets cross-origin isolation headers, carried over from the
// teacher's HTTP stack defaults.
func CoopMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin-allow-popups")
		w.Header().Set("Cross-Origin-Embedder-Policy", "unsafe-none")
		next.ServeHTTP(w, r)
	})
}
