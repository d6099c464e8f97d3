package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"sahaplatform-push/internal/dispatch"
	"sahaplatform-push/internal/handlers"
	"sahaplatform-push/internal/metrics"
	"sahaplatform-push/internal/resolve"
	"sahaplatform-push/internal/store"
	"sahaplatform-push/internal/vapid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	// Redis Configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Initialize Redis store (for listing events)
	redisStore := store.NewRedisStore(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// PostgreSQL Configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Initialize PostgreSQL store (subscriptions, users, messages)
	pgStore, err := store.NewPostgresStore(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	// Run database migrations
	ctx := context.Background()
	if err := pgStore.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// VAPID key material: from env, or generate a pair on first boot.
	// A malformed supplied key is a deployment mistake and fatal here,
	// never a per-request failure.
	vapidPrivateKey := os.Getenv("VAPID_PRIVATE_KEY")
	vapidPublicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if vapidPrivateKey == "" || vapidPublicKey == "" {
		log.Println("VAPID keys not found in environment. Generating new keys...")
		vapidPrivateKey, vapidPublicKey, err = vapid.GenerateKeys()
		if err != nil {
			log.Fatal("Failed to generate VAPID keys:", err)
		}
		log.Printf("Generated VAPID Keys:\nVAPID_PRIVATE_KEY=%s\nVAPID_PUBLIC_KEY=%s\n(Add these to your .env file to persist them)", vapidPrivateKey, vapidPublicKey)
	}
	keys, err := vapid.LoadKeys(vapidPrivateKey, vapidPublicKey)
	if err != nil {
		log.Fatalf("Invalid VAPID keys: %v", err)
	}

	subject := os.Getenv("VAPID_SUBJECT")
	if subject == "" {
		subject = "mailto:push@sahaplatform.example"
	}
	signer := vapid.NewSigner(keys, subject)

	// Session cookie secret, read only after godotenv has loaded .env
	handlers.InitSessions(os.Getenv("SESSION_SECRET"))

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Core pipeline
	dispatcher := dispatch.NewDispatcher(pgStore, signer, nil, collector)
	resolver := resolve.NewResolver(pgStore, pgStore, redisStore)

	h := handlers.NewHandler(pgStore, pgStore, pgStore, redisStore, dispatcher, resolver, signer.PublicKey())

	// Public push API
	http.HandleFunc("/api/push/vapid-public-key", handlers.RateLimitMiddleware(h.VAPIDKeyHandler))
	http.HandleFunc("/api/push/subscribe", handlers.RateLimitMiddleware(h.SubscribeHandler))
	http.HandleFunc("/api/push/unsubscribe", handlers.RateLimitMiddleware(h.UnsubscribeHandler))
	http.HandleFunc("/api/push/trigger", handlers.RateLimitMiddleware(h.TriggerHandler))
	http.HandleFunc("/api/push/latest", handlers.RateLimitMiddleware(h.LatestHandler))

	// Event ingest from the marketplace app
	http.HandleFunc("/api/events/message", h.MessageEventHandler)
	http.HandleFunc("/api/events/listing", h.ListingEventHandler)
	http.HandleFunc("/api/events/read", h.ReadEventHandler)

	// Session seam
	http.HandleFunc("/api/login", handlers.RateLimitMiddleware(h.LoginHandler))
	http.HandleFunc("/api/logout", h.LogoutHandler)

	// Prometheus scrape endpoint
	http.Handle("/metrics", metrics.Handler(registry))

	// Serve static files (service worker + subscribe script)
	fs := http.FileServer(http.Dir("web/static"))
	http.Handle("/static/", http.StripPrefix("/static/", fs))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on :" + port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
