package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"ritual-coach-backend/internal/ai"
	"ritual-coach-backend/internal/analytics"
	"ritual-coach-backend/internal/auth"
	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/config"
	"ritual-coach-backend/internal/db"
	"ritual-coach-backend/internal/enhance"
	"ritual-coach-backend/internal/engine"
	"ritual-coach-backend/internal/rituals"
	"ritual-coach-backend/internal/store"
	"ritual-coach-backend/internal/templates"
)

const maxConns = 256

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	log.Println("✅ Connected to PostgreSQL!")

	st, err := store.New(database)
	if err != nil {
		log.Fatal("❌ Store init:", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		log.Fatal("❌ Migrate:", err)
	}

	// ----- TASK CATALOG -----
	cat, err := catalog.LoadCSV(cfg.CatalogPath)
	if err != nil {
		// an empty catalog is the one startup condition the core cannot absorb
		log.Fatalf("❌ Catalog load (%s): %v", cfg.CatalogPath, err)
	}
	log.Printf("✅ Catalog loaded: %d tasks", cat.Len())

	lib, err := templates.LoadYAML(cfg.VariationsPath)
	if err != nil {
		log.Printf("⚠️ Variations load (%s): %v — running without variations", cfg.VariationsPath, err)
		lib = templates.NewLibrary()
	}

	// ----- SELECTION PIPELINE -----
	// engine and gate serialize draws independently, so each needs its own source
	eng := engine.New(cat, rand.New(rand.NewSource(time.Now().UnixNano())))
	gate := engine.NewInterruptGate(nil)

	var cache enhance.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable (%s): %v — falling back to in-memory cache", cfg.RedisAddr, err)
		} else {
			cache = enhance.NewRedisCache(rdb)
			log.Println("✅ Redis response cache enabled")
		}
	}

	var generator enhance.Generator
	if cfg.OpenAIKey != "" {
		generator = ai.New(cfg.OpenAIKey, cfg.OpenAIModel)
		log.Printf("✅ AI enhancement enabled (model=%s, budget=$%.2f/day)", cfg.OpenAIModel, cfg.AIDailyBudget)
	} else {
		log.Println("⚠️ OPENAI_API_KEY not set — template tier only")
	}

	ledger := enhance.NewLedger(cfg.AIDailyBudget)
	enhancer := enhance.New(generator, ledger, cache, lib)

	h := rituals.NewHandler(database, st, cat, eng, gate, enhancer)

	secret := []byte(cfg.JWTSecret)
	mw := auth.New(secret)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH -----
	mux.HandleFunc("/auth/register", auth.RegisterHandler(database, secret))
	mux.HandleFunc("/auth/login", auth.LoginHandler(database, secret))
	mux.HandleFunc("/auth/logout", auth.LogoutHandler())
	mux.HandleFunc("/auth/me", mw.Wrap(auth.MeHandler(database)))
	mux.HandleFunc("/auth/delete", mw.Wrap(auth.DeleteAccountHandler(database)))

	// ----- RITUALS API -----
	mux.HandleFunc("/rituals/next", mw.Wrap(h.NextTask))
	mux.HandleFunc("/rituals/complete", mw.Wrap(h.Complete))
	mux.HandleFunc("/rituals/stats", mw.Wrap(h.Stats))
	mux.HandleFunc("/schedule/today", mw.Wrap(h.Schedule))
	mux.HandleFunc("/interrupt/check", mw.Wrap(h.InterruptCheck))

	// ----- STATE -----
	mux.HandleFunc("/state", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetState(w, r)
		case http.MethodPut:
			h.UpdateState(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/state/rollover", mw.Wrap(h.Rollover))
	mux.HandleFunc("/session/start", mw.Wrap(h.SessionStart))
	mux.HandleFunc("/session/peak", mw.Wrap(h.SessionPeak))
	mux.HandleFunc("/session/stop", mw.Wrap(h.SessionStop))

	// ----- ANALYTICS -----
	mux.HandleFunc("/analytics/app-opened", mw.Wrap(analytics.AppOpenedHandler(database)))
	mux.HandleFunc("/analytics/ritual-shown", mw.Wrap(analytics.RitualShownHandler(database)))
	mux.HandleFunc("/analytics/interrupt-shown", mw.Wrap(analytics.InterruptShownHandler(database)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Platform", "X-App-Version", "X-Session-Id"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		log.Fatal("❌ Listen:", err)
	}
	ln = netutil.LimitListener(ln, maxConns)

	log.Printf("🚀 API server is running on :%d", cfg.Port)
	log.Fatal(http.Serve(ln, handler))
}
