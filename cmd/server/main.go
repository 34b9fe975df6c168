package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/liveui/live-ui/internal/handlers"
	"github.com/liveui/live-ui/internal/services"
	"gopkg.in/yaml.v3"
)

func loadConfig() (config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine; everything has a default or an env fallback.
			return defaultConfig(), nil
		}
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := config{}
	if err := yaml.NewDecoder(cfgFile).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config{}, fmt.Errorf("error decoding config file: %w", err)
	}
	if cfg.LLM == nil {
		cfg = defaultConfig()
	}
	return cfg, nil
}

func openStore(cfg storeConfig) (handlers.Store, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return services.NewMemory(), func() error { return nil }, nil
	case "bolt":
		path := cfg.Path
		if path == "" {
			path = "store.db"
		}
		boltDB, err := services.NewBoltDB(path)
		if err != nil {
			return nil, nil, err
		}
		return boltDB, boltDB.Close, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "store.sqlite"
		}
		db, err := services.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

func main() {
	// Matches the deployment layout: secrets live in a .env next to the binary.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	llm, err := cfg.LLM.llm(cfg.SystemPrompt, logger)
	if err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal(err)
	}

	m, err := handlers.NewMain(llm, store, logger, handlers.Options{
		Grounding:       cfg.LLM.grounding(),
		ChunkSize:       cfg.ChunkSize,
		StreamDelay:     time.Duration(cfg.StreamDelay),
		GenerateTimeout: time.Duration(cfg.GenerateTimeout),
		AllowedOrigins:  cfg.AllowedOrigins,
	})
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", m.HandleRoot)
	mux.HandleFunc("POST /chat", m.HandleChat)
	mux.HandleFunc("POST /chat/stream", m.HandleChatStream)
	mux.HandleFunc("GET /conversations/{conversation_id}", m.HandleGetConversation)
	mux.HandleFunc("DELETE /conversations/{conversation_id}", m.HandleDeleteConversation)
	mux.HandleFunc("GET /render/{conversation_id}/{message_id}", m.HandleRenderMessage)
	mux.HandleFunc("POST /render-html", m.HandleRenderHTML)
	mux.HandleFunc("GET /health", m.HandleHealth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           m.CORS(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := closeStore(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Println("Server starting on :" + cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Start shutdown, signal: %v", sig)

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
			if err := srv.Close(); err != nil {
				log.Printf("Forcing server close: %v", err)
			}
		}
	}
}
