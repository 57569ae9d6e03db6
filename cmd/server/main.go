package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "academia/internal/adapters/email"
	web "academia/internal/adapters/http"
	"academia/internal/adapters/pdf"
	"academia/internal/adapters/storage"
	settingsStore "academia/internal/adapters/storage/settings"
	studentStore "academia/internal/adapters/storage/student"
	"academia/internal/adapters/whatsapp"
	"academia/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Env != "production" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.SQLiteDBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	slog.Info("startup_event", "event", "database_ready", "path", cfg.SQLiteDBPath)

	stores := &web.Stores{
		StudentStore:  studentStore.NewSQLiteStore(db),
		SettingsStore: settingsStore.NewSQLiteStore(db),
	}

	// WhatsApp is the primary reminder channel; email is the fallback for
	// students without a phone and stays disabled without a Resend key.
	var emailSender emailPkg.Sender
	if cfg.ResendKey != "" {
		emailSender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("startup_event", "event", "email_sender_configured", "provider", "resend")
	} else if cfg.Env == "production" {
		slog.Warn("email fallback disabled: ACADEMIA_RESEND_KEY is not set")
	}
	web.SetSenders(whatsapp.NewTwilioSender(), emailSender, cfg.EmailFrom)
	web.SetRenderer(pdf.NewFPDFRenderer())

	mux := web.NewMux(stores, web.Options{
		TokenHash:       cfg.APITokenHash,
		AllowedOrigins:  cfg.AllowedOrigins,
		DispatchTimeout: cfg.DispatchTimeout,
		MaxInFlight:     cfg.DispatchMaxInFlight,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("startup_event", "event", "listening", "addr", server.Addr, "version", version, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
