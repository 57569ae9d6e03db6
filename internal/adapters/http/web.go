package web

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"academia/internal/adapters/email"
	"academia/internal/adapters/http/middleware"
	"academia/internal/adapters/pdf"
	settingsStore "academia/internal/adapters/storage/settings"
	studentStore "academia/internal/adapters/storage/student"
	"academia/internal/adapters/whatsapp"
)

// Stores holds all storage dependencies.
type Stores struct {
	StudentStore  studentStore.Store
	SettingsStore settingsStore.Store
}

// Options configures the HTTP layer.
type Options struct {
	// TokenHash is the bcrypt hash of the API token. Empty disables auth.
	TokenHash string
	// AllowedOrigins is the CORS origin allowlist. Empty allows any origin.
	AllowedOrigins []string
	// DispatchTimeout bounds each provider call during a reminder run.
	// Zero uses the sender default.
	DispatchTimeout time.Duration
	// MaxInFlight bounds concurrent provider calls. Zero uses the default.
	MaxInFlight int
}

// Global stores instance (set by NewMux)
var stores *Stores

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global outbound adapters (set by SetSenders / SetRenderer)
var whatsappSender whatsapp.Sender
var emailSender email.Sender
var emailFromAddress string
var pdfRenderer pdf.Renderer

// Dispatch tuning (set by NewMux from Options)
var dispatchTimeout time.Duration
var dispatchMaxInFlight int

// SetSenders sets the outbound message senders for the application.
// The email sender may be nil; dispatch then has no fallback channel.
func SetSenders(wa whatsapp.Sender, em email.Sender, from string) {
	whatsappSender = wa
	emailSender = em
	emailFromAddress = from
}

// SetRenderer sets the report document renderer.
func SetRenderer(r pdf.Renderer) {
	pdfRenderer = r
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	dispatchTimeout = opts.DispatchTimeout
	dispatchMaxInFlight = opts.MaxInFlight

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /api/students", handleListStudents)
	mux.HandleFunc("POST /api/students", handleCreateStudent)
	mux.HandleFunc("GET /api/students/{id}", handleGetStudent)
	mux.HandleFunc("PUT /api/students/{id}", handleUpdateStudent)
	mux.HandleFunc("DELETE /api/students/{id}", handleDeleteStudent)
	mux.HandleFunc("POST /api/students/{id}/renew", handleRenewMembership)
	mux.HandleFunc("GET /api/roster", handleGetRoster)
	mux.HandleFunc("GET /api/dashboard", handleGetDashboard)
	mux.HandleFunc("GET /api/settings/messaging", handleGetMessagingSettings)
	mux.HandleFunc("PUT /api/settings/messaging", handlePutMessagingSettings)
	mux.HandleFunc("POST /api/reminders/dispatch", handleDispatchReminders)
	mux.HandleFunc("POST /api/reports", handleGenerateReport)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Auth -> SecurityHeaders -> Mux. CORS sits outside
	// auth so preflight requests succeed without a token; Timing and the
	// rate limit wrap everything.
	handler := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.Auth(opts.TokenHash, "/healthz"),
	)
	return middleware.Chain(corsHandler.Handler(handler),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}
