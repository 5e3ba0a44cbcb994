// Package http implements the optional HTTP interface: health checks
// and token-protected admin endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// AdminTokenHash is the bcrypt hash of the admin bearer token.
	// Empty disables the admin endpoints.
	AdminTokenHash string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies contains everything the HTTP handlers need.
type Dependencies struct {
	GetProgressHandler       *query.GetProgressHandler
	GetStatsHandler          *query.GetStatsHandler
	CheckAchievementsHandler *command.CheckAchievementsHandler

	// Users resolves telegram_id into a user for the admin endpoints.
	Users user.Repository

	// Checks are named dependency probes for /health (db, redis).
	Checks map[string]HealthCheck

	Logger *logger.Logger

	// Version is reported by /health.
	Version string
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	logger     *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("http: server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("http server listening", logger.F("addr", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// ROUTES
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)

	if s.config.AdminTokenHash != "" {
		s.router.HandleFunc("GET /admin/progress", s.requireAdmin(s.handleAdminProgress))
		s.router.HandleFunc("GET /admin/stats", s.requireAdmin(s.handleAdminStats))
		s.router.HandleFunc("POST /admin/achievements/check", s.requireAdmin(s.handleAdminCheckAchievements))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// HEALTH
// ─────────────────────────────────────────────────────────────────────────────

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.mu.RLock()
	uptime := time.Since(s.startedAt).Round(time.Second)
	s.mu.RUnlock()

	resp := healthResponse{
		Status:  "ok",
		Version: s.deps.Version,
		Uptime:  uptime.String(),
		Checks:  make(map[string]string, len(s.deps.Checks)),
	}

	status := http.StatusOK
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	s.writeJSON(w, status, resp)
}

// ─────────────────────────────────────────────────────────────────────────────
// ADMIN
// Endpoints мониторинга для владельца: прогресс, статистика и
// внеплановая проверка достижений любого пользователя по telegram_id.
// Токен сверяется с bcrypt-хэшем из конфигурации.
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminTokenHash), []byte(token)); err != nil {
			s.writeError(w, http.StatusForbidden, "invalid token")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	return token, token != ""
}

func (s *Server) handleAdminProgress(w http.ResponseWriter, r *http.Request) {
	telegramID, err := telegramIDParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{TelegramID: telegramID})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	telegramID, err := telegramIDParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.deps.GetStatsHandler.Handle(r.Context(), query.GetStatsQuery{TelegramID: telegramID})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type unlockedAchievement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji,omitempty"`
	XPReward int    `json:"xp_reward"`
}

type checkAchievementsResponse struct {
	Unlocked []unlockedAchievement `json:"unlocked"`
	LevelUp  bool                  `json:"level_up"`
	Level    int                   `json:"level"`
}

func (s *Server) handleAdminCheckAchievements(w http.ResponseWriter, r *http.Request) {
	telegramID, err := telegramIDParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.deps.Users.GetByTelegramID(r.Context(), user.TelegramID(telegramID))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}

	result, err := s.deps.CheckAchievementsHandler.Handle(r.Context(),
		command.CheckAchievementsCommand{UserID: u.ID})
	if err != nil {
		s.writeQueryError(w, err)
		return
	}

	resp := checkAchievementsResponse{
		Unlocked: make([]unlockedAchievement, 0, len(result.Unlocked)),
		LevelUp:  result.LevelUp,
		Level:    int(result.NewLevel),
	}
	for _, a := range result.Unlocked {
		resp.Unlocked = append(resp.Unlocked, unlockedAchievement{
			ID:       a.ID,
			Name:     a.Name,
			Emoji:    a.Emoji,
			XPReward: a.XPReward,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func telegramIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("telegram_id")
	if raw == "" {
		return 0, errors.New("telegram_id query parameter is required")
	}
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
		return 0, errors.New("telegram_id must be a positive integer")
	}
	return id, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MIDDLEWARE AND HELPERS
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("http handler panic",
					logger.F("panic", fmt.Sprintf("%v", rec)),
					logger.F("path", r.URL.Path),
					logger.F("stack", string(debug.Stack())),
				)
				s.writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)

		s.logger.Debug("http request",
			logger.F("method", r.Method),
			logger.F("path", r.URL.Path),
			logger.F("duration", time.Since(start).String()),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	// доменные not-found отдаются как 404, остальное - 500
	if errors.Is(err, shared.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.logger.Error("http query failed", logger.Err(err))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", logger.Err(err))
	}
}
