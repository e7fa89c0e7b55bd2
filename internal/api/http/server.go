package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/asvronsky/cinemabot/internal/domain"
	"github.com/asvronsky/cinemabot/internal/lookup"
)

type LookupService interface {
	Lookup(ctx context.Context, userID int64, query string) (domain.PresentationRecord, error)
	History(ctx context.Context, userID int64) ([]domain.HistoryItem, error)
	UserStats(ctx context.Context, userID int64) ([]domain.TitleCount, error)
	GlobalStats(ctx context.Context) ([]domain.TitleCount, error)
}

type Server struct {
	lookup LookupService
	logger *slog.Logger
}

const maxQueryLength = 500

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(lookupService LookupService, options ...ServerOption) *Server {
	server := &Server{
		lookup: lookupService,
		logger: slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/lookup", s.handleLookup)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/stats/user", s.handleUserStats)
	mux.HandleFunc("/stats/global", s.handleGlobalStats)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "cinemabot",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, metricsMiddleware(traced))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "cinemabot",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query too long (max 500 characters)")
		return
	}

	record, err := s.lookup.Lookup(r.Context(), userID, query)
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "no movie matched the query")
		case domain.IsProviderError(err):
			s.logger.Warn("lookup upstream failure",
				slog.String("query", truncate(query, 80)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "upstream_error", "movie catalog is unavailable")
		default:
			s.logger.Error("lookup failed",
				slog.String("query", truncate(query, 80)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "internal_error", "lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return
	}

	items, err := s.lookup.History(r.Context(), userID)
	if err != nil {
		s.logger.Error("history read failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "history is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return
	}

	counts, err := s.lookup.UserStats(r.Context(), userID)
	if err != nil {
		s.logger.Error("user stats read failed", slog.Int64("userId", userID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "stats are unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"titles": counts})
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counts, err := s.lookup.GlobalStats(r.Context())
	if err != nil {
		s.logger.Error("global stats read failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "stats are unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"titles": counts})
}

func parseUserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("user"))
	if raw == "" {
		return 0, errors.New("user is required")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
