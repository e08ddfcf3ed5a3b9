// Package httpapi exposes the gateway's REST surface. Handlers decode the
// request, delegate to the application services and render either the DTO
// or the error envelope the taxonomy prescribes.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/metrics"
	"github.com/autozen/api-gateway/internal/middleware"
	"github.com/autozen/api-gateway/internal/service"
)

// Server bundles the gateway's HTTP endpoints.
type Server struct {
	auth    *service.AuthService
	payment *service.PaymentService
	logger  *logging.Logger
	metrics *metrics.Metrics
	router  *mux.Router
}

// Options carries the optional knobs for NewServer.
type Options struct {
	AllowedOrigins []string
	RateLimit      int
	RateBurst      int
}

// NewServer builds the router with the full middleware chain applied.
func NewServer(auth *service.AuthService, payment *service.PaymentService, logger *logging.Logger, m *metrics.Metrics, opts Options) *Server {
	s := &Server{
		auth:    auth,
		payment: payment,
		logger:  logger,
		metrics: m,
		router:  mux.NewRouter(),
	}

	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 100
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = opts.RateLimit * 2
	}

	s.router.Use(middleware.CORS(opts.AllowedOrigins))
	s.router.Use(middleware.Logging(logger))
	s.router.Use(middleware.Metrics("gateway", m))
	s.router.Use(middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst, logger).Handler())

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/payment/bank-card", s.handleAddBankCard).Methods(http.MethodPost)
	api.HandleFunc("/payment/bank-account", s.handleAddBankAccount).Methods(http.MethodPost)
	api.HandleFunc("/payment/p2b-transfer", s.handleP2BTransfer).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return s
}

// Router exposes the configured handler for the HTTP server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bearerToken extracts the Authorization bearer token, or "" when absent.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(body io.Reader, target interface{}) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeServiceError renders a taxonomy error as the {success, message}
// envelope with its mapped HTTP status. Anything that is not a ServiceError
// becomes a plain 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.GetServiceError(err)
	if se == nil {
		se = errors.Internal("", err)
	}

	if se.HTTPStatus >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).WithError(err).Error("request failed")
	}

	writeJSON(w, se.HTTPStatus, map[string]interface{}{
		"success": false,
		"message": se.Message,
	})
}

// writeValidationError renders a malformed request body as the bare
// {detail} envelope.
func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
}
