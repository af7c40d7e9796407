// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/service"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

// Service interfaces for dependency injection and testing

// AuthServiceInterface defines the interface for auth service operations
type AuthServiceInterface interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, email, password, name string) (*models.User, error)
	Logout(ctx context.Context) error
	DeductTokens(ctx context.Context, amount int) (int, error)
	AddTokens(ctx context.Context, amount int) (int, error)
	RemainingTokens(ctx context.Context) (int, error)
}

// NotificationServiceInterface defines the interface for feed operations
type NotificationServiceInterface interface {
	List(ctx context.Context) ([]*models.Notification, error)
	Add(ctx context.Context, typ types.NotificationType, title, message string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	ClearAll(ctx context.Context) error
	UnreadCount(ctx context.Context) (int, error)
}

// TipsServiceInterface defines the interface for tips service operations
type TipsServiceInterface interface {
	List(ctx context.Context) ([]*models.GeneratedTip, error)
	GetByID(ctx context.Context, id string) (*models.GeneratedTip, error)
	Generate(ctx context.Context, filters models.TipFilters) (*models.GeneratedTip, error)
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	AssignTipster(ctx context.Context, tipID string, tipster models.Tipster) error
	AddReview(ctx context.Context, tipID string, tipster models.Tipster, commentFn func(models.Fixture) string) error
	AddReviewWithComments(ctx context.Context, tipID string, tipster models.Tipster, commentsByFixtureID map[string]string) error
}

// DirectoryInterface defines the interface for the user directory
type DirectoryInterface interface {
	Search(ctx context.Context, search string, pageIndex, pageSize int) (*storage.DirectoryPage, error)
	All(ctx context.Context) ([]*models.DirectoryUser, error)
	Delete(ctx context.Context, id string) error
}

// Server represents the HTTP API server.
type Server struct {
	router        *mux.Router
	httpServer    *http.Server
	authService   AuthServiceInterface
	notifications NotificationServiceInterface
	tipsService   TipsServiceInterface
	directory     DirectoryInterface
	config        *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TipCost         int
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance. The directory is optional;
// a nil repository disables the user directory endpoints.
func NewServer(
	config *ServerConfig,
	authService *service.AuthService,
	notifications *service.NotificationService,
	tipsService *service.TipsService,
	directory *storage.DirectoryRepository,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		authService:   authService,
		notifications: notifications,
		tipsService:   tipsService,
		config:        config,
	}
	if directory != nil {
		s.directory = directory
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Middleware order matters
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Auth endpoints
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/signup", s.handleSignup).Methods("POST")
	api.HandleFunc("/auth/logout", s.handleLogout).Methods("POST")
	api.HandleFunc("/auth/me", s.handleMe).Methods("GET")

	// Token endpoints
	api.HandleFunc("/tokens/balance", s.handleTokenBalance).Methods("GET")
	api.HandleFunc("/tokens/deduct", s.handleDeductTokens).Methods("POST")
	api.HandleFunc("/tokens/topup", s.handleTopUp).Methods("POST")

	// Notification endpoints
	api.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	api.HandleFunc("/notifications", s.handleClearNotifications).Methods("DELETE")
	api.HandleFunc("/notifications/unread-count", s.handleUnreadCount).Methods("GET")
	api.HandleFunc("/notifications/read-all", s.handleMarkAllRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods("POST")

	// Tips endpoints
	api.HandleFunc("/tips", s.handleListTips).Methods("GET")
	api.HandleFunc("/tips", s.handleClearTips).Methods("DELETE")
	api.HandleFunc("/tips/generate", s.handleGenerateTip).Methods("POST")
	api.HandleFunc("/tips/{id}", s.handleGetTip).Methods("GET")
	api.HandleFunc("/tips/{id}", s.handleDeleteTip).Methods("DELETE")
	api.HandleFunc("/tips/{id}/assign", s.handleAssignTipster).Methods("POST")
	api.HandleFunc("/tips/{id}/review", s.handleReviewTip).Methods("POST")

	// User directory endpoints
	if s.directory != nil {
		api.HandleFunc("/users", s.handleListUsers).Methods("GET")
		api.HandleFunc("/users/export", s.handleExportUsers).Methods("GET")
		api.HandleFunc("/users/{id}", s.handleDeleteUser).Methods("DELETE")
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tipbase-server",
	})
}

// Router returns the underlying router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Global().WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Global().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
