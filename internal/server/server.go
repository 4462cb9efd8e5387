package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/shoplist/internal/avatar"
	"github.com/dukerupert/shoplist/internal/clock"
	"github.com/dukerupert/shoplist/internal/handler"
	"github.com/dukerupert/shoplist/internal/identity"
	"github.com/dukerupert/shoplist/internal/middleware"
	"github.com/dukerupert/shoplist/internal/shopping"
	"github.com/dukerupert/shoplist/internal/store"
	"github.com/dukerupert/shoplist/internal/suggest"
	ws "github.com/dukerupert/shoplist/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Config struct {
	Location   *time.Location
	SessionTTL time.Duration
	Avatar     avatar.Config
	Clock      clock.Clock
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	service      *shopping.Service
	provider     identity.Provider
	listH        *handler.ListHandler
	itemH        *handler.ItemHandler
	catalogH     *handler.CatalogHandler
	authH        *handler.AuthHandler
	liveH        *handler.LiveHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	hub := ws.NewHub(logger.With("component", "websocket"))

	listStore := store.NewListStore(db)
	itemStore := store.NewItemStore(db)
	productStore := store.NewProductStore(db)
	historyStore := store.NewHistoryStore(db)

	// Auth stores
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	engine := suggest.New(historyStore, productStore, cfg.Clock, logger)
	svc := shopping.NewService(listStore, itemStore, productStore, shopping.Options{
		Clock:     cfg.Clock,
		Location:  cfg.Location,
		Feed:      hub,
		Suggester: engine,
		Logger:    logger,
	})
	provider := identity.NewPasswordProvider(userStore, sessionStore, cfg.SessionTTL)

	return &Server{
		db:           db,
		hub:          hub,
		service:      svc,
		provider:     provider,
		listH:        handler.NewListHandler(svc, cfg.Clock, cfg.Location, logger),
		itemH:        handler.NewItemHandler(svc, logger),
		catalogH:     handler.NewCatalogHandler(svc, logger),
		authH:        handler.NewAuthHandler(provider, avatar.New(cfg.Avatar), logger),
		liveH:        handler.NewLiveHandler(svc, logger),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(cfg.Clock),
		logger:       logger,
	}
}

// Service returns the shopping use-cases, e.g. for seeding at startup.
func (s *Server) Service() *shopping.Service {
	return s.service
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.SignUp))
	outerMux.HandleFunc("POST /api/auth/signin", s.rateLimitedHandler(s.authH.SignIn))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.provider, s.logger.With("component", "auth"))
	outerMux.Handle("/", authMiddleware(protectedMux))

	httpLogger := s.logger.With("component", "http")
	return middleware.Recover(httpLogger)(middleware.RequestLogger(httpLogger)(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, authRateLimit, authRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account
	mux.HandleFunc("POST /api/auth/signout", s.authH.SignOut)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateProfile)
	mux.HandleFunc("POST /api/me/avatar", s.authH.UploadAvatar)

	// Lists
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists/between", s.listH.Between)
	mux.HandleFunc("POST /api/lists/bulk/weekly", s.listH.CreateWeekly)
	mux.HandleFunc("POST /api/lists/bulk/monthly", s.listH.CreateMonthly)
	mux.HandleFunc("POST /api/lists/from-template", s.listH.CreateFromTemplate)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)
	mux.HandleFunc("PATCH /api/lists/{id}/status", s.listH.UpdateStatus)
	mux.HandleFunc("PUT /api/lists/{id}/cover", s.listH.SetCover)
	mux.HandleFunc("POST /api/lists/{id}/duplicate", s.listH.Duplicate)
	mux.HandleFunc("GET /api/templates", s.listH.Templates)
	mux.HandleFunc("GET /api/summary/monthly", s.listH.MonthlyExpense)
	mux.HandleFunc("GET /api/summary/last", s.listH.LastListValue)

	// Items
	mux.HandleFunc("GET /api/lists/{id}/items", s.itemH.List)
	mux.HandleFunc("POST /api/lists/{id}/items", s.itemH.Create)
	mux.HandleFunc("DELETE /api/lists/{id}/items/purchased", s.itemH.ClearPurchased)
	mux.HandleFunc("POST /api/lists/{id}/products", s.itemH.AddProduct)
	mux.HandleFunc("GET /api/lists/{id}/suggestions", s.itemH.Suggestions)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.itemH.Toggle)
	mux.HandleFunc("GET /api/sort-strategies", s.itemH.SortStrategies)

	// Catalog
	mux.HandleFunc("GET /api/products", s.catalogH.Search)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /ws/lists", s.liveH.Lists)
}
