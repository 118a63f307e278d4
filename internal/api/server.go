// Package api serves the JSON HTTP interface over echo.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/shopkeep/internal/accounts"
	"github.com/Veraticus/shopkeep/internal/catalog"
	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services behind the handlers.
type Deps struct {
	Store   service.Storage
	Clients *accounts.Clients
	Catalog *catalog.Service
	Books   *ledger.Service
	// Registry receives the HTTP and domain metrics. A fresh registry is
	// used when nil.
	Registry *prometheus.Registry
}

// Options tunes the server.
type Options struct {
	// IsDevel exposes internal error messages and the route listing.
	IsDevel bool
}

// Server is the HTTP front end.
type Server struct {
	echo     *echo.Echo
	store    service.Storage
	clients  *accounts.Clients
	catalog  *catalog.Service
	books    *ledger.Service
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
	opts     Options
}

// New builds the server and registers every route.
func New(deps Deps, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		store:    deps.Store,
		clients:  deps.Clients,
		catalog:  deps.Catalog,
		books:    deps.Books,
		metrics:  NewMetrics(reg),
		registry: reg,
		logger:   logger,
		opts:     opts,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.logRequests)

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting http listener", "url", "http://"+addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/status", s.status)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	if s.opts.IsDevel {
		e.GET("/", s.routes)
	}

	api := e.Group("/api")
	api.GET("/health", s.health)
	api.GET("/health/db", s.healthDB)
	api.GET("/business-types", s.listBusinessTypes)
	api.POST("/login", s.login)

	session := api.Group("", s.requireSession)
	session.POST("/logout", s.logout)
	session.GET("/me", s.me)
	session.POST("/me/password", s.changeOwnPassword)
	session.GET("/user/active-categories", s.activeCategories)

	session.GET("/notes", s.listNotes)
	session.POST("/notes", s.createNote)
	session.PUT("/notes/:id", s.updateNote)
	session.DELETE("/notes/:id", s.deleteNote)

	for path, kind := range entryKinds {
		g := session.Group("/" + path)
		g.GET("", s.listEntries(kind))
		g.POST("", s.createEntry(kind))
		g.GET("/summary", s.entrySummary(kind))
		g.PUT("/:id", s.updateEntry(kind))
		g.DELETE("/:id", s.deleteEntry(kind))
	}

	admin := session.Group("", requireAdmin)
	admin.POST("/users", s.createUser)
	admin.DELETE("/users", s.deleteUser)
	admin.POST("/users/password", s.updateUserPassword)

	admin.GET("/admin/users", s.listUsers)
	admin.DELETE("/admin/users", s.adminDeleteUser)
	admin.GET("/admin/categories", s.categoriesByType)
	admin.POST("/admin/categories", s.createCategory)
	admin.PATCH("/admin/categories/:kind/:id", s.updateCategory)
	admin.DELETE("/admin/categories/:kind/:id", s.deleteCategory)
	admin.GET("/admin/client-categories", s.clientCategories)
	admin.GET("/admin/client-categories/edit", s.editableCategories)
	admin.POST("/admin/client-categories/edit", s.replaceCategories)
	admin.POST("/admin/user-categories", s.replaceCategoriesEach)
}

type routeInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

func (s *Server) routes(c echo.Context) error {
	list := []routeInfo{}
	for _, r := range s.echo.Routes() {
		list = append(list, routeInfo{Method: r.Method, Path: r.Path})
	}
	return c.JSON(http.StatusOK, list)
}
