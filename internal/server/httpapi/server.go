// Package httpapi exposes the JSON-over-HTTP surface of the server: the
// credential lifecycle, owner-scoped item storage, and export.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/josegonzalo071-svg/house-backend/internal/logging"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
	"github.com/josegonzalo071-svg/house-backend/internal/server/services"
)

type authSvc interface {
	Register(ctx context.Context, username, email, password string) (*services.Identity, error)
	Login(ctx context.Context, username, password string) (*services.Identity, error)
	RequestReset(ctx context.Context, usernameOrEmail string) error
	ApplyReset(ctx context.Context, username, plaintextToken, newPassword string) error
}

type itemSvc interface {
	Store(ctx context.Context, owner, name, mime string, data []byte) (*models.Item, error)
	List(ctx context.Context, owner string) ([]*models.Item, error)
	Get(ctx context.Context, owner, name string) (*models.Item, error)
	Delete(ctx context.Context, owner, name string) error
}

type exportSvc interface {
	Export(ctx context.Context, owner string) (*services.ExportResult, error)
}

// HTTPServer routes requests to the services and maps service errors to
// HTTP status codes.
type HTTPServer struct {
	address string
	auth    authSvc
	items   itemSvc
	export  exportSvc
	logger  logging.Logger
}

// NewHTTPServer constructs the HTTP surface over the given services.
func NewHTTPServer(a string, l logging.Logger, auth *services.AuthService, items *services.ItemService, export *services.ExportService) *HTTPServer {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		auth:    auth,
		items:   items,
		export:  export,
	}
}

// Router builds the gin engine with all routes attached.
func (s *HTTPServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", s.Ping)

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
		auth.POST("/forgot", s.RequestReset)
		auth.POST("/reset", s.ApplyReset)
	}

	r.POST("/items", s.StoreItem)
	r.GET("/items", s.ListItems)
	r.GET("/items/:name", s.GetItem)
	r.DELETE("/items/:name", s.DeleteItem)

	r.GET("/export", s.Export)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
