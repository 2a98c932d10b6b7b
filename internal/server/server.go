//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/storage"
)

// Storage is the service facade the handlers depend on; tests substitute
// a generated mock.
type Storage interface {
	CreatePackage(ctx context.Context, lockerID, residentID string, photoURL *string) (*storage.Package, error)
	MarkPickedUp(ctx context.Context, id string) (*storage.Package, error)
	GetPackage(ctx context.Context, id string) (*storage.Package, error)
	ListPackages(ctx context.Context) ([]*storage.Package, error)
	ListLockers(ctx context.Context) ([]*storage.Locker, error)
	CreateResident(ctx context.Context, name, email string, unitNumber *string) (*storage.Resident, error)
	ListResidents(ctx context.Context) ([]*storage.Resident, error)
	ImportResidentsCSV(ctx context.Context, csvText string) *storage.ImportResult
	ImportRecipientsCSV(ctx context.Context, csvText string) *storage.ImportResult
	CreateUser(ctx context.Context, name, email, password, role string) (*storage.User, error)
	ListUsers(ctx context.Context) ([]*storage.User, error)
	DeleteUser(ctx context.Context, id, callerID string) error
	Authenticate(ctx context.Context, email, password string) (*storage.User, error)
	SweepReminders(ctx context.Context) (*storage.SweepResult, error)
}

// ObjectStore uploads a file and returns its public URL. A nil store
// means the upload endpoint reports a configuration error.
type ObjectStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type Config struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	CronSecret string
}

type Server struct {
	storage      Storage
	store        ObjectStore
	cfg          Config
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(stg Storage, store ObjectStore, cfg Config, auditManager *AuditManager, logger *zap.Logger) *Server {
	return &Server{
		storage:      stg,
		store:        store,
		cfg:          cfg,
		logger:       logger,
		AuditManager: auditManager,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("http server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.auditLogMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	// Public pickup flow: the page rendered from the emailed link reads
	// and completes the pickup without a session.
	r.HandleFunc("/packages/{id}", s.handleGetPackage).Methods(http.MethodGet)
	r.HandleFunc("/packages/{id}", s.handleUpdatePackage).Methods(http.MethodPatch)

	r.HandleFunc("/lockers", s.sessionRequired(s.handleListLockers)).Methods(http.MethodGet)
	r.HandleFunc("/packages", s.sessionRequired(s.handleListPackages)).Methods(http.MethodGet)
	r.HandleFunc("/packages", s.sessionRequired(s.handleCreatePackage)).Methods(http.MethodPost)
	r.HandleFunc("/residents", s.sessionRequired(s.handleListResidents)).Methods(http.MethodGet)
	r.HandleFunc("/residents", s.sessionRequired(s.handleCreateResident)).Methods(http.MethodPost)
	r.HandleFunc("/upload", s.sessionRequired(s.handleUpload)).Methods(http.MethodPost)

	r.HandleFunc("/residents/upload", s.adminRequired(s.handleImportResidents)).Methods(http.MethodPost)
	r.HandleFunc("/recipients/upload", s.adminRequired(s.handleImportRecipients)).Methods(http.MethodPost)
	r.HandleFunc("/users", s.adminRequired(s.handleListUsers)).Methods(http.MethodGet)
	r.HandleFunc("/users", s.adminRequired(s.handleCreateUser)).Methods(http.MethodPost)
	r.HandleFunc("/users", s.adminRequired(s.handleDeleteUser)).Methods(http.MethodDelete)

	r.HandleFunc("/cron/reminders", s.cronRequired(s.handleReminders)).Methods(http.MethodGet)

	return r
}
