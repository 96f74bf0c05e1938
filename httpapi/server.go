package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/pulse/dashboard"
	"github.com/spektr-org/pulse/dataset"
)

// Server serves the current dashboard snapshot over HTTP. The datasets can
// be swapped at any time (e.g. by a file watcher); every request sees one
// complete bundle.
type Server struct {
	current atomic.Pointer[state]
	opts    []dashboard.Option
}

type state struct {
	dash *dashboard.Dashboard
	err  error
}

// NewServer creates a server with no data loaded yet.
func NewServer(opts ...dashboard.Option) *Server {
	s := &Server{opts: opts}
	s.current.Store(&state{err: errNotLoaded})
	return s
}

var errNotLoaded = errors.New("datasets not loaded")

// SetDatasets publishes a new snapshot.
func (s *Server) SetDatasets(data *dataset.Datasets) {
	s.current.Store(&state{dash: dashboard.New(data, s.opts...)})
}

// SetError records a failed load. The previous snapshot, if any, keeps
// being served; without one every data endpoint answers 503.
func (s *Server) SetError(err error) {
	prev := s.current.Load()
	if prev != nil && prev.dash != nil {
		log.Printf("⚠️ pulse: reload failed, serving previous data: %v", err)
		return
	}
	s.current.Store(&state{err: err})
}

// Dashboard returns the current dashboard or the load error.
func (s *Server) Dashboard() (*dashboard.Dashboard, error) {
	st := s.current.Load()
	if st.dash == nil {
		return nil, st.err
	}
	return st.dash, nil
}

// Router builds a gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	SetupRoutes(router, NewHandler(s))
	return router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 pulse: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
