// Package httpapi is the REST surface (component J): a thin gorilla/mux
// handler layer over the container's services, JSON in/out, zap-logged
// per request - grounded on the reference implementation's rest package.
// Authentication is out of scope (per the specification's Non-goals); the
// owning user is taken verbatim from the X-Owner-Id header, standing in
// for whatever auth middleware a production deployment would front this
// with.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/flowcraft/engine/container"
	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/model"
)

type Server struct {
	http.Server
	Port      int
	container *container.Container
}

func NewServer(httpPort int, c *container.Container) *Server {
	s := &Server{
		Server:    http.Server{Addr: fmt.Sprintf(":%d", httpPort)},
		container: c,
		Port:      httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/workflows", s.handleCreateWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/workflows/{id}", s.handleGetWorkflow).Methods(http.MethodGet)
	router.HandleFunc("/workflows/{id}", s.handleSaveWorkflow).Methods(http.MethodPut)
	router.HandleFunc("/workflows/{id}", s.handleDeleteWorkflow).Methods(http.MethodDelete)
	router.HandleFunc("/workflows/{id}/execute", s.handleExecute).Methods(http.MethodPost)
	router.HandleFunc("/workflows/{id}/events/{event}", s.handleEvent).Methods(http.MethodPost)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s
}

func (s *Server) Start() error {
	logger.Info("starting http server", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.Method+" "+r.RequestURI, zap.String("remote", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}

func ownerOf(r *http.Request) string {
	return r.Header.Get("X-Owner-Id")
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch err.(type) {
	case model.NotFoundError:
		code = http.StatusNotFound
	case model.NotAuthorizedError:
		code = http.StatusForbidden
	case model.ConfigError, model.CycleError:
		code = http.StatusBadRequest
	}
	respondWithJSON(w, code, map[string]string{"error": err.Error()})
}
