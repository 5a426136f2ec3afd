package rpc

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ConsenSysQuorum/eea-gateway/config"
	"github.com/ConsenSysQuorum/eea-gateway/eea"
	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/gorilla/rpc/v2"
	"github.com/rs/cors"
)

const (
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
	IdleTimeout  = 60 * time.Second
)

type RPCService struct {
	api        *eea.API
	metrics    *metrics.Metrics
	config     *config.Server
	httpServer *http.Server
	errCh      chan error
	shutdownWg sync.WaitGroup
}

func NewRPCService(api *eea.API, m *metrics.Metrics, config *config.Server, backendErrorChan chan error) *RPCService {
	return &RPCService{
		api:     api,
		metrics: m,
		config:  config,
		errCh:   backendErrorChan,
	}
}

// Handler builds the router: JSON-RPC over HTTP POST on "/", JSON-RPC over
// WebSocket on "/ws" and Prometheus metrics on "/metrics".
func (r *RPCService) Handler() (http.Handler, error) {
	jsonrpcServer := rpc.NewServer()
	jsonrpcServer.RegisterCodec(newCodec(), "application/json")
	if err := jsonrpcServer.RegisterService(r.api, "eea"); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	if r.metrics != nil {
		router.Use(metricsMiddleware(r.metrics))
		router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	router.Group(func(api chi.Router) {
		api.Use(vhostMiddleware(r.config.RPCVHosts))
		api.Use(cors.New(cors.Options{
			AllowedOrigins: r.config.RPCCorsList,
			AllowedMethods: []string{http.MethodPost, http.MethodGet},
			AllowedHeaders: []string{"*"},
		}).Handler)
		if r.config.RequestsPerMinute > 0 {
			api.Use(httprate.LimitByIP(r.config.RequestsPerMinute, time.Minute))
		}
		if auth := r.config.Auth; auth != nil {
			tokenAuth := jwtauth.New(auth.Algorithm, []byte(auth.Secret), nil)
			api.Use(jwtauth.Verifier(tokenAuth))
			api.Use(jwtauth.Authenticator)
		}
		api.Method(http.MethodPost, "/", jsonrpcServer)
		api.Method(http.MethodGet, "/ws", newWSHandler(jsonrpcServer, r.config.RPCCorsList))
	})
	return router, nil
}

func (r *RPCService) Start() error {
	log.Info("Starting EEA JSON-RPC server")

	handler, err := r.Handler()
	if err != nil {
		return err
	}
	r.httpServer = &http.Server{
		Addr:    r.config.ListenAddr(),
		Handler: handler,

		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	tlsCfg := r.config.TLSConfig
	if tlsCfg != nil {
		if tlsCfg.TlsCfg == nil {
			if err := tlsCfg.SetTLSConfig(); err != nil {
				return err
			}
		}
		r.httpServer.TLSConfig = tlsCfg.TlsCfg
	}

	r.shutdownWg.Add(1)
	go func() {
		defer r.shutdownWg.Done()
		log.Info("Started EEA JSON-RPC server", "Addr", r.httpServer.Addr)
		var err error
		if tlsCfg != nil {
			err = r.httpServer.ListenAndServeTLS("", "")
		} else {
			err = r.httpServer.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			log.Error("Unable to start EEA JSON-RPC server", "err", err)
			r.errCh <- err
		}
	}()

	log.Info("JSON-RPC HTTP endpoint opened", "url", r.url())
	return nil
}

func (r *RPCService) Stop() {
	log.Info("Stopping EEA JSON-RPC server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(ctx); err != nil {
			log.Error("EEA JSON-RPC server shutdown failed", "err", err)
		}
		r.shutdownWg.Wait()

		log.Info("RPC HTTP endpoint closed", "url", r.url())
	}

	log.Info("RPC service stopped")
}

func (r *RPCService) url() string {
	scheme := "http"
	if r.config.TLSConfig != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.httpServer.Addr)
}
