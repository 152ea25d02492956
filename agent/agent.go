// Package agent is the top-level process wrapper main.go constructs: it
// owns the container and the HTTP server, starting both and shutting
// both down in the right order, grounded on the reference
// implementation's agent package with the gRPC worker-connection server
// dropped (this engine's node types are declarative, not binary
// task-handler plugins connecting over RPC).
package agent

import (
	"sync"

	"go.uber.org/zap"

	"github.com/flowcraft/engine/config"
	"github.com/flowcraft/engine/container"
	"github.com/flowcraft/engine/httpapi"
	"github.com/flowcraft/engine/logger"
)

type Agent struct {
	Config       config.Config
	container    *container.Container
	httpServer   *httpapi.Server
	shutdown     bool
	shutdownLock sync.Mutex
}

func New(conf config.Config) (*Agent, error) {
	c, err := container.New(conf)
	if err != nil {
		return nil, err
	}
	a := &Agent{
		Config:     conf,
		container:  c,
		httpServer: httpapi.NewServer(conf.HttpPort, c),
	}
	return a, nil
}

func (a *Agent) Start() error {
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server exited", zap.Error(err))
			_ = a.Shutdown()
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	logger.Info("shutting down agent")
	if err := a.httpServer.Stop(); err != nil {
		logger.Error("error stopping http server", zap.Error(err))
	}
	a.container.Shutdown()
	return nil
}
