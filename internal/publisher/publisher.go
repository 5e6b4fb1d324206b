package publisher

import (
	"fmt"
	"sync"
	"time"

	"mediapub/internal/core/ports"

	"go.uber.org/zap"
)

// Publisher owns the set of configured applications. Each application gets
// its own registry, queues, and worker goroutine; there is no shared mutable
// state between them.
type Publisher struct {
	factory ports.StreamFactory
	logger  *zap.Logger
	metrics Metrics

	mu   sync.RWMutex
	apps map[string]*Application
}

func New(factory ports.StreamFactory, logger *zap.Logger, metrics Metrics) *Publisher {
	return &Publisher{
		factory: factory,
		logger:  logger,
		metrics: metrics,
		apps:    make(map[string]*Application),
	}
}

// AddApplication configures a new application. Fails if the name is taken.
func (p *Publisher) AddApplication(name string, workerCount int, statsInterval time.Duration) (*Application, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.apps[name]; exists {
		return nil, fmt.Errorf("application already configured: %s", name)
	}

	app := NewApplication(name, workerCount, statsInterval, p.factory, p.logger, p.metrics)
	p.apps[name] = app
	return app, nil
}

func (p *Publisher) GetApplication(name string) (*Application, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	app, ok := p.apps[name]
	return app, ok
}

func (p *Publisher) Applications() []*Application {
	p.mu.RLock()
	defer p.mu.RUnlock()

	apps := make([]*Application, 0, len(p.apps))
	for _, app := range p.apps {
		apps = append(apps, app)
	}
	return apps
}

// StartAll starts every configured application. On the first failure the
// already-started applications are stopped again; a half-started publisher
// is not left behind.
func (p *Publisher) StartAll() error {
	started := make([]*Application, 0)
	for _, app := range p.Applications() {
		if err := app.Start(); err != nil {
			for _, s := range started {
				_ = s.Stop()
			}
			return fmt.Errorf("start application %q: %w", app.Name(), err)
		}
		started = append(started, app)
	}
	return nil
}

// StopAll stops every application, joining each worker goroutine.
func (p *Publisher) StopAll() {
	for _, app := range p.Applications() {
		_ = app.Stop()
	}
}
