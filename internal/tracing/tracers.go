// Package tracing provides the Jaeger tracers of the engine, configured from
// the environment.
package tracing

import (
	"io"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"golang.org/x/xerrors"
)

const (
	// PhaseTag is the span tag holding the phase of a session.
	PhaseTag = "phase"

	// DeployTag is the span tag holding the deploy hash of a session.
	DeployTag = "deploy"

	// SessionTag is the span tag holding the identifier of a session.
	SessionTag = "session"
)

type tracerCatalog struct {
	sync.Mutex
	tracerByService map[string]closableTracer
}

type closableTracer struct {
	tracer opentracing.Tracer
	closer io.Closer
}

var catalog = tracerCatalog{
	tracerByService: make(map[string]closableTracer),
}

// GetTracer returns the tracer of the service. The tracers are cached, so an
// existing one is returned when it has been created before.
func GetTracer(service string) (opentracing.Tracer, error) {
	catalog.Lock()
	defer catalog.Unlock()

	tc, ok := catalog.tracerByService[service]
	if ok {
		return tc.tracer, nil
	}

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, xerrors.Errorf("failed to parse jaeger configuration: %v", err)
	}

	cfg.ServiceName = service

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, xerrors.Errorf("failed to create tracer: %v", err)
	}

	catalog.tracerByService[service] = closableTracer{
		tracer: tracer,
		closer: closer,
	}

	return tracer, nil
}

// CloseAll closes the tracers and empties the cache.
func CloseAll() error {
	catalog.Lock()
	defer catalog.Unlock()

	for service, tc := range catalog.tracerByService {
		err := tc.closer.Close()
		if err != nil {
			return xerrors.Errorf("failed to close tracer of '%s': %v", service, err)
		}

		delete(catalog.tracerByService, service)
	}

	return nil
}
