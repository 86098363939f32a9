package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/compiler"
	"github.com/dukex/campaigner/pkg/eventbus"
	"github.com/dukex/campaigner/pkg/n8n"
	"github.com/dukex/campaigner/pkg/otelhelper"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/dukex/campaigner/pkg/services"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

// Runtime holds the dependencies shared by the campaigner commands.
type Runtime struct {
	Logger      *slog.Logger
	Persistence persistence.Persistence
	Cache       *cache.Cache
	EventBus    eventbus.EventBus
	Tracer      trace.Tracer
	Remote      *n8n.Client
	Compiler    *compiler.Compiler

	closers []func(context.Context) error
}

// NewRuntime opens every backend named by the RuntimeFlags. On error the
// backends opened so far are closed.
func NewRuntime(ctx context.Context, command *cli.Command, serviceName string, logger *slog.Logger) (*Runtime, error) {
	r := &Runtime{Logger: logger}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName, command.Bool("tracing"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	r.Tracer = tracer
	r.closers = append(r.closers, shutdown)

	r.Persistence, err = NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, errors.Join(err, r.Close(ctx))
	}

	r.closers = append(r.closers, r.Persistence.Close)

	r.Cache, err = NewCache(ctx, command.String("redis-url"), logger)
	if err != nil {
		return nil, errors.Join(err, r.Close(ctx))
	}

	r.closers = append(r.closers, func(context.Context) error { return r.Cache.Close() })

	r.EventBus, err = NewEventBus(command.String("event-bus"), Brokers(command.String("kafka-brokers")), serviceName, logger)
	if err != nil {
		return nil, errors.Join(err, r.Close(ctx))
	}

	r.closers = append(r.closers, func(context.Context) error { return r.EventBus.Close() })

	r.Remote = n8n.NewClient(N8nConfig(command), logger, tracer)
	r.Compiler = compiler.New(CompilerConfig(command))

	return r, nil
}

func (r *Runtime) Lifecycle() *services.Lifecycle {
	return services.NewLifecycle(r.Persistence, r.Remote, r.Compiler, r.EventBus, r.Cache, r.Logger, r.Tracer)
}

// Close releases the backends in reverse opening order.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error

	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	r.closers = nil

	return errors.Join(errs...)
}
