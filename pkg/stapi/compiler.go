package stapi

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stlmpp/stapi/internal/logging"
)

const instrumentationName = "github.com/stlmpp/stapi"

// CompilerOptions configures a Compiler. Zero values get defaults.
type CompilerOptions struct {
	Registry *Registry
	Resolver Resolver
	// GlobalGuards run after the route guards of every route
	GlobalGuards GuardChain
	Correlator   *Correlator
	Logger       *zap.Logger
	Metrics      *Metrics
	Tracer       trace.Tracer
}

// Compiler turns handler metadata into executable routes
type Compiler struct {
	registry     *Registry
	resolver     Resolver
	globalGuards GuardChain
	correlator   *Correlator
	logger       *zap.Logger
	metrics      *Metrics
	tracer       trace.Tracer
}

// NewCompiler creates a compiler
func NewCompiler(opts CompilerOptions) *Compiler {
	c := &Compiler{
		registry:     opts.Registry,
		resolver:     opts.Resolver,
		globalGuards: opts.GlobalGuards,
		correlator:   opts.Correlator,
		logger:       logging.OrNop(opts.Logger),
		metrics:      opts.Metrics,
		tracer:       opts.Tracer,
	}
	if c.registry == nil {
		c.registry = DefaultRegistry
	}
	if c.resolver == nil {
		c.resolver = ConstructResolver{}
	}
	if c.correlator == nil {
		c.correlator = NewCorrelator(nil)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(instrumentationName)
	}
	return c
}

// CompiledRoute is a handler bound to its validation, guard, invocation and
// serialization stages.
type CompiledRoute struct {
	Metadata RouteMetadata

	stages     []Stage
	correlator *Correlator
	logger     *zap.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// Compile builds the route of handler, which is either a handler value or
// the reflect.Type of one resolved through the Resolver.
func (c *Compiler) Compile(ctx context.Context, handler any) (*CompiledRoute, error) {
	t := targetType(handler)
	if t == nil {
		return nil, newRegistrationError("<nil>", ErrInvalidHandler, "handler is nil")
	}
	if err := c.registry.Err(t); err != nil {
		return nil, err
	}
	meta, ok := c.registry.FullMetadata(t)
	if !ok {
		return nil, newRegistrationError(typeName(t), ErrMissingRoute, "annotate it with Route")
	}

	instance := handler
	if ht, isType := handler.(reflect.Type); isType {
		resolved, err := c.resolver.Resolve(ctx, ht)
		if err != nil {
			return nil, newRegistrationError(meta.HandlerName(), ErrInvalidHandler, "failed to resolve handler").WithCause(err)
		}
		instance = resolved
	}

	inv, err := newInvoker(instance, meta)
	if err != nil {
		return nil, err
	}

	routeGuards, err := resolveGuards(ctx, c.resolver, meta.Guards, false)
	if err != nil {
		return nil, newRegistrationError(meta.HandlerName(), ErrInvalidHandler, "failed to resolve guards").WithCause(err)
	}
	guards := append(routeGuards, c.globalGuards...)

	var stages []Stage
	if meta.Params != nil {
		stages = append(stages, paramsStage(meta.Params))
	}
	if meta.Query != nil {
		stages = append(stages, queryStage(meta.Query))
	}
	if meta.Body != nil {
		stages = append(stages, bodyStage(meta.Body))
	}
	if meta.Headers != nil {
		stages = append(stages, headersStage(meta.Headers))
	}
	if len(guards) > 0 {
		stages = append(stages, guardsStage(guards))
	}
	stages = append(stages, inv.stage, responseStage(meta.Response), serializeStage)

	return &CompiledRoute{
		Metadata:   meta,
		stages:     stages,
		correlator: c.correlator,
		logger:     c.logger,
		metrics:    c.metrics,
		tracer:     c.tracer,
	}, nil
}

// Execute runs the pipeline for ec and returns the reply to send
func (r *CompiledRoute) Execute(ec *ExecutionContext) Reply {
	return runStages(ec, r.stages)
}

// Handler adapts the route to the transport: it derives the correlation
// ids, runs the pipeline inside a span, stamps the correlation headers and
// writes the reply.
func (r *CompiledRoute) Handler() HandlerFunc {
	method := r.Metadata.Route.Method
	route := r.Metadata.Route.Path.Raw()
	spanName := method + " " + route

	return func(rc RequestContext) error {
		start := time.Now()
		ids := r.correlator.Derive(rc.Request())

		ctx, span := r.tracer.Start(rc.Context(), spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("http.route", route),
				attribute.String("stapi.correlation_id", ids.CorrelationID),
			),
		)
		defer span.End()

		ec := NewExecutionContext(ctx, ids, rc)
		reply := r.Execute(ec)

		span.SetAttributes(attribute.Int("http.response.status_code", reply.Status))
		errorCode := ""
		if exc := ec.Exception(); exc != nil {
			errorCode = exc.ErrorCode()
			span.SetAttributes(attribute.String("stapi.error_code", errorCode))
			if exc.Status() >= 500 {
				span.SetStatus(codes.Error, exc.Message())
				if exc.Cause() != nil {
					span.RecordError(exc.Cause())
				}
			}
			logException(r.logger, exc, ids, method, route)
		}
		r.metrics.Observe(method, route, reply.Status, errorCode, time.Since(start))

		r.correlator.WriteHeaders(rc.Response(), ids)
		return rc.Response().Blob(reply.Status, reply.ContentType, reply.Body)
	}
}

func correlationFields(ids CorrelationIDs) []zap.Field {
	return []zap.Field{
		zap.String("correlation_id", ids.CorrelationID),
		zap.String("trace_id", ids.TraceID),
		zap.String("execution_id", ids.ExecutionID),
	}
}

// logException logs client errors at debug level and server errors, with
// their cause, at error level.
func logException(logger *zap.Logger, exc *Exception, ids CorrelationIDs, method, route string) {
	fields := append(correlationFields(ids),
		zap.String("method", method),
		zap.String("route", route),
		zap.String("error_code", exc.ErrorCode()),
		zap.Int("status", exc.Status()),
		zap.String("message", exc.Message()),
	)
	if exc.Status() >= 500 {
		if exc.Cause() != nil {
			fields = append(fields, zap.Error(exc.Cause()))
		}
		logger.Error("request failed", fields...)
		return
	}
	logger.Debug("request rejected", fields...)
}

// String describes the route for diagnostics
func (r *CompiledRoute) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Metadata.Route.Method, r.Metadata.Route.Path, r.Metadata.HandlerName())
}
