package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"population-pipeline/internal/model"
)

const tracerName = "population-pipeline/internal/pipeline"

// Repository is the persistence surface the orchestrator depends on.
type Repository interface {
	Save(ctx context.Context, doc *model.DatasetDocument) error
	QueryInlineSum(ctx context.Context) (int64, error)
	QueryViewSum(ctx context.Context) (int64, error)
}

// Pipeline runs fetch -> persist -> aggregate -> emit, one step at a time.
type Pipeline struct {
	fetcher   Fetcher
	repo      Repository
	recorder  RunRecorder
	exporters []Exporter
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

type Option func(*Pipeline)

// WithRecorder stores run history through r.
func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithExporters sets where reconciled results are emitted, in order.
func WithExporters(e ...Exporter) Option {
	return func(p *Pipeline) { p.exporters = append(p.exporters, e...) }
}

// WithTracerProvider overrides the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) { p.tracer = tp.Tracer(tracerName) }
}

// WithClock overrides time.Now and the run id generator.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
		if newID != nil {
			p.newID = newID
		}
	}
}

func New(f Fetcher, r Repository, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		repo:    r,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// aggregation is one of the three strategies bound to the current run.
type aggregation struct {
	method model.Method
	sum    func(ctx context.Context) (int64, error)
}

// ------------------- Pipeline Runner -------------------

// Run executes a single pipeline run. The returned report is always non-nil;
// on failure its state is Failed and err carries the originating error.
func (p *Pipeline) Run(ctx context.Context) (report *model.RunReport, err error) {
	runID := p.newID()
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	log.Printf("🚀 Starting pipeline run: %s", runID)
	run := newRunTracker(ctx, runID, p.recorder, p.now)

	defer func() {
		if err != nil {
			run.fail(ctx, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Printf("❌ Error in run %s: %v", runID, err)
		}
		report = run.finish(ctx)
		span.SetAttributes(attribute.String("run.state", string(report.State)))
	}()

	// --- FETCH ---
	var doc *model.DatasetDocument
	if err := p.step(ctx, "fetch", func(ctx context.Context) (err error) {
		doc, err = p.fetcher.Fetch(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := run.advance(ctx, model.StateFetched); err != nil {
		return nil, err
	}

	// --- PERSIST ---
	if err := p.step(ctx, "persist", func(ctx context.Context) error {
		return p.repo.Save(ctx, doc)
	}); err != nil {
		return nil, err
	}
	if err := run.advance(ctx, model.StatePersisted); err != nil {
		return nil, err
	}

	// --- AGGREGATE ---
	aggregations := []aggregation{
		{model.MethodInMemory, func(context.Context) (int64, error) { return SumInMemory(doc) }},
		{model.MethodInlineQuery, p.repo.QueryInlineSum},
		{model.MethodView, p.repo.QueryViewSum},
	}
	for _, a := range aggregations {
		var sum int64
		if err := p.step(ctx, "aggregate."+string(a.method), func(ctx context.Context) (err error) {
			sum, err = a.sum(ctx)
			return err
		}); err != nil {
			return nil, err
		}
		run.addResult(a.method, sum)
		log.Printf("📊 %s %s: %d", Output, a.method.Label(), sum)
	}
	if err := run.advance(ctx, model.StateReconciled); err != nil {
		return nil, err
	}

	// --- EMIT ---
	if err := p.step(ctx, "emit", func(ctx context.Context) error {
		for _, e := range p.exporters {
			if err := e.Export(ctx, run.report); err != nil {
				return fmt.Errorf("emit results: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if err := run.advance(ctx, model.StateDone); err != nil {
		return nil, err
	}

	log.Printf("🏁 Pipeline run %s completed in %v", runID, p.now().Sub(run.report.StartedAt))
	return nil, nil
}

// step runs fn inside its own span.
func (p *Pipeline) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
