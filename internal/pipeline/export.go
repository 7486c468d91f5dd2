package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"population-pipeline/internal/model"
	"population-pipeline/pkg/utils"
)

// Output prefixes every reported sum.
const Output = "Population sum (2018-2020) using"

// Exporter emits the results of a reconciled run.
type Exporter interface {
	Export(ctx context.Context, report *model.RunReport) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, report *model.RunReport) error

func (f ExporterFunc) Export(ctx context.Context, report *model.RunReport) error {
	return f(ctx, report)
}

// ConsoleExporter prints one labelled line per method, in method order.
type ConsoleExporter struct {
	Out io.Writer
}

func (e ConsoleExporter) Export(_ context.Context, report *model.RunReport) error {
	for _, m := range model.Methods {
		sum, ok := report.Result(m)
		if !ok {
			return fmt.Errorf("missing %s result", m)
		}
		if _, err := fmt.Fprintf(e.Out, "%s %s: %d\n", Output, m.Label(), sum); err != nil {
			return fmt.Errorf("write %s result: %w", m, err)
		}
	}
	return nil
}

// reportFile is the JSON document written per run.
type reportFile struct {
	RunID      string                  `json:"run_id"`
	Results    []model.AggregateResult `json:"results"`
	Consistent bool                    `json:"consistent"`
	StartedAt  time.Time               `json:"started_at"`
}

// FileExporter writes <dir>/<run-id>/report.json.
type FileExporter struct {
	Output *utils.OutputManager
}

func (e FileExporter) Export(_ context.Context, report *model.RunReport) error {
	path, err := e.Output.WriteJSON(report.RunID, "report.json", reportFile{
		RunID:      report.RunID,
		Results:    report.Results,
		Consistent: report.Consistent(),
		StartedAt:  report.StartedAt,
	})
	if err != nil {
		return err
	}
	log.Printf("💾 report written to %s", path)
	return nil
}
