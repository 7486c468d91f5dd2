package pipeline

import (
	"fmt"

	"population-pipeline/internal/model"
	"population-pipeline/pkg/utils"
)

// SumInMemory sums the population of records in the target years.
//
// Records without a year (absent or null) are skipped. A year that is not an
// integer fails the whole sum, as does a target-year record without an
// integer population, so the in-memory path rejects the same data the SQL
// integer casts reject.
func SumInMemory(doc *model.DatasetDocument) (int64, error) {
	if doc == nil {
		return 0, model.ShapeError("in-memory sum", fmt.Errorf("document is nil"))
	}

	var sum int64
	for i, rec := range doc.Data {
		year, ok, err := recordYear(rec)
		if err != nil {
			return 0, model.ShapeError("in-memory sum", fmt.Errorf("record %d: %w", i, err))
		}
		if !ok || !model.IsTargetYear(year) {
			continue
		}

		pop, err := recordPopulation(rec)
		if err != nil {
			return 0, model.ShapeError("in-memory sum", fmt.Errorf("record %d (year %d): %w", i, year, err))
		}
		sum += pop
	}
	return sum, nil
}

func recordYear(rec model.PopulationRecord) (int64, bool, error) {
	raw, ok := rec[model.FieldYear]
	if !ok || raw == nil {
		return 0, false, nil
	}
	year, err := utils.IntValue(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%q: %w", model.FieldYear, err)
	}
	return year, true, nil
}

func recordPopulation(rec model.PopulationRecord) (int64, error) {
	raw, ok := rec[model.FieldPopulation]
	if !ok {
		return 0, fmt.Errorf("%q is missing", model.FieldPopulation)
	}
	pop, err := utils.IntValue(raw)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", model.FieldPopulation, err)
	}
	return pop, nil
}
