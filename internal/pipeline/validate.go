package pipeline

import (
	"fmt"

	"population-pipeline/internal/model"
)

// ValidateDocument checks the structure the rest of the pipeline relies on:
// a primary source entry to derive the stored identifiers from, and a data
// array. Individual records are checked by the aggregators that read them.
func ValidateDocument(doc *model.DatasetDocument) error {
	if doc == nil {
		return model.ShapeError("validate document", fmt.Errorf("document is nil"))
	}
	if _, err := doc.Primary(); err != nil {
		return err
	}
	if doc.Data == nil {
		return model.ShapeError("validate document", fmt.Errorf("missing %q", "data"))
	}
	return nil
}
