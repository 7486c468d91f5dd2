package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field names used by the population API payload.
const (
	FieldYear       = "ID Year"
	FieldPopulation = "Population"
)

// Annotations carries the provenance identifiers of a source entry
type Annotations struct {
	TableID     string `json:"table_id"`
	DatasetName string `json:"dataset_name"`
}

// SourceEntry is one provenance entry of a dataset document
type SourceEntry struct {
	Name        string      `json:"name"`
	Annotations Annotations `json:"annotations"`
}

// PopulationRecord is a single member of the document's data array.
// Dimensional fields other than year and population are kept untouched.
type PopulationRecord map[string]interface{}

// DatasetDocument is the payload fetched from the population API.
// Raw holds the exact bytes it was parsed from so it can be stored verbatim.
type DatasetDocument struct {
	Source []SourceEntry      `json:"source"`
	Data   []PopulationRecord `json:"data"`
	Raw    json.RawMessage    `json:"-"`
}

// envelope is used to tell a missing key apart from an empty one.
type envelope struct {
	Source json.RawMessage `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// ParseDocument decodes a dataset document, keeping numbers as json.Number
// so integer values survive without float rounding.
func ParseDocument(raw []byte) (*DatasetDocument, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ShapeError("parse document", fmt.Errorf("decode JSON: %w", err))
	}
	if isAbsent(env.Source) {
		return nil, ShapeError("parse document", fmt.Errorf("missing %q", "source"))
	}
	if isAbsent(env.Data) {
		return nil, ShapeError("parse document", fmt.Errorf("missing %q", "data"))
	}

	doc := &DatasetDocument{Raw: append(json.RawMessage(nil), raw...)}
	if err := json.Unmarshal(env.Source, &doc.Source); err != nil {
		return nil, ShapeError("parse document", fmt.Errorf("decode source: %w", err))
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(&doc.Data); err != nil {
		return nil, ShapeError("parse document", fmt.Errorf("decode data: %w", err))
	}
	if doc.Data == nil {
		doc.Data = []PopulationRecord{}
	}
	return doc, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Primary returns the first source entry, which identifies the dataset.
func (d *DatasetDocument) Primary() (SourceEntry, error) {
	if d == nil || len(d.Source) == 0 {
		return SourceEntry{}, ShapeError("primary source", fmt.Errorf("document has no source entries"))
	}
	return d.Source[0], nil
}

// Bytes returns the verbatim payload, re-encoding when the document was
// built in memory rather than parsed.
func (d *DatasetDocument) Bytes() ([]byte, error) {
	if len(d.Raw) > 0 {
		return d.Raw, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}
