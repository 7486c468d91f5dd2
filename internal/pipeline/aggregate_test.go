package pipeline

import (
	"errors"
	"testing"

	"population-pipeline/internal/model"
)

func mustParse(t *testing.T, raw string) *model.DatasetDocument {
	t.Helper()
	doc, err := model.ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestSumInMemoryScenario(t *testing.T) {
	doc := mustParse(t, `{"source":[{"name":"n"}],"data":[{"ID Year":2018,"Population":100},{"ID Year":2019,"Population":200},{"ID Year":2021,"Population":999}]}`)

	sum, err := SumInMemory(doc)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 300 {
		t.Fatalf("expected 300, got %d", sum)
	}
}

func TestSumInMemoryEmptyData(t *testing.T) {
	doc := mustParse(t, `{"source":[{"name":"n"}],"data":[]}`)

	sum, err := SumInMemory(doc)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 0 {
		t.Fatalf("expected 0, got %d", sum)
	}
}

func TestSumInMemoryFilter(t *testing.T) {
	doc := mustParse(t, `{"source":[{"name":"n"}],"data":[
		{"ID Year":2017,"Population":1},
		{"ID Year":2018,"Population":10},
		{"ID Year":"2019","Population":"20"},
		{"ID Year":2020,"Population":30},
		{"ID Year":2021,"Population":4},
		{"Population":5},
		{"ID Year":null,"Population":6},
		{"ID Year":2013,"Population":"n/a"}
	]}`)

	sum, err := SumInMemory(doc)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 60 {
		t.Fatalf("expected 60, got %d", sum)
	}
}

func TestSumInMemoryLargeValuesStayExact(t *testing.T) {
	doc := mustParse(t, `{"source":[{"name":"n"}],"data":[{"ID Year":2018,"Population":327167439},{"ID Year":2019,"Population":328239523},{"ID Year":2020,"Population":326569308}]}`)

	sum, err := SumInMemory(doc)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 981976270 {
		t.Fatalf("expected 981976270, got %d", sum)
	}
}

func TestSumInMemoryRejectsMalformedRecords(t *testing.T) {
	cases := map[string]string{
		"year not a number":      `[{"ID Year":"not-a-number","Population":50}]`,
		"fractional year":        `[{"ID Year":2018.5,"Population":50}]`,
		"population missing":     `[{"ID Year":2018}]`,
		"population not integer": `[{"ID Year":2019,"Population":"lots"}]`,
		"population null":        `[{"ID Year":2020,"Population":null}]`,
	}
	for name, data := range cases {
		doc := mustParse(t, `{"source":[{"name":"n"}],"data":`+data+`}`)
		_, err := SumInMemory(doc)
		if !errors.Is(err, model.ErrShape) {
			t.Fatalf("%s: expected shape error, got %v", name, err)
		}
	}
}

func TestSumInMemoryNilDocument(t *testing.T) {
	if _, err := SumInMemory(nil); !errors.Is(err, model.ErrShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
}
