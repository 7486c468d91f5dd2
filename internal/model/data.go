package model

import "time"

// Method identifies one of the three aggregation strategies
type Method string

const (
	MethodInMemory    Method = "in_memory"
	MethodInlineQuery Method = "inline_query"
	MethodView        Method = "view"
)

// Methods lists the strategies in the order they run and are reported.
var Methods = []Method{MethodInMemory, MethodInlineQuery, MethodView}

// Label is the human readable name used in process output.
func (m Method) Label() string {
	switch m {
	case MethodInMemory:
		return "in-memory"
	case MethodInlineQuery:
		return "inline SELECT"
	case MethodView:
		return "VIEW"
	default:
		return string(m)
	}
}

// TargetYears are the years whose population is summed by every method.
var TargetYears = []int64{2018, 2019, 2020}

// IsTargetYear reports whether year takes part in the aggregate sum.
func IsTargetYear(year int64) bool {
	for _, y := range TargetYears {
		if y == year {
			return true
		}
	}
	return false
}

// AggregateResult represents the sum produced by one method
type AggregateResult struct {
	Method Method `json:"method"`
	Sum    int64  `json:"sum"`
}

// PersistedDocument represents a stored row of api_data
type PersistedDocument struct {
	ID        string    `json:"id"`
	APIName   string    `json:"api_name"`
	DocID     string    `json:"doc_id"`
	DocName   string    `json:"doc_name"`
	DocRecord []byte    `json:"-"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// Document parses the stored doc_record back into a dataset document.
func (p PersistedDocument) Document() (*DatasetDocument, error) {
	return ParseDocument(p.DocRecord)
}
