package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"population-pipeline/internal/config"
	"population-pipeline/internal/model"
)

// maxBodyBytes bounds the payload read from the API.
const maxBodyBytes = 64 << 20

// Fetcher retrieves the dataset document.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.DatasetDocument, error)
}

// HTTPFetcher GETs the configured endpoint and parses the JSON body.
type HTTPFetcher struct {
	client   *http.Client
	endpoint string
}

// NewHTTPFetcher builds a fetcher for cfg. A nil client gets a default one
// honouring cfg.Timeout (zero means no timeout).
func NewHTTPFetcher(cfg config.Source, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPFetcher{client: client, endpoint: cfg.Endpoint()}
}

// Endpoint is the full URL including query parameters.
func (f *HTTPFetcher) Endpoint() string { return f.endpoint }

// ------------------- JSON / API Ingestion -------------------
func (f *HTTPFetcher) Fetch(ctx context.Context) (*model.DatasetDocument, error) {
	log.Printf("🌐 GET JSON: %s", f.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, model.NetworkError("fetch", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, model.NetworkError("fetch", fmt.Errorf("failed to GET JSON: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, model.NetworkError("fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, model.NetworkError("fetch", fmt.Errorf("failed to read JSON body: %w", err))
	}

	doc, err := model.ParseDocument(body)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	log.Printf("🌐 JSON ingestion done: %d records read from %s", len(doc.Data), f.endpoint)
	return doc, nil
}
