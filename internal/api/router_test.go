package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	_ "population-pipeline/docs"
	"population-pipeline/internal/api/handler"
	"population-pipeline/internal/model"
	"population-pipeline/pkg/router"
)

type stubRunner struct{}

func (stubRunner) Run(context.Context) (*model.RunReport, error) {
	return &model.RunReport{RunID: "r1", State: model.StateDone}, nil
}

type stubStore struct{}

func (stubStore) ListRuns(context.Context) ([]model.RunRecord, error) {
	return []model.RunRecord{{ID: "r1", State: model.StateDone}}, nil
}
func (stubStore) GetRun(_ context.Context, id string) (model.RunRecord, error) {
	return model.RunRecord{ID: id, State: model.StateDone}, nil
}
func (stubStore) QueryInlineSum(context.Context) (int64, error) { return 300, nil }
func (stubStore) QueryViewSum(context.Context) (int64, error)   { return 300, nil }
func (stubStore) Documents(context.Context) ([]model.PersistedDocument, error) {
	return nil, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := router.New()
	RegisterRoutes(r, handler.NewRunHandler(stubRunner{}, stubStore{}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutesDispatch(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/runs/r1")
	require.NoError(t, err)
	var run model.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	resp.Body.Close()
	require.Equal(t, "r1", run.ID)

	resp, err = http.Get(srv.URL + "/api/v1/sums")
	require.NoError(t, err)
	var sums model.SumsView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sums))
	resp.Body.Close()
	require.True(t, sums.Consistent)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/runs", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSwaggerDocument(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, paths, "/runs")
	require.Contains(t, paths, "/sums")
}
