package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyplan/internal/api/models"
	"energyplan/internal/config"
	"energyplan/internal/excel"
	"energyplan/internal/run"
	"energyplan/internal/scenario"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "house.xlsx")
	require.NoError(t, excel.Write(input, excel.Example()))

	cfg := config.Default()
	cfg.Input = input
	cfg.ResultDir = filepath.Join(dir, "result")
	return cfg
}

func do(t *testing.T, cfg *config.Config, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter(cfg).ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, testConfig(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSolve(t *testing.T) {
	w := do(t, testConfig(t), http.MethodPost, "/api/v1/solve", models.SolveRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.SolveResponse](t, w)
	assert.Equal(t, "base", resp.Scenario)
	assert.Equal(t, "simplex", resp.Solver)
	assert.Greater(t, resp.Objective, 0.0)
	assert.NotEmpty(t, resp.ProcessCaps)
	assert.Empty(t, resp.Timeseries, "summary only by default")
}

func TestSolveWithTimeseries(t *testing.T) {
	w := do(t, testConfig(t), http.MethodPost, "/api/v1/solve", models.SolveRequest{
		Options: models.SolveOptions{IncludeTimeseries: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.SolveResponse](t, w)
	assert.NotEmpty(t, resp.Timeseries)
}

func TestSolveInfeasible(t *testing.T) {
	// demand cannot be met with every supply option capped at zero
	zero := 0.0
	w := do(t, testConfig(t), http.MethodPost, "/api/v1/solve", models.SolveRequest{
		Scenario: scenario.Scenario{
			Name: "impossible",
			Processes: []scenario.ProcessOverride{
				{Process: "Photovoltaics", CapUp: &zero},
				{Process: "Purchase", CapUp: &zero},
			},
			Storages: []scenario.StorageOverride{
				{Storage: "Battery", CapUpC: &zero, CapUpP: &zero},
			},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "INFEASIBLE", resp.Error.Code)
}

func TestSolveBadRequests(t *testing.T) {
	cfg := testConfig(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/solve",
			bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		NewRouter(cfg).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Error.Code)
	})

	t.Run("unknown override", func(t *testing.T) {
		w := do(t, cfg, http.MethodPost, "/api/v1/solve", models.SolveRequest{
			Scenario: scenario.Scenario{
				Name:      "bad",
				Processes: []scenario.ProcessOverride{{Process: "Fusion"}},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_SCENARIO", decode[models.ErrorResponse](t, w).Error.Code)
	})

	t.Run("bad horizon", func(t *testing.T) {
		w := do(t, cfg, http.MethodPost, "/api/v1/solve", models.SolveRequest{
			Horizon: models.HorizonOptions{Offset: 500},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decode[models.ErrorResponse](t, w).Error.Code)
	})

	t.Run("unknown solver", func(t *testing.T) {
		w := do(t, cfg, http.MethodPost, "/api/v1/solve", models.SolveRequest{
			Options: models.SolveOptions{Solver: "cplex"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_SOLVER", decode[models.ErrorResponse](t, w).Error.Code)
	})
}

func TestScenariosWithoutFile(t *testing.T) {
	w := do(t, testConfig(t), http.MethodGet, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	scs := decode[[]scenario.Scenario](t, w)
	require.Len(t, scs, 1)
	assert.Equal(t, "base", scs[0].Name)
}

func TestScenariosFromFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScenarioFile = filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(cfg.ScenarioFile, []byte(`
scenarios:
  - name: base
  - name: expensive-grid
    commodities:
      - commodity: Grid
        price: 1.5xBuy
`), 0o644))

	w := do(t, cfg, http.MethodGet, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	scs := decode[[]scenario.Scenario](t, w)
	require.Len(t, scs, 2)
	assert.Equal(t, "expensive-grid", scs[1].Name)
}

func TestRunsEmpty(t *testing.T) {
	w := do(t, testConfig(t), http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRunsListAndGet(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.ResultDir, "house-20260101T0000")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	m := &run.Manifest{Input: "house.xlsx", Solver: "simplex"}
	require.NoError(t, m.Save(filepath.Join(dir, run.ManifestName)))

	w := do(t, cfg, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]run.Manifest](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "house.xlsx", list[0].Input)

	w = do(t, cfg, http.MethodGet, "/api/v1/runs/house-20260101T0000", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, cfg, http.MethodGet, "/api/v1/runs/no-such-run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RUN_NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/solve", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	NewRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
