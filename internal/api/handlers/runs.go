package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/gin-gonic/gin"

	"energyplan/internal/api/models"
	"energyplan/internal/config"
	"energyplan/internal/run"
	"energyplan/internal/scenario"
)

// RunsHandler exposes completed run directories and the configured
// scenario list.
type RunsHandler struct {
	cfg *config.Config
}

func NewRunsHandler(cfg *config.Config) *RunsHandler {
	return &RunsHandler{cfg: cfg}
}

// List handles GET /api/v1/runs: all run directories with a manifest,
// newest first.
func (h *RunsHandler) List(c *gin.Context) {
	entries, err := os.ReadDir(h.cfg.ResultDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, []*run.Manifest{})
			return
		}
		c.JSON(http.StatusInternalServerError, models.Error("RESULT_DIR_ERROR", err.Error()))
		return
	}

	manifests := []*run.Manifest{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := run.LoadManifest(filepath.Join(h.cfg.ResultDir, e.Name()))
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Created.After(manifests[j].Created)
	})
	c.JSON(http.StatusOK, manifests)
}

// Get handles GET /api/v1/runs/:name.
func (h *RunsHandler) Get(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) {
		c.JSON(http.StatusBadRequest, models.Error("INVALID_RUN", "invalid run name"))
		return
	}
	m, err := run.LoadManifest(filepath.Join(h.cfg.ResultDir, name))
	if err != nil {
		c.JSON(http.StatusNotFound, models.Error("RUN_NOT_FOUND", err.Error()))
		return
	}
	c.JSON(http.StatusOK, m)
}

// Scenarios handles GET /api/v1/scenarios.
func (h *RunsHandler) Scenarios(c *gin.Context) {
	if h.cfg.ScenarioFile == "" {
		c.JSON(http.StatusOK, []scenario.Scenario{scenario.Base()})
		return
	}
	scenarios, err := scenario.Load(h.cfg.ScenarioFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Error("SCENARIO_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, scenarios)
}
