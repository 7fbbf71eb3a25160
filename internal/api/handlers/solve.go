package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"energyplan/internal/api/models"
	"energyplan/internal/config"
	"energyplan/internal/excel"
	"energyplan/internal/lp"
	"energyplan/internal/plan"
	"energyplan/internal/result"
	"energyplan/internal/run"
)

// SolveHandler runs optimisations against the configured input workbook.
type SolveHandler struct {
	cfg *config.Config
}

func NewSolveHandler(cfg *config.Config) *SolveHandler {
	return &SolveHandler{cfg: cfg}
}

// Solve handles POST /api/v1/solve.
func (h *SolveHandler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Error("INVALID_REQUEST", err.Error()))
		return
	}
	if req.Scenario.Name == "" {
		req.Scenario.Name = "base"
	}

	in, err := excel.Read(h.cfg.Input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Error("INPUT_ERROR", err.Error()))
		return
	}
	applied, err := req.Scenario.Apply(in)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Error("INVALID_SCENARIO", err.Error()))
		return
	}

	opts := plan.Options{
		DT:     h.cfg.Timesteps.DT,
		Offset: h.cfg.Timesteps.Offset,
		Length: h.cfg.Timesteps.Length,
	}
	if req.Horizon.DT > 0 {
		opts.DT = req.Horizon.DT
	}
	if req.Horizon.Offset > 0 {
		opts.Offset = req.Horizon.Offset
	}
	if req.Horizon.Length > 0 {
		opts.Length = req.Horizon.Length
	}

	p, err := plan.Build(applied, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Error("INVALID_INPUT", err.Error()))
		return
	}

	solverCfg := h.cfg.Solver
	if req.Options.Solver != "" {
		solverCfg = config.SolverConfig{Name: req.Options.Solver, Path: h.cfg.Solver.Path}
	}
	solver, err := run.NewSolver(solverCfg, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Error("INVALID_SOLVER", err.Error()))
		return
	}

	sol, err := solver.Solve(c.Request.Context(), p.Prob)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		c.JSON(http.StatusUnprocessableEntity, models.Error("INFEASIBLE",
			"no solution satisfies all constraints"))
		return
	case errors.Is(err, lp.ErrUnbounded):
		c.JSON(http.StatusUnprocessableEntity, models.Error("UNBOUNDED",
			"the objective can decrease without limit"))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.Error("SOLVER_ERROR", err.Error()))
		return
	}

	res := result.Extract(p, sol)
	res.Scenario = req.Scenario.Name
	res.Solver = solver.Name()
	c.JSON(http.StatusOK, models.FromResult(res, req.Options.IncludeTimeseries))
}
