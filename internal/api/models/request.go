package models

import "energyplan/internal/scenario"

// SolveRequest is the request body for running an optimisation.
type SolveRequest struct {
	// Scenario applies input overrides before solving; empty runs the
	// unmodified input.
	Scenario scenario.Scenario `json:"scenario,omitempty"`
	Horizon  HorizonOptions    `json:"horizon,omitempty"`
	Options  SolveOptions      `json:"options,omitempty"`
}

// HorizonOptions overrides the configured timestep selection.
type HorizonOptions struct {
	Offset int     `json:"offset,omitempty"`
	Length int     `json:"length,omitempty"`
	DT     float64 `json:"dt,omitempty"` // hours
}

// SolveOptions contains optional solve parameters.
type SolveOptions struct {
	// Solver overrides the configured backend ("simplex" or "glpk").
	Solver string `json:"solver,omitempty"`
	// IncludeTimeseries adds the hourly balances to the response;
	// default is the summary only.
	IncludeTimeseries bool `json:"include_timeseries,omitempty"`
}
