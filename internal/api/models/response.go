package models

import (
	"energyplan/internal/result"
)

// SolveResponse carries the outcome of one optimisation.
type SolveResponse struct {
	Scenario  string             `json:"scenario"`
	Solver    string             `json:"solver"`
	Objective float64            `json:"objective"` // EUR/a
	Costs     map[string]float64 `json:"costs"`     // EUR/a by cost type

	ProcessCaps      []result.ProcessCap      `json:"process_caps"`
	TransmissionCaps []result.TransmissionCap `json:"transmission_caps,omitempty"`
	StorageCaps      []result.StorageCap      `json:"storage_caps,omitempty"`

	Timeseries []result.Timeseries `json:"timeseries,omitempty"`
}

// FromResult flattens a result into the response shape.
func FromResult(r *result.Result, includeTimeseries bool) SolveResponse {
	costs := make(map[string]float64, len(r.Costs))
	for ct, v := range r.Costs {
		costs[string(ct)] = v
	}
	resp := SolveResponse{
		Scenario:         r.Scenario,
		Solver:           r.Solver,
		Objective:        r.Objective,
		Costs:            costs,
		ProcessCaps:      r.ProcessCaps,
		TransmissionCaps: r.TransmissionCaps,
		StorageCaps:      r.StorageCaps,
	}
	if includeTimeseries {
		resp.Timeseries = r.Timeseries
	}
	return resp
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error builds an ErrorResponse.
func Error(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}
