package domain

import "time"

// DelayRule is one mined association rule whose consequent is a non-trivial
// delay category, rendered as a human-readable sentence.
type DelayRule struct {
	Antecedents []string `json:"antecedents"`
	Consequent  string   `json:"consequent"`
	Support     float64  `json:"support"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
	Text        string   `json:"rule"`
}

// RunStatus enumerates the lifecycle states of a delay-rule analysis run.
type RunStatus string

const (
	RunNotStarted RunStatus = "not_started"
	RunRunning    RunStatus = "running"
	RunSucceeded  RunStatus = "succeeded"
	RunFailed     RunStatus = "failed"
)

// AnalysisRun describes the last (or current) mining job execution.
type AnalysisRun struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	RuleCount   int        `json:"rule_count"`
	Error       string     `json:"error,omitempty"`
}
