package core

import "time"

// AuditEntry records a produced report. The evaluation context itself is never stored.
type AuditEntry struct {
	// ID is the report ID
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "rules.evaluate", "rules.reload")
	Action string `json:"action"`

	// Subject that was evaluated, e.g. a ticker
	Subject string `json:"subject,omitempty"`

	Verdicts []RuleVerdict `json:"verdicts,omitempty"`
	Error    string        `json:"error,omitempty"`

	// Metadata contains extra details (e.g. rule count after a reload)
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
