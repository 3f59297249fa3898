package core

import "time"

// Report is the outcome of evaluating a rule set against one context.
type Report struct {
	// ID is the unique identifier of this evaluation.
	ID string `yaml:"id" json:"id"`

	// Subject names what was evaluated, e.g. a ticker symbol.
	Subject string `yaml:"subject,omitempty" json:"subject,omitempty"`

	Time time.Time `yaml:"time" json:"time"`

	// Verdicts contains the result of every rule evaluated, in rule id order.
	Verdicts []RuleVerdict `yaml:"verdicts" json:"verdicts"`
}

// Failed returns the verdicts whose evaluation failed.
func (r *Report) Failed() []RuleVerdict {
	var out []RuleVerdict
	for _, v := range r.Verdicts {
		if v.Error != "" {
			out = append(out, v)
		}
	}
	return out
}

// Verdict returns the verdict of the given rule, if it was evaluated.
func (r *Report) Verdict(ruleID string) (RuleVerdict, bool) {
	for _, v := range r.Verdicts {
		if v.RuleID == ruleID {
			return v, true
		}
	}
	return RuleVerdict{}, false
}

// RuleVerdict captures the value one rule produced, or why it could not produce one.
type RuleVerdict struct {
	RuleID      string       `yaml:"rule_id" json:"rule_id"`
	Family      string       `yaml:"family" json:"family"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Target      SemanticType `yaml:"target" json:"target"`
	Value       *Value       `yaml:"value,omitempty" json:"value,omitempty"`
	Error       string       `yaml:"error,omitempty" json:"error,omitempty"`
}

// RuleTrace is a RuleVerdict plus every node visited while evaluating it.
type RuleTrace struct {
	RuleVerdict `yaml:",inline" json:",inline"`
	Steps       []TraceStep `yaml:"steps" json:"steps"`
}

// TraceStep records the evaluation of a single node.
type TraceStep struct {
	Depth int    `yaml:"depth" json:"depth"`
	Node  string `yaml:"node" json:"node"`
	Kind  string `yaml:"kind" json:"kind"`

	// Detail is a short description of the node, e.g. the variable path of a terminal.
	Detail string `yaml:"detail,omitempty" json:"detail,omitempty"`

	Value *Value `yaml:"value,omitempty" json:"value,omitempty"`

	// Skipped marks the untaken side of a branch. Skipped nodes are never evaluated.
	Skipped bool   `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Error   string `yaml:"error,omitempty" json:"error,omitempty"`
}
