package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAccept        Status = "ACCEPT"
	StatusReject        Status = "REJECT"
	StatusConditional   Status = "CONDITIONAL"
	StatusReinterpreted Status = "REINTERPRETED"
	StatusSuspend       Status = "SUSPEND"
)

func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusAccept, StatusReject, StatusConditional, StatusReinterpreted, StatusSuspend:
		return true
	}
	return false
}

// Verdict is the externally visible outcome of one adjudication call.
// It is constructed once by the tribunal synthesizer and never mutated.
type Verdict struct {
	ID                  uuid.UUID           `json:"id"`
	ClaimID             uuid.UUID           `json:"claim_id"`
	Claim               string              `json:"claim"`
	Status              Status              `json:"status"`
	Rule                string              `json:"rule"`
	AggregateConfidence float64             `json:"aggregate_confidence"`
	Judgments           map[string]Judgment `json:"per_module_judgments"`
	Absent              []string            `json:"absent,omitempty"`
	Failures            map[string]string   `json:"failures,omitempty"`
	Reinterpretations   []string            `json:"reinterpretations,omitempty"`
	Advisory            Advisory            `json:"advisory"`
	CreatedAt           time.Time           `json:"created_at"`
}
