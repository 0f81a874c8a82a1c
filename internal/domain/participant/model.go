package participant

import (
	"strings"
	"time"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusBlocked  = "BLOCKED"
	StatusDeclined = "DECLINED"
)

// Participant joins a user to a pool. Points, CorrectCount, TotalPredictions
// and Position are derived: only the recompute pipeline writes them.
type Participant struct {
	ID               string
	PoolID           string
	UserID           string
	Status           string
	Points           int
	CorrectCount     int
	TotalPredictions int
	Position         int
	JoinedAt         time.Time
	UpdatedAt        time.Time
}

// Aggregate is the per-participant result of the aggregation phase.
type Aggregate struct {
	Points           int
	CorrectCount     int
	TotalPredictions int
}

// Rank assigns one leaderboard position to one participant.
type Rank struct {
	ParticipantID string
	UserID        string
	Position      int
	Points        int
	CorrectCount  int
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusPending
	}
	return status
}

func IsValidStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusPending, StatusApproved, StatusBlocked, StatusDeclined:
		return true
	default:
		return false
	}
}
