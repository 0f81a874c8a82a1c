package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
	StatusFinalized = "FINALIZED"
)

// Match is one fixture inside a pool. HomeScore/AwayScore are both set iff
// the match is finalized; both nil otherwise.
type Match struct {
	ID        string
	PoolID    string
	Round     int
	HomeTeam  string
	AwayTeam  string
	KickoffAt time.Time
	Status    string
	HomeScore *int
	AwayScore *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Finalized reports whether the match carries a complete final score.
func (m Match) Finalized() bool {
	return NormalizeStatus(m.Status) == StatusFinalized && m.HomeScore != nil && m.AwayScore != nil
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsValidStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusScheduled, StatusPostponed, StatusCancelled, StatusFinalized:
		return true
	default:
		return false
	}
}
