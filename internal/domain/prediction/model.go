package prediction

import "time"

// Prediction is one participant's guessed final score for one match.
// Points stays nil until the match is finalized and the evaluator runs.
type Prediction struct {
	ID        string
	PoolID    string
	MatchID   string
	UserID    string
	HomeGoals int
	AwayGoals int
	Points    *int
	CreatedAt time.Time
	UpdatedAt time.Time
}
