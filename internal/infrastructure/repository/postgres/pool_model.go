package postgres

import "time"

type poolTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	Name           string     `db:"name"`
	Championship   string     `db:"championship"`
	OwnerID        string     `db:"owner_id"`
	ExactScore     int        `db:"exact_score_points"`
	CorrectOutcome int        `db:"correct_outcome_points"`
	ExactGoalBonus int        `db:"exact_goal_bonus_points"`
	BonusEnabled   bool       `db:"bonus_enabled"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type poolInsertModel struct {
	PublicID       string `db:"public_id"`
	Name           string `db:"name"`
	Championship   string `db:"championship"`
	OwnerID        string `db:"owner_id"`
	ExactScore     int    `db:"exact_score_points"`
	CorrectOutcome int    `db:"correct_outcome_points"`
	ExactGoalBonus int    `db:"exact_goal_bonus_points"`
	BonusEnabled   bool   `db:"bonus_enabled"`
}
