package postgres

import "time"

type participantTableModel struct {
	ID               int64      `db:"id"`
	PublicID         string     `db:"public_id"`
	PoolID           string     `db:"pool_public_id"`
	UserID           string     `db:"user_id"`
	Status           string     `db:"status"`
	Points           int        `db:"points"`
	CorrectCount     int        `db:"correct_count"`
	TotalPredictions int        `db:"total_predictions"`
	Position         int        `db:"position"`
	JoinedAt         time.Time  `db:"joined_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

type participantInsertModel struct {
	PublicID string    `db:"public_id"`
	PoolID   string    `db:"pool_public_id"`
	UserID   string    `db:"user_id"`
	Status   string    `db:"status"`
	JoinedAt time.Time `db:"joined_at"`
}
