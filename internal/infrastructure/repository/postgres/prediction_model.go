package postgres

import (
	"database/sql"
	"time"
)

type predictionTableModel struct {
	ID        int64         `db:"id"`
	PublicID  string        `db:"public_id"`
	PoolID    string        `db:"pool_public_id"`
	MatchID   string        `db:"match_public_id"`
	UserID    string        `db:"user_id"`
	HomeGoals int           `db:"home_goals"`
	AwayGoals int           `db:"away_goals"`
	Points    sql.NullInt64 `db:"points"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
	DeletedAt *time.Time    `db:"deleted_at"`
}

type predictionInsertModel struct {
	PublicID  string `db:"public_id"`
	PoolID    string `db:"pool_public_id"`
	MatchID   string `db:"match_public_id"`
	UserID    string `db:"user_id"`
	HomeGoals int    `db:"home_goals"`
	AwayGoals int    `db:"away_goals"`
}
