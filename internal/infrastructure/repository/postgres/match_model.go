package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID        int64         `db:"id"`
	PublicID  string        `db:"public_id"`
	PoolID    string        `db:"pool_public_id"`
	Round     int           `db:"round"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	KickoffAt time.Time     `db:"kickoff_at"`
	Status    string        `db:"status"`
	HomeScore sql.NullInt64 `db:"home_score"`
	AwayScore sql.NullInt64 `db:"away_score"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
	DeletedAt *time.Time    `db:"deleted_at"`
}

type matchInsertModel struct {
	PublicID  string    `db:"public_id"`
	PoolID    string    `db:"pool_public_id"`
	Round     int       `db:"round"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	KickoffAt time.Time `db:"kickoff_at"`
	Status    string    `db:"status"`
}
