package pool

import (
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/scoring"
)

// Pool is one prediction competition instance ("bolão") tied to a championship.
type Pool struct {
	ID           string
	Name         string
	Championship string
	OwnerID      string
	Rules        scoring.Rules
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
