package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/pool"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
	"github.com/bolaohq/bolao-server/internal/infrastructure/repository/memory"
	basecache "github.com/bolaohq/bolao-server/internal/platform/cache"
)

func TestPoolRepository_GetByIDServesFromCache(t *testing.T) {
	ctx := context.Background()
	next := memory.NewPoolRepository()
	repo := NewPoolRepository(next, basecache.NewStore(time.Minute))

	rules := scoring.Rules{ExactScore: 5, CorrectOutcome: 3}
	if err := repo.Create(ctx, pool.Pool{ID: "pool-1", Name: "Bolão", OwnerID: "owner", Rules: rules}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, exists, err := repo.GetByID(ctx, "pool-1")
	if err != nil || !exists {
		t.Fatalf("unexpected read: exists=%v err=%v", exists, err)
	}
	if first.Rules != rules {
		t.Fatalf("unexpected rules: %+v", first.Rules)
	}

	// A write that bypasses the decorator is invisible until invalidation.
	stale := scoring.Rules{ExactScore: 9, CorrectOutcome: 4}
	if err := next.UpdateRules(ctx, "pool-1", stale); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cached, _, _ := repo.GetByID(ctx, "pool-1")
	if cached.Rules != rules {
		t.Fatalf("expected cached rules, got %+v", cached.Rules)
	}
}

func TestPoolRepository_UpdateRulesInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := NewPoolRepository(memory.NewPoolRepository(), basecache.NewStore(time.Minute))

	if err := repo.Create(ctx, pool.Pool{ID: "pool-1", Name: "Bolão", OwnerID: "owner", Rules: scoring.Rules{ExactScore: 5, CorrectOutcome: 3}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := repo.GetByID(ctx, "pool-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next := scoring.Rules{ExactScore: 8, CorrectOutcome: 4}
	if err := repo.UpdateRules(ctx, "pool-1", next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _, _ := repo.GetByID(ctx, "pool-1")
	if got.Rules != next {
		t.Fatalf("update did not invalidate the cache: %+v", got.Rules)
	}
}

func TestParticipantRepository_WritesDropCachedReads(t *testing.T) {
	ctx := context.Background()
	next := memory.NewParticipantRepository()
	repo := NewParticipantRepository(next, basecache.NewStore(time.Minute))
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, participant.Participant{
		ID: "part-1", PoolID: "pool-1", UserID: "ana",
		Status: participant.StatusApproved, JoinedAt: now,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	members, err := repo.ListByPool(ctx, "pool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("unexpected member count: got=%d want=1", len(members))
	}

	// Bypassing the decorator leaves the cached list untouched.
	if err := next.Create(ctx, participant.Participant{
		ID: "part-2", PoolID: "pool-1", UserID: "bia",
		Status: participant.StatusPending, JoinedAt: now,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members, _ = repo.ListByPool(ctx, "pool-1")
	if len(members) != 1 {
		t.Fatalf("expected cached list, got %d members", len(members))
	}

	// A decorated write drops the cached list.
	if err := repo.ReplaceRanking(ctx, "pool-1", []participant.Rank{
		{ParticipantID: "part-1", Position: 1},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members, _ = repo.ListByPool(ctx, "pool-1")
	if len(members) != 2 {
		t.Fatalf("write did not invalidate the list: got=%d want=2", len(members))
	}
}

func TestParticipantRepository_GetByUserAndPoolCachesMisses(t *testing.T) {
	ctx := context.Background()
	next := memory.NewParticipantRepository()
	repo := NewParticipantRepository(next, basecache.NewStore(time.Minute))

	if _, exists, err := repo.GetByUserAndPool(ctx, "ana", "pool-1"); err != nil || exists {
		t.Fatalf("unexpected read: exists=%v err=%v", exists, err)
	}

	// The miss stays cached until a decorated write lands.
	if err := repo.Create(ctx, participant.Participant{
		ID: "part-1", PoolID: "pool-1", UserID: "ana", Status: participant.StatusPending,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, exists, err := repo.GetByUserAndPool(ctx, "ana", "pool-1")
	if err != nil || !exists {
		t.Fatalf("unexpected read after create: exists=%v err=%v", exists, err)
	}
	if got.ID != "part-1" {
		t.Fatalf("unexpected participant: %+v", got)
	}
}
