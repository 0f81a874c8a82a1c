package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
)

func TestPoolServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner joins their own pool as approved", func(t *testing.T) {
		env := newTestEnv()

		created, err := env.poolService.Create(ctx, "owner", CreatePoolInput{
			Name:         "Bolão da Firma",
			Championship: "Brasileirão 2026",
			Rules:        scoring.DefaultRules(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.OwnerID != "owner" {
			t.Fatalf("unexpected owner: got=%s", created.OwnerID)
		}

		part, exists, _ := env.participants.GetByUserAndPool(ctx, "owner", created.ID)
		if !exists {
			t.Fatal("owner participant was not created")
		}
		if part.Status != participant.StatusApproved {
			t.Fatalf("unexpected owner status: got=%s want=%s", part.Status, participant.StatusApproved)
		}
	})

	t.Run("owner is ranked immediately", func(t *testing.T) {
		env := newTestEnv()

		created, err := env.poolService.Create(ctx, "owner", CreatePoolInput{
			Name:         "Bolão da Firma",
			Championship: "Brasileirão 2026",
			Rules:        scoring.DefaultRules(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ranked, err := env.rankingService.GetByPool(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ranked) != 1 {
			t.Fatalf("expected the owner on the leaderboard, got %d entries", len(ranked))
		}
		if ranked[0].UserID != "owner" || ranked[0].Position != 1 {
			t.Fatalf("unexpected leaderboard head: %+v", ranked[0])
		}
	})

	t.Run("blank name", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.poolService.Create(ctx, "owner", CreatePoolInput{
			Name:         "   ",
			Championship: "Brasileirão 2026",
			Rules:        scoring.DefaultRules(),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid rules", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.poolService.Create(ctx, "owner", CreatePoolInput{
			Name:         "Bolão",
			Championship: "Copa",
			Rules:        scoring.Rules{ExactScore: 2, CorrectOutcome: 3},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPoolServiceUpdateRules(t *testing.T) {
	ctx := context.Background()

	t.Run("only the owner may edit", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())

		_, err := env.poolService.UpdateRules(ctx, "pool-1", "intruder", scoring.DefaultRules())
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("persists rules and reports the rescore", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.Rules{ExactScore: 5, CorrectOutcome: 3})

		next := scoring.Rules{ExactScore: 8, CorrectOutcome: 4}
		if _, err := env.poolService.UpdateRules(ctx, "pool-1", "owner", next); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p, _, _ := env.pools.GetByID(ctx, "pool-1")
		if p.Rules != next {
			t.Fatalf("rules not persisted: got=%+v", p.Rules)
		}
	})

	t.Run("unknown pool", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.poolService.UpdateRules(ctx, "missing", "owner", scoring.DefaultRules())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPoolServiceJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("new member starts pending", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())

		joined, err := env.poolService.Join(ctx, "pool-1", "ana")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if joined.Status != participant.StatusPending {
			t.Fatalf("unexpected status: got=%s want=%s", joined.Status, participant.StatusPending)
		}
	})

	t.Run("duplicate join is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())

		if _, err := env.poolService.Join(ctx, "pool-1", "ana"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := env.poolService.Join(ctx, "pool-1", "ana")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPoolServiceUpdateParticipantStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("approval reranks the pool", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusPending, env.now)

		err := env.poolService.UpdateParticipantStatus(ctx, "pool-1", "part-ana", "owner", "approved")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		part, _, _ := env.participants.GetByID(ctx, "part-ana")
		if part.Status != participant.StatusApproved {
			t.Fatalf("unexpected status: got=%s", part.Status)
		}
		if part.Position != 1 {
			t.Fatalf("approval did not rank the member: position=%d", part.Position)
		}
	})

	t.Run("blocking drops the member from the ranking", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)
		if err := env.recompute.RebuildRanking(ctx, "pool-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := env.poolService.UpdateParticipantStatus(ctx, "pool-1", "part-ana", "owner", participant.StatusBlocked)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		part, _, _ := env.participants.GetByID(ctx, "part-ana")
		if part.Position != 0 {
			t.Fatalf("blocked member kept position %d", part.Position)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusPending, env.now)

		err := env.poolService.UpdateParticipantStatus(ctx, "pool-1", "part-ana", "ana", participant.StatusApproved)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusPending, env.now)

		err := env.poolService.UpdateParticipantStatus(ctx, "pool-1", "part-ana", "owner", "SUSPENDED")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("participant from another pool", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedPool("pool-2", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-2", "ana", participant.StatusPending, env.now)

		err := env.poolService.UpdateParticipantStatus(ctx, "pool-1", "part-ana", "owner", participant.StatusApproved)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPoolServiceRemoveParticipant(t *testing.T) {
	ctx := context.Background()

	t.Run("member removes themselves", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)

		if err := env.poolService.RemoveParticipant(ctx, "pool-1", "part-ana", "ana"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, exists, _ := env.participants.GetByID(ctx, "part-ana"); exists {
			t.Fatal("participant still present after removal")
		}
	})

	t.Run("owner removes a member", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)

		if err := env.poolService.RemoveParticipant(ctx, "pool-1", "part-ana", "owner"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("third parties are forbidden", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)

		err := env.poolService.RemoveParticipant(ctx, "pool-1", "part-ana", "bia")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
