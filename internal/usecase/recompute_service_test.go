package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/bolaohq/bolao-server/internal/domain/match"
	"github.com/bolaohq/bolao-server/internal/domain/participant"
	"github.com/bolaohq/bolao-server/internal/domain/prediction"
	"github.com/bolaohq/bolao-server/internal/domain/scoring"
)

func TestRecomputeOnMatchFinalized(t *testing.T) {
	ctx := context.Background()
	rules := scoring.Rules{ExactScore: 5, CorrectOutcome: 3}

	setup := func() (*testEnv, match.Match) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", rules)
		env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)
		env.seedParticipant("part-bia", "pool-1", "bia", participant.StatusApproved, env.now.Add(time.Minute))

		m := env.seedMatch("match-1", "pool-1", env.now.Add(time.Hour))
		m.Status = match.StatusFinalized
		m.HomeScore = intPtr(2)
		m.AwayScore = intPtr(1)
		_ = env.matches.Update(ctx, m)

		_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
			ID: "pred-ana", PoolID: "pool-1", MatchID: "match-1", UserID: "ana",
			HomeGoals: 2, AwayGoals: 1, CreatedAt: env.now,
		})
		_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
			ID: "pred-bia", PoolID: "pool-1", MatchID: "match-1", UserID: "bia",
			HomeGoals: 1, AwayGoals: 0, CreatedAt: env.now,
		})
		return env, m
	}

	t.Run("scores every prediction and rebuilds the leaderboard", func(t *testing.T) {
		env, _ := setup()

		report, err := env.recompute.OnMatchFinalized(ctx, "match-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.PredictionsScored != 2 {
			t.Fatalf("unexpected scored count: got=%d want=2", report.PredictionsScored)
		}
		if report.ParticipantsUpdated != 2 {
			t.Fatalf("unexpected updated count: got=%d want=2", report.ParticipantsUpdated)
		}

		ana, _, _ := env.participants.GetByID(ctx, "part-ana")
		if ana.Points != 5 || ana.CorrectCount != 1 || ana.TotalPredictions != 1 {
			t.Fatalf("unexpected ana aggregate: %+v", ana)
		}
		if ana.Position != 1 {
			t.Fatalf("unexpected ana position: got=%d want=1", ana.Position)
		}

		bia, _, _ := env.participants.GetByID(ctx, "part-bia")
		if bia.Points != 3 || bia.Position != 2 {
			t.Fatalf("unexpected bia state: points=%d position=%d", bia.Points, bia.Position)
		}
	})

	t.Run("running twice yields identical state", func(t *testing.T) {
		env, _ := setup()

		first, err := env.recompute.OnMatchFinalized(ctx, "match-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := env.recompute.OnMatchFinalized(ctx, "match-1")
		if err != nil {
			t.Fatalf("unexpected error on rerun: %v", err)
		}
		if first != second {
			t.Fatalf("reports diverged: first=%+v second=%+v", first, second)
		}

		ana, _, _ := env.participants.GetByID(ctx, "part-ana")
		if ana.Points != 5 || ana.TotalPredictions != 1 || ana.Position != 1 {
			t.Fatalf("rerun changed ana state: %+v", ana)
		}
	})

	t.Run("corrected score overwrites stale points", func(t *testing.T) {
		env, m := setup()

		if _, err := env.recompute.OnMatchFinalized(ctx, "match-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// The result flips: now bia predicted the outcome, ana missed.
		m.HomeScore = intPtr(0)
		m.AwayScore = intPtr(1)
		_ = env.matches.Update(ctx, m)
		if _, err := env.recompute.OnMatchFinalized(ctx, "match-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ana, _, _ := env.participants.GetByID(ctx, "part-ana")
		if ana.Points != 0 {
			t.Fatalf("stale points survived: got=%d want=0", ana.Points)
		}
		bia, _, _ := env.participants.GetByID(ctx, "part-bia")
		if bia.Points != 0 {
			t.Fatalf("stale points survived: got=%d want=0", bia.Points)
		}
		// Both missed now, so the tie breaks on join order.
		if ana.Position != 1 || bia.Position != 2 {
			t.Fatalf("tie should rank earlier joiner first: ana=%d bia=%d", ana.Position, bia.Position)
		}
	})

	t.Run("match without predictions is a no-op", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", rules)
		m := env.seedMatch("match-empty", "pool-1", env.now)
		m.Status = match.StatusFinalized
		m.HomeScore = intPtr(1)
		m.AwayScore = intPtr(1)
		_ = env.matches.Update(ctx, m)

		report, err := env.recompute.OnMatchFinalized(ctx, "match-empty")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != (RecomputeReport{}) {
			t.Fatalf("expected empty report, got %+v", report)
		}
	})

	t.Run("unknown match", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.recompute.OnMatchFinalized(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-finalized match is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", rules)
		env.seedMatch("match-1", "pool-1", env.now)

		_, err := env.recompute.OnMatchFinalized(ctx, "match-1")
		if !errors.Is(err, ErrPreconditionFailed) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRecomputeScoringSubmitFailure(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv()
	env.seedPool("pool-1", "owner", scoring.Rules{ExactScore: 5, CorrectOutcome: 3})
	env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)
	env.seedParticipant("part-bia", "pool-1", "bia", participant.StatusApproved, env.now)

	m := env.seedMatch("match-1", "pool-1", env.now)
	m.Status = match.StatusFinalized
	m.HomeScore = intPtr(2)
	m.AwayScore = intPtr(1)
	_ = env.matches.Update(ctx, m)

	_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
		ID: "pred-ana", PoolID: "pool-1", MatchID: "match-1", UserID: "ana",
		HomeGoals: 2, AwayGoals: 1, CreatedAt: env.now,
	})
	_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
		ID: "pred-bia", PoolID: "pool-1", MatchID: "match-1", UserID: "bia",
		HomeGoals: 1, AwayGoals: 0, CreatedAt: env.now,
	})

	// The first prediction enters the pool but is held back, the second
	// submission fails outright.
	release := make(chan struct{})
	submitted := 0
	env.recompute.submitScore = func(workers *ants.Pool, task func()) error {
		submitted++
		if submitted > 1 {
			return ants.ErrPoolClosed
		}
		return workers.Submit(func() {
			<-release
			task()
		})
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	if _, err := env.recompute.OnMatchFinalized(ctx, "match-1"); err == nil {
		t.Fatal("expected the submit failure to surface")
	}

	// The task that made it into the pool must finish before the call returns.
	preds, _ := env.predictions.ListByMatch(ctx, "match-1")
	scored := 0
	for _, p := range preds {
		if p.Points != nil {
			scored++
		}
	}
	if scored != 1 {
		t.Fatalf("unexpected scored predictions: got=%d want=1", scored)
	}
}

func TestRecomputeRankingRules(t *testing.T) {
	ctx := context.Background()

	t.Run("only approved participants are ranked", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())
		env.seedParticipant("part-approved", "pool-1", "ana", participant.StatusApproved, env.now)
		pending := env.seedParticipant("part-pending", "pool-1", "bia", participant.StatusPending, env.now)
		blocked := env.seedParticipant("part-blocked", "pool-1", "caio", participant.StatusBlocked, env.now)

		// Simulate positions left over from before a status change.
		_ = env.participants.ReplaceRanking(ctx, "pool-1", []participant.Rank{
			{ParticipantID: pending.ID, Position: 1},
			{ParticipantID: blocked.ID, Position: 2},
		})

		if err := env.recompute.RebuildRanking(ctx, "pool-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		approved, _, _ := env.participants.GetByID(ctx, "part-approved")
		if approved.Position != 1 {
			t.Fatalf("unexpected approved position: got=%d want=1", approved.Position)
		}
		for _, id := range []string{"part-pending", "part-blocked"} {
			p, _, _ := env.participants.GetByID(ctx, id)
			if p.Position != 0 {
				t.Fatalf("unranked participant %s kept position %d", id, p.Position)
			}
		}
	})

	t.Run("full tie-break chain with consecutive positions", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())

		base := env.now
		seed := func(id, userID string, joinedAt time.Time, agg participant.Aggregate) {
			env.seedParticipant(id, "pool-1", userID, participant.StatusApproved, joinedAt)
			_ = env.participants.UpdateAggregates(ctx, id, agg)
		}
		// part-d: most points. part-b beats part-c on correct count. part-a
		// ties part-b entirely but joined later. part-e ties part-a on
		// everything including join time, so the ID decides.
		seed("part-d", "dani", base, participant.Aggregate{Points: 9, CorrectCount: 2, TotalPredictions: 3})
		seed("part-b", "bia", base, participant.Aggregate{Points: 6, CorrectCount: 2, TotalPredictions: 3})
		seed("part-c", "caio", base, participant.Aggregate{Points: 6, CorrectCount: 1, TotalPredictions: 3})
		seed("part-a", "ana", base.Add(time.Hour), participant.Aggregate{Points: 6, CorrectCount: 2, TotalPredictions: 3})
		seed("part-e", "edu", base.Add(time.Hour), participant.Aggregate{Points: 6, CorrectCount: 2, TotalPredictions: 3})

		if err := env.recompute.RebuildRanking(ctx, "pool-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[string]int{
			"part-d": 1,
			"part-b": 2,
			"part-a": 3,
			"part-e": 4,
			"part-c": 5,
		}
		for id, position := range want {
			p, _, _ := env.participants.GetByID(ctx, id)
			if p.Position != position {
				t.Fatalf("unexpected position for %s: got=%d want=%d", id, p.Position, position)
			}
		}
	})

	t.Run("concurrent rebuild surfaces a conflict", func(t *testing.T) {
		env := newTestEnv()
		env.seedPool("pool-1", "owner", scoring.DefaultRules())

		lock := env.recompute.rankLock("pool-1")
		lock.Lock()
		defer lock.Unlock()

		err := env.recompute.RebuildRanking(ctx, "pool-1")
		if !errors.Is(err, ErrConcurrencyConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRecomputeOnRulesChanged(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv()
	env.seedPool("pool-1", "owner", scoring.Rules{ExactScore: 5, CorrectOutcome: 3})
	env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)

	m := env.seedMatch("match-1", "pool-1", env.now)
	m.Status = match.StatusFinalized
	m.HomeScore = intPtr(2)
	m.AwayScore = intPtr(0)
	_ = env.matches.Update(ctx, m)
	env.seedMatch("match-2", "pool-1", env.now) // stays scheduled, must be skipped

	_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
		ID: "pred-1", PoolID: "pool-1", MatchID: "match-1", UserID: "ana",
		HomeGoals: 2, AwayGoals: 0, CreatedAt: env.now,
	})

	if _, err := env.recompute.OnMatchFinalized(ctx, "match-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ana, _, _ := env.participants.GetByID(ctx, "part-ana")
	if ana.Points != 5 {
		t.Fatalf("unexpected points before rule edit: got=%d want=5", ana.Points)
	}

	_ = env.pools.UpdateRules(ctx, "pool-1", scoring.Rules{ExactScore: 10, CorrectOutcome: 4})

	report, err := env.recompute.OnRulesChanged(ctx, "pool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.PredictionsScored != 1 {
		t.Fatalf("unexpected rescored count: got=%d want=1", report.PredictionsScored)
	}

	ana, _, _ = env.participants.GetByID(ctx, "part-ana")
	if ana.Points != 10 {
		t.Fatalf("rule edit did not rescore history: got=%d want=10", ana.Points)
	}
}

func TestRecomputeOnMatchVoided(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv()
	env.seedPool("pool-1", "owner", scoring.Rules{ExactScore: 5, CorrectOutcome: 3})
	env.seedParticipant("part-ana", "pool-1", "ana", participant.StatusApproved, env.now)

	m := env.seedMatch("match-1", "pool-1", env.now)
	m.Status = match.StatusFinalized
	m.HomeScore = intPtr(1)
	m.AwayScore = intPtr(1)
	_ = env.matches.Update(ctx, m)
	_, _ = env.predictions.Upsert(ctx, prediction.Prediction{
		ID: "pred-1", PoolID: "pool-1", MatchID: "match-1", UserID: "ana",
		HomeGoals: 1, AwayGoals: 1, CreatedAt: env.now,
	})

	if _, err := env.recompute.OnMatchFinalized(ctx, "match-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Status = match.StatusPostponed
	m.HomeScore = nil
	m.AwayScore = nil
	_ = env.matches.Update(ctx, m)

	report, err := env.recompute.OnMatchVoided(ctx, "match-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ParticipantsUpdated != 1 {
		t.Fatalf("unexpected updated count: got=%d want=1", report.ParticipantsUpdated)
	}

	preds, _ := env.predictions.ListByMatch(ctx, "match-1")
	if len(preds) != 1 || preds[0].Points != nil {
		t.Fatalf("void did not clear points: %+v", preds)
	}
	ana, _, _ := env.participants.GetByID(ctx, "part-ana")
	if ana.Points != 0 || ana.TotalPredictions != 0 || ana.CorrectCount != 0 {
		t.Fatalf("void left stale aggregates: %+v", ana)
	}
}
