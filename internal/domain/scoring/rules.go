package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrExactScoreOutOfRange     = errors.New("exact score points out of range")
	ErrCorrectOutcomeOutOfRange = errors.New("correct outcome points out of range")
	ErrGoalBonusOutOfRange      = errors.New("exact goal bonus points out of range")
	ErrExactBelowOutcome        = errors.New("exact score points below correct outcome points")
)

const (
	MaxExactScorePoints     = 50
	MaxCorrectOutcomePoints = 25
	MaxGoalBonusPoints      = 10
)

// Rules stores the point values a pool awards per prediction result.
type Rules struct {
	ExactScore     int
	CorrectOutcome int
	ExactGoalBonus int
	BonusEnabled   bool
}

func DefaultRules() Rules {
	return Rules{
		ExactScore:     5,
		CorrectOutcome: 3,
		ExactGoalBonus: 0,
	}
}

func ValidateRules(rules Rules) error {
	if rules.ExactScore < 0 || rules.ExactScore > MaxExactScorePoints {
		return fmt.Errorf("%w: got=%d max=%d", ErrExactScoreOutOfRange, rules.ExactScore, MaxExactScorePoints)
	}
	if rules.CorrectOutcome < 0 || rules.CorrectOutcome > MaxCorrectOutcomePoints {
		return fmt.Errorf("%w: got=%d max=%d", ErrCorrectOutcomeOutOfRange, rules.CorrectOutcome, MaxCorrectOutcomePoints)
	}
	if rules.ExactGoalBonus < 0 || rules.ExactGoalBonus > MaxGoalBonusPoints {
		return fmt.Errorf("%w: got=%d max=%d", ErrGoalBonusOutOfRange, rules.ExactGoalBonus, MaxGoalBonusPoints)
	}
	if rules.ExactScore < rules.CorrectOutcome {
		return fmt.Errorf("%w: exact=%d outcome=%d", ErrExactBelowOutcome, rules.ExactScore, rules.CorrectOutcome)
	}
	return nil
}
