package scoring

// Outcome classifies a scoreline by winner direction.
type Outcome string

const (
	OutcomeHomeWin Outcome = "HOME_WIN"
	OutcomeAwayWin Outcome = "AWAY_WIN"
	OutcomeDraw    Outcome = "DRAW"
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// ResultTag distinguishes how a prediction hit, so the aggregation layer
// decides which tags count as "correct" instead of collapsing to a bool here.
type ResultTag string

const (
	TagExactMatch     ResultTag = "EXACT_MATCH"
	TagCorrectOutcome ResultTag = "CORRECT_OUTCOME"
	TagMiss           ResultTag = "MISS"
)

type Result struct {
	Tag    ResultTag
	Points int
}

// Evaluate maps one prediction against a finalized scoreline. Total and pure:
// callers guarantee the match is finalized before invoking it.
//
// An exact match is the maximal outcome; no bonus stacks with it. The exact
// goal bonus only applies on top of a correct-outcome hit, once per side
// predicted exactly, and only when the pool enabled it.
func Evaluate(predictedHome, predictedAway, homeScore, awayScore int, rules Rules) Result {
	if predictedHome == homeScore && predictedAway == awayScore {
		return Result{Tag: TagExactMatch, Points: rules.ExactScore}
	}

	if OutcomeOf(predictedHome, predictedAway) != OutcomeOf(homeScore, awayScore) {
		return Result{Tag: TagMiss, Points: 0}
	}

	points := rules.CorrectOutcome
	if rules.BonusEnabled {
		if predictedHome == homeScore {
			points += rules.ExactGoalBonus
		}
		if predictedAway == awayScore {
			points += rules.ExactGoalBonus
		}
	}
	return Result{Tag: TagCorrectOutcome, Points: points}
}
