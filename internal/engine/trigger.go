package engine

import (
	"fmt"

	"github.com/freshdrop/rewards/internal/domain"
)

// EvaluateTrigger evaluates a scratch-card trigger against the candidate
// catalog. Candidates are filtered to active rewards whose type matches the
// trigger and whose type-specific condition holds; each survivor then gets
// an independent win/lose draw at its configured probability. When several
// candidates win in the same call, the one with the highest reward value is
// returned (ties broken by lowest ID, so results are reproducible). A nil
// reward with a nil error means nothing was won, which is a normal result.
func EvaluateTrigger(rng Rand, ev domain.TriggerEvent, candidates []domain.ScratchReward) (*domain.ScratchReward, error) {
	if !domain.IsValidTriggerKind(ev.Kind) {
		return nil, fmt.Errorf("evaluate trigger: unknown kind %q", ev.Kind)
	}

	var winner *domain.ScratchReward

	for i := range candidates {
		c := &candidates[i]
		if !c.IsActive || !c.Matches(ev) {
			continue
		}

		won, err := drawWin(rng, c.Probability)
		if err != nil {
			return nil, fmt.Errorf("evaluate reward %s: %w", c.ID, err)
		}
		if !won {
			continue
		}

		if winner == nil ||
			c.RewardValue > winner.RewardValue ||
			(c.RewardValue == winner.RewardValue && c.ID < winner.ID) {
			winner = c
		}
	}

	return winner, nil
}

// drawWin draws an independent boolean with the given win percentage.
// Implemented as a two-option weighted draw so the same cumulative-table
// path (and the same injected randomness) is exercised everywhere.
func drawWin(rng Rand, probability int) (bool, error) {
	if probability <= 0 {
		return false, nil
	}
	if probability >= 100 {
		return true, nil
	}

	id, err := Draw(rng, []Option{
		{ID: "win", Weight: probability},
		{ID: "lose", Weight: 100 - probability},
	})
	if err != nil {
		return false, err
	}
	return id == "win", nil
}
