package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slipsafe/slipsafe/constants"
)

// Field weights for the advisory confidence score.
const (
	merchantWeight = 0.30
	dateWeight     = 0.35
	totalWeight    = 0.35
)

// ScoreConfidence produces the weighted 0..1 score and its level from which
// core fields were extracted. Merchant weight scales with word count up to
// two words; a total with an explicit cents fraction scores full weight, a
// bare integer only 70% of it. Adding a field never lowers the score.
func ScoreConfidence(merchant *string, date *time.Time, total *decimal.Decimal) (float64, constants.ConfidenceLevel) {
	score := 0.0

	if merchant != nil {
		words := len(strings.Fields(*merchant))
		if words > 2 {
			words = 2
		}
		score += merchantWeight * float64(words) / 2.0
	}
	if date != nil {
		score += dateWeight
	}
	if total != nil {
		if total.Exponent() < 0 {
			score += totalWeight
		} else {
			score += totalWeight * 0.7
		}
	}

	return score, constants.LevelForScore(score)
}
