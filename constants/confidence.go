package constants

// ConfidenceLevel is the advisory rating attached to an extraction result.
// It never blocks persistence; it only drives UI messaging and which fields
// are flagged for manual entry.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Thresholds for mapping a raw 0..1 score to a level.
const (
	ConfidenceHighThreshold   = 0.8
	ConfidenceMediumThreshold = 0.5
)

// LevelForScore maps a raw weighted score onto a confidence level.
func LevelForScore(score float64) ConfidenceLevel {
	switch {
	case score >= ConfidenceHighThreshold:
		return ConfidenceHigh
	case score >= ConfidenceMediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
