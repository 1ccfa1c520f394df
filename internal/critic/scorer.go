package critic

const (
	baseScore = 55
	minScore  = 5
	maxScore  = 95
)

// Score turns signals into a bounded score. Each adjustment is capped on its own
// before the sum is clamped to [minScore, maxScore].
func Score(s *Signals) int {
	score := baseScore
	score += min(3*len(s.SectionsPresent), 12)
	score += min(len(s.Found), 10)
	if s.HasRepository {
		score += 4
	}
	score += min(2*s.Quantified, 6)
	score -= min(3*len(s.SectionsMissing), 9)
	if s.HasJobDescription {
		score -= min(len(s.Suggested), 5)
	}
	score += s.RedFlagPenalty

	return max(minScore, min(maxScore, score))
}
