package report

import "math"

// Policy selects the reputation scoring formula.
type Policy string

const (
	// PolicyWeighted is a position-weighted average of per-item sentiment
	// values. Higher positions carry more weight.
	PolicyWeighted Policy = "weighted"
	// PolicyBucket is a signed sum over coarse position buckets. It is
	// unnormalized, so larger result sets move the score further.
	PolicyBucket Policy = "bucket"
)

// Scorer computes a 0-100 reputation score for a result set.
// The zero value uses the weighted policy without escalation.
type Scorer struct {
	Policy Policy
	// Escalation strengthens the weighted policy: top-10 results weigh
	// triple, top-10 negatives double again, ranks 11-20 weigh 1.5x,
	// controlled results 1.2x, and any top-10 negative caps the score at 60.
	Escalation bool
}

// Score returns the reputation score for items, clamped to [0, 100].
// An empty set scores 0.
func (s Scorer) Score(items []ResultItem) int {
	if len(items) == 0 {
		return 0
	}
	if s.Policy == PolicyBucket {
		return scoreBucket(items)
	}
	return scoreWeighted(items, s.Escalation)
}

func scoreWeighted(items []ResultItem, escalation bool) int {
	var totalWeight, weighted float64
	capped := false

	for _, item := range items {
		weight := math.Max(float64(11-item.Rank), 1)

		value := 50.0
		switch item.Sentiment {
		case SentimentPositive:
			value = 90
		case SentimentNegative:
			value = 10
		}
		if item.HasControl && item.Sentiment == SentimentPositive {
			value = 95
		}

		if escalation {
			switch {
			case item.Rank <= 10:
				weight *= 3
				if item.Sentiment == SentimentNegative {
					weight *= 2
					capped = true
				}
			case item.Rank <= 20:
				weight *= 1.5
			}
			if item.HasControl {
				weight *= 1.2
			}
		}

		totalWeight += weight
		weighted += value * weight
	}

	score := int(math.Round(weighted / totalWeight))
	// The cap only ever pulls scores down.
	if escalation && capped && score > 60 {
		score = 60
	}
	return clampScore(score)
}

func scoreBucket(items []ResultItem) int {
	var raw float64
	for _, item := range items {
		var factor float64
		switch item.Sentiment {
		case SentimentPositive:
			factor = -1
		case SentimentNegative:
			factor = 1
		}

		var weight float64
		switch {
		case item.Rank <= 10:
			weight = 0.7
		case item.Rank <= 30:
			weight = 0.2
		default:
			weight = 0.1
		}

		raw += weight * factor
	}

	return clampScore(int(math.Round((1 - raw) / 2 * 100)))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
