package spans

// Scores are the span-level counts and metrics of a set of predictions. A predicted span
// counts as correct only if its type, start and end all match a gold span.
type Scores struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Precision returns TP / (TP + FP), or 0 when there are no predictions.
func (s Scores) Precision() float64 {
	return ratio(s.TruePositives, s.TruePositives+s.FalsePositives)
}

// Recall returns TP / (TP + FN), or 0 when there are no gold spans.
func (s Scores) Recall() float64 {
	return ratio(s.TruePositives, s.TruePositives+s.FalseNegatives)
}

// F1 returns the harmonic mean of precision and recall.
func (s Scores) F1() float64 {
	p, r := s.Precision(), s.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Add accumulates other into s.
func (s *Scores) Add(other Scores) {
	s.TruePositives += other.TruePositives
	s.FalsePositives += other.FalsePositives
	s.FalseNegatives += other.FalseNegatives
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Score compares the predicted spans of one sentence with the gold spans.
func Score(gold, predicted []Span) Scores {
	remaining := make(map[Span]int, len(gold))
	for _, s := range gold {
		remaining[s]++
	}
	var scores Scores
	for _, s := range predicted {
		if remaining[s] > 0 {
			remaining[s]--
			scores.TruePositives++
		} else {
			scores.FalsePositives++
		}
	}
	for _, n := range remaining {
		scores.FalseNegatives += n
	}
	return scores
}

// ScoreByType is like Score, but keeps separate counts for every entity type.
func ScoreByType(gold, predicted []Span) map[string]Scores {
	byType := make(map[string]Scores)
	split := func(spans []Span) map[string][]Span {
		m := make(map[string][]Span)
		for _, s := range spans {
			m[s.Type] = append(m[s.Type], s)
		}
		return m
	}
	goldByType, predByType := split(gold), split(predicted)
	for typ := range goldByType {
		byType[typ] = Score(goldByType[typ], predByType[typ])
	}
	for typ := range predByType {
		if _, done := byType[typ]; !done {
			byType[typ] = Score(nil, predByType[typ])
		}
	}
	return byType
}
