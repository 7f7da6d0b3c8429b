package app

import "tryout-service/internal/domain"

// Score grades answers against the try-out's answer key and returns a
// percentage in [0, 100]. answers[i] is matched to question i; a missing or
// empty entry counts as unanswered. Matching is exact and case-sensitive, with
// no partial credit and no negative marking.
func Score(t domain.TryOut, answers []string) float64 {
	if len(t.Questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range t.Questions {
		if i >= len(answers) || answers[i] == "" {
			continue
		}
		if answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(t.Questions)) * 100
}
