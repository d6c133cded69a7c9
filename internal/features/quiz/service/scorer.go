package service

import (
	"sort"

	"giveaway-settlement/internal/features/quiz/models"
)

// Score compares submitted answers with the answer key by question id.
// Both sides are sorted by question id and compared pairwise, so submission order does not matter.
// The maximum is fixed at models.MaxScore regardless of how many answers were submitted.
func Score(submitted []models.Answer, key []models.Answer) models.Result {
	a := sortedByQuestion(submitted)
	k := sortedByQuestion(key)

	score := 0
	for i := 0; i < len(a) && i < len(k); i++ {
		if a[i].QuestionID == k[i].QuestionID && a[i].Answer == k[i].Answer {
			score += models.PointsPerQuestion
		}
	}
	if score > models.MaxScore {
		score = models.MaxScore
	}

	percent := score * 100 / models.MaxScore
	return models.Result{
		Score:   score,
		Percent: percent,
		Passed:  percent >= models.PassPercent,
	}
}

func sortedByQuestion(in []models.Answer) []models.Answer {
	out := make([]models.Answer, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
