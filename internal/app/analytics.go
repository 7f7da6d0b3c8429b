package app

import (
	"sort"

	"tryout-service/internal/domain"
)

// Summarize aggregates attempts into participant count, average, highest and
// lowest score, and a leaderboard. Equal scores keep their input order and
// every row gets its own rank. No attempts yields the empty state.
func Summarize(tryOutID string, attempts []domain.Attempt) domain.Stats {
	stats := domain.Stats{
		TryOutID:     tryOutID,
		Participants: []domain.RankedParticipant{},
	}
	if len(attempts) == 0 {
		return stats
	}

	ranked := make([]domain.Attempt, len(attempts))
	copy(ranked, attempts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	sum := 0.0
	stats.HighestScore = ranked[0].Score
	stats.LowestScore = ranked[len(ranked)-1].Score
	stats.Participants = make([]domain.RankedParticipant, len(ranked))
	for i, a := range ranked {
		sum += a.Score
		stats.Participants[i] = domain.RankedParticipant{
			Rank:  i + 1,
			ID:    a.ParticipantID,
			Name:  a.ParticipantName,
			Score: a.Score,
		}
	}
	stats.ParticipantCount = len(ranked)
	stats.AverageScore = sum / float64(len(ranked))
	return stats
}
