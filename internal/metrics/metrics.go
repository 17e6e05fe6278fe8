package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesRegistered tracks registered votes by direction (up/down)
	VotesRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votecount_votes_registered_total",
			Help: "Total votes registered by direction",
		},
		[]string{"direction"},
	)

	// VotesRetracted tracks removed votes by whether the tally was preserved
	VotesRetracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votecount_votes_retracted_total",
			Help: "Total votes retracted, labelled by tally preservation",
		},
		[]string{"preserved"},
	)

	// VoteCountsCreated tracks lazily created VoteCount rows
	VoteCountsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votecount_counts_created_total",
			Help: "Total VoteCount rows created lazily on first vote or count query",
		},
	)

	// DuplicatesResolved tracks duplicate VoteCount rows removed on lookup
	DuplicatesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "votecount_duplicates_resolved_total",
			Help: "Total duplicate VoteCount rows removed by opportunistic cleanup",
		},
	)
)

// DirectionLabel maps a direction value to its metric label.
func DirectionLabel(direction int) string {
	if direction > 0 {
		return "up"
	}
	return "down"
}
