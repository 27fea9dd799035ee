package i

import "context"

// ScoredMember is one entry of a sorted set.
type ScoredMember struct {
	Member string  `json:"name"`
	Score  float64 `json:"score"`
}

// SortedSet is a scored set where every member keeps its best score.
type SortedSet interface {
	// UpsertMax sets member's score unless it already holds a higher one.
	UpsertMax(ctx context.Context, key string, score float64, member string) error

	// TrimToTop removes everything but the keep highest-scored members.
	TrimToTop(ctx context.Context, key string, keep int64) error

	// Top returns up to n members ordered by descending score.
	Top(ctx context.Context, key string, n int64) ([]ScoredMember, error)
}
