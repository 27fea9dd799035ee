package i

import (
	"context"

	"github.com/beka-birhanu/duo-platformer/game"
)

// MatchResultRepo defines the interface for race result persistence.
type MatchResultRepo interface {
	// Save stores the result of the match identified by result.MatchID. The first result
	// saved for a match is kept.
	Save(ctx context.Context, result game.RaceResult) error
}
