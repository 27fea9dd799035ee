package i

import (
	"context"

	"github.com/beka-birhanu/duo-platformer/game"
)

// ScoreRecorder stores finished endless runs.
type ScoreRecorder interface {
	Record(ctx context.Context, result game.EndlessResult) error
}

// ScoreBoard lists the best endless runs.
type ScoreBoard interface {
	Top(ctx context.Context) ([]ScoredMember, error)
}
