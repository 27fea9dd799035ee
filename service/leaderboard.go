package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/duo-platformer/game"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	"github.com/beka-birhanu/duo-platformer/service/i"
)

const (
	defaultLeaderboardKey  = "duo-platformer:endless"
	defaultLeaderboardSize = 10
)

var (
	ErrMissingSortedSet = errors.New("sorted set is required")
	ErrEmptyName        = errors.New("player name is empty")
)

var (
	_ i.ScoreRecorder = &Leaderboard{}
	_ i.ScoreBoard    = &Leaderboard{}
)

type LeaderboardOptions struct {
	Key  string
	Size int64
}

// Leaderboard keeps the best endless score of every player name, limited to the top Size.
type Leaderboard struct {
	sortedSet i.SortedSet
	logger    i.Logger
	opts      *LeaderboardOptions
}

func NewLeaderboard(sortedSet i.SortedSet, l i.Logger, opts *LeaderboardOptions) (*Leaderboard, error) {
	if sortedSet == nil {
		return nil, ErrMissingSortedSet
	}

	if opts == nil {
		opts = &LeaderboardOptions{
			Key:  defaultLeaderboardKey,
			Size: defaultLeaderboardSize,
		}
	}

	if opts.Key == "" {
		opts.Key = defaultLeaderboardKey
	}

	if opts.Size <= 0 {
		opts.Size = defaultLeaderboardSize
	}

	if l == nil {
		l = logger.Discard()
	}

	return &Leaderboard{
		sortedSet: sortedSet,
		logger:    l,
		opts:      opts,
	}, nil
}

// Record implements i.ScoreRecorder.
func (lb *Leaderboard) Record(ctx context.Context, result game.EndlessResult) error {
	if result.Name == "" {
		return ErrEmptyName
	}

	lb.logger.Info(fmt.Sprintf("recording endless score: Name=%s Score=%d", result.Name, result.Score))
	if err := lb.sortedSet.UpsertMax(ctx, lb.opts.Key, float64(result.Score), result.Name); err != nil {
		return err
	}

	return lb.sortedSet.TrimToTop(ctx, lb.opts.Key, lb.opts.Size)
}

// Top implements i.ScoreBoard.
func (lb *Leaderboard) Top(ctx context.Context) ([]i.ScoredMember, error) {
	return lb.sortedSet.Top(ctx, lb.opts.Key, lb.opts.Size)
}
