package sortedstorage

import (
	"context"

	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

var _ i.SortedSet = &RedisSortedSet{}

// RedisSortedSet implements i.SortedSet on Redis sorted sets.
type RedisSortedSet struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisSortedSet initializes a RedisSortedSet with the provided Redis client.
func NewRedisSortedSet(client *redis.Client) *RedisSortedSet {
	pool := goredis.NewPool(client)
	return &RedisSortedSet{
		client: client,
		locker: redsync.New(pool),
	}
}

// UpsertMax adds member with score, or raises its score if score is higher.
func (rss *RedisSortedSet) UpsertMax(ctx context.Context, key string, score float64, member string) error {
	return rss.client.ZAddGT(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// TrimToTop drops the lowest-scored members until at most keep remain. Concurrent trims
// of the same key are serialized with a distributed lock.
func (rss *RedisSortedSet) TrimToTop(ctx context.Context, key string, keep int64) error {
	mutex := rss.locker.NewMutex(key + ":trim_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	count, err := rss.client.ZCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if count <= keep {
		return nil
	}
	return rss.client.ZRemRangeByRank(ctx, key, 0, count-keep-1).Err()
}

// Top returns up to n members with the highest scores, best first.
func (rss *RedisSortedSet) Top(ctx context.Context, key string, n int64) ([]i.ScoredMember, error) {
	if n <= 0 {
		return []i.ScoredMember{}, nil
	}

	zs, err := rss.client.ZRevRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	members := make([]i.ScoredMember, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		members = append(members, i.ScoredMember{Member: member, Score: z.Score})
	}
	return members, nil
}
