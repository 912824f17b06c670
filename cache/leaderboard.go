// cache/leaderboard.go - global points leaderboard kept in a Redis sorted set
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const LeaderboardPointsKey = "leaderboard:points"

// ErrUnavailable tells callers to read the ranking from the database instead.
var ErrUnavailable = errors.New("leaderboard cache unavailable")

type Entry struct {
	UserID string `json:"userId"`
	Points int64  `json:"points"`
	Rank   int64  `json:"rank"`
}

// Leaderboard is the global ranking cache. Implementations must be safe for
// concurrent use.
type Leaderboard interface {
	SetPoints(ctx context.Context, userID string, points int) error
	Remove(ctx context.Context, userID string) error
	Top(ctx context.Context, limit int64) ([]Entry, error)
	Rank(ctx context.Context, userID string) (int64, error)
	Rebuild(ctx context.Context, points map[string]int) error
}

// New connects to redisURL. An empty URL, or a server that does not answer,
// gives a Noop leaderboard so the service keeps working from the database.
func New(redisURL string) (Leaderboard, error) {
	if redisURL == "" {
		return Noop{}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis not reachable (%v), ranking served from the database", err)
		client.Close()
		return Noop{}, nil
	}
	log.Println("✅ Redis connected (ranking cache)")
	return NewRedisLeaderboard(client), nil
}

// RedisLeaderboard stores total points per user id in one ZSet.
type RedisLeaderboard struct {
	client *redis.Client
}

func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

func (r *RedisLeaderboard) SetPoints(ctx context.Context, userID string, points int) error {
	return r.client.ZAdd(ctx, LeaderboardPointsKey, redis.Z{
		Score:  float64(points),
		Member: userID,
	}).Err()
}

func (r *RedisLeaderboard) Remove(ctx context.Context, userID string) error {
	return r.client.ZRem(ctx, LeaderboardPointsKey, userID).Err()
}

// Top returns the best limit users, highest points first. limit <= 0 returns all.
func (r *RedisLeaderboard) Top(ctx context.Context, limit int64) ([]Entry, error) {
	n, err := r.client.ZCard(ctx, LeaderboardPointsKey).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// an empty set means it was never built
		return nil, ErrUnavailable
	}

	stop := limit - 1
	if limit <= 0 {
		stop = -1
	}
	results, err := r.client.ZRevRangeWithScores(ctx, LeaderboardPointsKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(results))
	for i, res := range results {
		member, _ := res.Member.(string)
		entries[i] = Entry{
			UserID: member,
			Points: int64(res.Score),
			Rank:   int64(i) + 1,
		}
	}
	return entries, nil
}

// Rank returns the 1-based rank of userID, or 0 when the user is not ranked.
func (r *RedisLeaderboard) Rank(ctx context.Context, userID string) (int64, error) {
	rank, err := r.client.ZRevRank(ctx, LeaderboardPointsKey, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rank + 1, nil
}

// Rebuild replaces the whole set in one transaction.
func (r *RedisLeaderboard) Rebuild(ctx context.Context, points map[string]int) error {
	members := make([]redis.Z, 0, len(points))
	for id, p := range points {
		members = append(members, redis.Z{Score: float64(p), Member: id})
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, LeaderboardPointsKey)
		if len(members) > 0 {
			pipe.ZAdd(ctx, LeaderboardPointsKey, members...)
		}
		return nil
	})
	return err
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) SetPoints(context.Context, string, int) error { return nil }
func (Noop) Remove(context.Context, string) error { return nil }
func (Noop) Top(context.Context, int64) ([]Entry, error) { return nil, ErrUnavailable }
func (Noop) Rank(context.Context, string) (int64, error) { return 0, ErrUnavailable }
func (Noop) Rebuild(context.Context, map[string]int) error { return nil }
