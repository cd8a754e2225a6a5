package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

const (
	snapshotKeyPrefix     = "studyquest:snapshot:"
	defaultSnapshotTTL    = 5 * time.Minute
	snapshotGenerationTTL = 30 * 24 * time.Hour
)

// RedisSnapshotRepository is a read-through page cache in front of the
// snapshot store. Every Replace bumps a per-season generation counter, so
// pages from an older snapshot are never served again and simply expire.
// Redis failures degrade to the underlying store.
type RedisSnapshotRepository struct {
	next   ranking.SnapshotRepository
	client redis.Cmdable
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisSnapshotRepository(next ranking.SnapshotRepository, client redis.Cmdable, ttl time.Duration, logger *logging.Logger) *RedisSnapshotRepository {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSnapshotRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedSnapshotPage struct {
	Rows  []ranking.Row `json:"rows"`
	Total int           `json:"total"`
}

func (r *RedisSnapshotRepository) ListPage(ctx context.Context, q ranking.PageQuery) ([]ranking.Row, int, error) {
	generation, ok := r.generation(ctx, q.SeasonID)
	if !ok {
		return r.next.ListPage(ctx, q)
	}

	key := snapshotPageKey(q, generation)
	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var page cachedSnapshotPage
		if err := sonic.Unmarshal(raw, &page); err == nil {
			return page.Rows, page.Total, nil
		}
		r.logger.WarnContext(ctx, "decode cached snapshot page failed", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "read cached snapshot page failed", "key", key, "error", err)
	}

	rows, total, err := r.next.ListPage(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	raw, err := sonic.Marshal(cachedSnapshotPage{Rows: rows, Total: total})
	if err != nil {
		r.logger.WarnContext(ctx, "encode snapshot page failed", "key", key, "error", err)
		return rows, total, nil
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "write cached snapshot page failed", "key", key, "error", err)
	}
	return rows, total, nil
}

func (r *RedisSnapshotRepository) Describe(ctx context.Context, seasonID string) (ranking.Snapshot, error) {
	return r.next.Describe(ctx, seasonID)
}

func (r *RedisSnapshotRepository) Replace(ctx context.Context, seasonID string, rows []ranking.Row, materializedAt time.Time) error {
	if err := r.next.Replace(ctx, seasonID, rows, materializedAt); err != nil {
		return err
	}

	key := snapshotGenerationKey(seasonID)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, snapshotGenerationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// Without a bump the old pages may be served until they expire.
		r.logger.WarnContext(ctx, "bump snapshot generation failed", "season_id", seasonID, "error", err)
	}
	return nil
}

func (r *RedisSnapshotRepository) generation(ctx context.Context, seasonID string) (int64, bool) {
	value, err := r.client.Get(ctx, snapshotGenerationKey(seasonID)).Int64()
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		r.logger.WarnContext(ctx, "read snapshot generation failed", "season_id", seasonID, "error", err)
		return 0, false
	}
}

func snapshotGenerationKey(seasonID string) string {
	return snapshotKeyPrefix + "gen:" + seasonID
}

func snapshotPageKey(q ranking.PageQuery, generation int64) string {
	var b strings.Builder
	b.WriteString(snapshotKeyPrefix)
	b.WriteString("page:")
	b.WriteString(q.SeasonID)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(generation, 10))
	b.WriteByte(':')
	b.WriteString(string(q.Scope))
	b.WriteByte(':')
	b.WriteString(string(q.League))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(q.Offset))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(q.Limit))
	return b.String()
}
