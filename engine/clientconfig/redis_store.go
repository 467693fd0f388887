package clientconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/floworx/floworx/engine/infra/cache"
)

const defaultRedisHistoryMax = 1000

// casScript swaps the stored version hash only when its version matches
// ARGV[1] and pushes the history entry in the same step. An absent hash is
// treated as InitialVersion.
const casScript = `
local cur = tonumber(redis.call('HGET', KEYS[1], 'version') or ARGV[7])
local expected = tonumber(ARGV[1])
if cur ~= expected then
  return {0, cur}
end
local nextv = expected + 1
redis.call('HSET', KEYS[1], 'version', nextv, 'data', ARGV[2], 'updated_at', ARGV[3], 'updated_by', ARGV[4])
redis.call('LPUSH', KEYS[2], ARGV[5])
redis.call('LTRIM', KEYS[2], 0, tonumber(ARGV[6]) - 1)
return {1, nextv}
`

// RedisStore keeps the current version in a hash and past versions in a capped list.
type RedisStore struct {
	r          cache.RedisInterface
	prefix     string
	historyMax int
	closed     atomic.Bool
}

// RedisStoreOption configures RedisStore.
type RedisStoreOption func(*RedisStore)

// WithPrefix sets a custom key prefix (default "floworx").
func WithPrefix(p string) RedisStoreOption {
	return func(s *RedisStore) {
		if p != "" {
			s.prefix = p
		}
	}
}

// WithHistoryMax caps how many past versions are retained per client.
func WithHistoryMax(n int) RedisStoreOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.historyMax = n
		}
	}
}

// NewRedisStore keeps each configuration in a hash and its history in a capped list.
func NewRedisStore(client cache.RedisInterface, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{r: client, prefix: "floworx", historyMax: defaultRedisHistoryMax}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RedisStore) key(clientID string) string {
	return s.prefix + ":clientcfg:" + clientID
}

func (s *RedisStore) historyKey(clientID string) string {
	return s.key(clientID) + ":history"
}

func (s *RedisStore) Load(ctx context.Context, clientID string) (*Record, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("store is closed")
	}
	fields, err := s.r.HGetAll(ctx, s.key(clientID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, fmt.Errorf("invalid stored version for %s: %w", clientID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid stored timestamp for %s: %w", clientID, err)
	}
	return &Record{
		ClientID:  clientID,
		Version:   version,
		Data:      []byte(fields["data"]),
		UpdatedAt: updatedAt,
		UpdatedBy: fields["updated_by"],
	}, nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, rec Record, expected int) (int, error) {
	if s.closed.Load() {
		return 0, fmt.Errorf("store is closed")
	}
	rec.Version = expected + 1
	entry, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode history entry: %w", err)
	}
	res, err := s.r.Eval(
		ctx,
		casScript,
		[]string{s.key(rec.ClientID), s.historyKey(rec.ClientID)},
		expected,
		string(rec.Data),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedBy,
		string(entry),
		s.historyMax,
		InitialVersion,
	).Slice()
	if err != nil {
		return 0, err
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("unexpected compare-and-swap reply: %v", res)
	}
	ok, _ := res[0].(int64)
	version, _ := res[1].(int64)
	if ok != 1 {
		return 0, &ConflictError{ClientID: rec.ClientID, Expected: expected, Current: int(version)}
	}
	return int(version), nil
}

func (s *RedisStore) History(ctx context.Context, clientID string, limit int) ([]Record, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("store is closed")
	}
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	items, err := s.r.LRange(ctx, s.historyKey(clientID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode history entry for %s: %w", clientID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.r.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.r.Close()
}
