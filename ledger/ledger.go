// Package ledger persists boss defeats in Redis: which bosses are down,
// how often, and the fastest clear. It only ever sees the final outcome
// of a fight.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/milk9111/robotmasters/config"
)

var ErrBossRequired = errors.New("ledger: boss name is required")

// Record is the stored outcome history of one boss.
type Record struct {
	Boss         string
	Defeats      int64
	BestSeconds  float64 // 0 when never defeated
	LastDefeat   time.Time
	PlayerHealth int // player health left at the last defeat
}

// Defeat is one finished fight.
type Defeat struct {
	Boss         string
	Seconds      float64
	PlayerHealth int
}

type Ledger struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// bestTime keeps the lower of the stored and submitted clear times.
var bestTime = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "best")
if cur == false or tonumber(ARGV[1]) < tonumber(cur) then
  redis.call("HSET", KEYS[1], "best", ARGV[1])
  return 1
end
return 0
`)

func New(client redis.Cmdable, prefix string) *Ledger {
	if prefix == "" {
		prefix = "robotmasters"
	}
	return &Ledger{client: client, prefix: prefix, now: time.Now}
}

// Dial connects to the configured Redis and checks it answers.
func Dial(ctx context.Context, cfg config.LedgerConfig) (*Ledger, *redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil, errors.New("ledger: addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ledger: ping %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.Prefix), client, nil
}

func (l *Ledger) bossKey(boss string) string {
	return l.prefix + ":boss:" + boss
}

func (l *Ledger) defeatedKey() string {
	return l.prefix + ":defeated"
}

func (l *Ledger) fastestKey() string {
	return l.prefix + ":fastest"
}

// RecordDefeat stores one boss defeat and reports whether it set a new
// best time.
func (l *Ledger) RecordDefeat(ctx context.Context, d Defeat) (bool, error) {
	if d.Boss == "" {
		return false, ErrBossRequired
	}
	key := l.bossKey(d.Boss)

	pipe := l.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "defeats", 1)
	pipe.HSet(ctx, key, "last", l.now().Unix(), "health", d.PlayerHealth)
	pipe.SAdd(ctx, l.defeatedKey(), d.Boss)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ledger: record %s: %w", d.Boss, err)
	}

	if d.Seconds <= 0 {
		return false, nil
	}
	improved, err := bestTime.Run(ctx, l.client, []string{key}, strconv.FormatFloat(d.Seconds, 'f', -1, 64)).Int()
	if err != nil {
		return false, fmt.Errorf("ledger: best time %s: %w", d.Boss, err)
	}
	if improved == 1 {
		if err := l.client.ZAdd(ctx, l.fastestKey(), redis.Z{Score: d.Seconds, Member: d.Boss}).Err(); err != nil {
			return true, fmt.Errorf("ledger: fastest %s: %w", d.Boss, err)
		}
	}
	return improved == 1, nil
}

// Get returns the record for boss; a boss never defeated has a zero
// record.
func (l *Ledger) Get(ctx context.Context, boss string) (Record, error) {
	if boss == "" {
		return Record{}, ErrBossRequired
	}
	fields, err := l.client.HGetAll(ctx, l.bossKey(boss)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("ledger: get %s: %w", boss, err)
	}
	rec := Record{Boss: boss}
	if v, ok := fields["defeats"]; ok {
		rec.Defeats, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["best"]; ok {
		rec.BestSeconds, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := fields["last"]; ok {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.LastDefeat = time.Unix(unix, 0)
		}
	}
	if v, ok := fields["health"]; ok {
		rec.PlayerHealth, _ = strconv.Atoi(v)
	}
	return rec, nil
}

// Defeated lists every boss defeated at least once, sorted.
func (l *Ledger) Defeated(ctx context.Context) ([]string, error) {
	names, err := l.client.SMembers(ctx, l.defeatedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: defeated: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Fastest lists up to n bosses by best clear time.
func (l *Ledger) Fastest(ctx context.Context, n int64) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := l.client.ZRangeWithScores(ctx, l.fastestKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: fastest: %w", err)
	}
	out := make([]Record, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, Record{Boss: name, BestSeconds: z.Score})
	}
	return out, nil
}

// Reset forgets the given bosses.
func (l *Ledger) Reset(ctx context.Context, bosses ...string) error {
	if len(bosses) == 0 {
		return nil
	}
	keys := make([]string, 0, len(bosses))
	members := make([]any, 0, len(bosses))
	for _, b := range bosses {
		keys = append(keys, l.bossKey(b))
		members = append(members, b)
	}
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.SRem(ctx, l.defeatedKey(), members...)
	pipe.ZRem(ctx, l.fastestKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ledger: reset: %w", err)
	}
	return nil
}
