package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// fakeClient keeps hashes and sets in memory for the commands the repository uses.
// Calling any other command panics on the nil embedded interface.
type fakeClient struct {
	goredis.Cmdable

	mu      sync.Mutex
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	execErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		hashes: map[string]map[string]string{},
		sets:   map[string]map[string]struct{}{},
	}
}

func (c *fakeClient) HSet(_ context.Context, key string, values ...any) *goredis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	hash := c.hashes[key]
	if hash == nil {
		hash = map[string]string{}
		c.hashes[key] = hash
	}
	var added int64
	set := func(field string, value any) {
		if _, ok := hash[field]; !ok {
			added++
		}
		hash[field] = fmt.Sprint(value)
	}
	if len(values) == 1 {
		if m, ok := values[0].(map[string]any); ok {
			for field, value := range m {
				set(field, value)
			}
			return goredis.NewIntResult(added, nil)
		}
	}
	for i := 0; i+1 < len(values); i += 2 {
		set(fmt.Sprint(values[i]), values[i+1])
	}
	return goredis.NewIntResult(added, nil)
}

func (c *fakeClient) SAdd(_ context.Context, key string, members ...any) *goredis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.sets[key]
	if set == nil {
		set = map[string]struct{}{}
		c.sets[key] = set
	}
	var added int64
	for _, m := range members {
		member := fmt.Sprint(m)
		if _, ok := set[member]; !ok {
			added++
		}
		set[member] = struct{}{}
	}
	return goredis.NewIntResult(added, nil)
}

func (c *fakeClient) HGetAll(_ context.Context, key string) *goredis.MapStringStringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]string{}
	for field, value := range c.hashes[key] {
		out[field] = value
	}
	return goredis.NewMapStringStringResult(out, nil)
}

func (c *fakeClient) SMembers(_ context.Context, key string) *goredis.StringSliceCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sets[key]))
	for member := range c.sets[key] {
		out = append(out, member)
	}
	return goredis.NewStringSliceResult(out, nil)
}

// TxPipelined queues the writes and applies them only when execErr is nil.
func (c *fakeClient) TxPipelined(ctx context.Context, fn func(goredis.Pipeliner) error) ([]goredis.Cmder, error) {
	pipe := &fakePipeline{}
	if err := fn(pipe); err != nil {
		return nil, err
	}
	if c.execErr != nil {
		return nil, c.execErr
	}
	cmds := make([]goredis.Cmder, 0, len(pipe.queued))
	for _, apply := range pipe.queued {
		cmds = append(cmds, apply(ctx, c))
	}
	return cmds, nil
}

type fakePipeline struct {
	goredis.Pipeliner
	queued []func(context.Context, *fakeClient) goredis.Cmder
}

func (p *fakePipeline) HSet(_ context.Context, key string, values ...any) *goredis.IntCmd {
	p.queued = append(p.queued, func(ctx context.Context, c *fakeClient) goredis.Cmder {
		return c.HSet(ctx, key, values...)
	})
	return goredis.NewIntResult(0, nil)
}

func (p *fakePipeline) SAdd(_ context.Context, key string, members ...any) *goredis.IntCmd {
	p.queued = append(p.queued, func(ctx context.Context, c *fakeClient) goredis.Cmder {
		return c.SAdd(ctx, key, members...)
	})
	return goredis.NewIntResult(0, nil)
}
