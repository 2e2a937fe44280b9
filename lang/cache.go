package lang

import (
	"context"
	"encoding/binary"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// parseCache holds one *cached entry per distinct (source, options) key.
var parseCache sync.Map

// cached is the memoized result of parsing one source. The once guarantees
// each source is parsed a single time even under concurrent lookups.
type cached struct {
	once   sync.Once
	source string
	expr   Expr
	err    error
}

// cacheKey combines the xxh3 hashes of the source and of the options that
// change the parse result.
func cacheKey(source string, cfg config) uint64 {
	var opts [8]byte

	binary.LittleEndian.PutUint64(opts[:], uint64(cfg.maxDepth))

	return xxh3.HashString(source) ^ xxh3.Hash(opts[:])
}

// ParseCached is like [Parse] but memoizes the result, including syntax
// errors, keyed by the xxh3 hash of text. The returned tree is shared
// between callers, which is safe because trees are immutable.
func ParseCached(ctx context.Context, text string, opts ...Option) (Expr, error) {
	cfg := makeConfig(opts...)
	key := cacheKey(text, cfg)

	entry := &cached{source: text}
	value, hit := parseCache.LoadOrStore(key, entry)

	c, ok := value.(*cached)
	if !ok || c.source != text {
		cfg.logger.TraceContext(ctx, "cache collision",
			slog.String("key", strconv.FormatUint(key, 16)))

		return Parse(ctx, text, opts...)
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", strconv.FormatUint(key, 16)),
		slog.Bool("cache_hit", hit))

	c.once.Do(func() {
		c.expr, c.err = Parse(ctx, text, opts...)
	})

	return c.expr, c.err
}

// ClearCache discards every memoized parse result.
func ClearCache() { parseCache.Clear() }
