package classify

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"vslim/internal/cache"
)

// Cached memoizes another classifier per description. Concurrent lookups of
// the same uncached batch share one call to the underlying classifier.
type Cached struct {
	next  Classifier
	cache cache.Cache[string]
	group singleflight.Group
}

func NewCached(next Classifier, c cache.Cache[string]) *Cached {
	return &Cached{next: next, cache: c}
}

func cacheKey(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

func (c *Cached) Classify(ctx context.Context, descriptions []string) ([]string, error) {
	out := make([]string, len(descriptions))
	var misses []string
	seen := make(map[string]bool)
	for i, d := range descriptions {
		k := cacheKey(d)
		if v, ok := c.cache.Get(k); ok {
			out[i] = v
			continue
		}
		if !seen[k] {
			seen[k] = true
			misses = append(misses, k)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	v, err, _ := c.group.Do(strings.Join(misses, "\x00"), func() (any, error) {
		labels, err := c.next.Classify(ctx, misses)
		if err != nil {
			return nil, err
		}
		resolved := make(map[string]string, len(misses))
		for i, k := range misses {
			resolved[k] = labels[i]
			c.cache.Set(k, labels[i])
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	resolved := v.(map[string]string)
	for i, d := range descriptions {
		if out[i] == "" {
			out[i] = resolved[cacheKey(d)]
		}
	}
	return out, nil
}
