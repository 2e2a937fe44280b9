package lang

import (
	"errors"
	"sync"
	"testing"
)

func TestParseCached(t *testing.T) {
	t.Parallel()

	const src = "cached_a + cached_b * 2"

	first, err := ParseCached(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	second, err := ParseCached(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("second lookup did not share the cached tree")
	}

	if !Equal(first, MustParse(src)) {
		t.Errorf("cached tree = %s", first)
	}

	deep, err := ParseCached(t.Context(), src, WithMaxDepth(DefaultMaxDepth+1))
	if err != nil {
		t.Fatal(err)
	}

	if deep == first {
		t.Error("options did not contribute to the cache key")
	}
}

func TestParseCached_Errors(t *testing.T) {
	t.Parallel()

	const src = "cached_error +"

	_, err1 := ParseCached(t.Context(), src)
	_, err2 := ParseCached(t.Context(), src)

	if !errors.Is(err1, ErrSyntax) || err1 != err2 {
		t.Errorf("errors not cached: %v, %v", err1, err2)
	}
}

func TestParseCached_Concurrent(t *testing.T) {
	t.Parallel()

	const src = "[cached_x for cached_x in cached_xs if cached_x]"

	var (
		wg    sync.WaitGroup
		trees [16]Expr
	)

	for i := range trees {
		wg.Go(func() {
			e, err := ParseCached(t.Context(), src)
			if err != nil {
				t.Error(err)
			}

			trees[i] = e
		})
	}

	wg.Wait()

	for i, e := range trees {
		if e != trees[0] {
			t.Errorf("goroutine %d got a distinct tree", i)
		}
	}
}

func TestClearCache(t *testing.T) {
	const src = "cleared + 1"

	before, err := ParseCached(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	ClearCache()

	after, err := ParseCached(t.Context(), src)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("ClearCache kept the cached tree")
	}
}
