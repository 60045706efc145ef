package sgtree

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, options ...Option) *Tree[int, string] {
	t.Helper()

	tree, err := New[int, string](options...)
	require.NoError(t, err, "Failed to create tree")
	return tree
}

// verify checks every structural invariant of tree.
func verify[K comparable, V any](t *testing.T, tree *Tree[K, V]) {
	t.Helper()

	require.NoError(t, tree.Verify())
	keys := tree.Keys()
	require.Len(t, keys, tree.Len())
	require.True(t, slices.IsSortedFunc(keys, tree.compare), "inorder keys out of order")
}

func insertAll(t *testing.T, tree *Tree[int, string], keys ...int) {
	t.Helper()

	for _, k := range keys {
		require.NoError(t, tree.Insert(k, fmt.Sprintf("v%d", k)), "Failed to insert key %d", k)
	}
}

func seq(lo, hi int) []int {
	keys := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		keys = append(keys, i)
	}
	return keys
}

// Construction Tests

func TestNewRejectsInvalidAlpha(t *testing.T) {
	t.Parallel()

	for _, alpha := range []float64{0, 0.49, 1, 1.5, -0.7, math.NaN()} {
		_, err := New[int, string](WithAlpha(alpha))
		assert.ErrorIs(t, err, ErrInvalidAlpha, "alpha %v", alpha)
	}

	for _, alpha := range []float64{0.5, 0.6, DefaultAlpha, 0.99} {
		tree, err := New[int, string](WithAlpha(alpha))
		require.NoError(t, err, "alpha %v", alpha)
		assert.Equal(t, alpha, tree.Alpha())
	}
}

func TestNewRejectsNegativeCache(t *testing.T) {
	t.Parallel()

	_, err := New[int, string](WithSearchCache(-1))
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestNewFuncRequiresComparator(t *testing.T) {
	t.Parallel()

	_, err := NewFunc[string, int](nil, nil)
	assert.Error(t, err)
}

// Basic Operations Tests

func TestTreeBasicOps(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	assert.True(t, tree.Empty())

	require.NoError(t, tree.Insert(10, "ten"))
	require.NoError(t, tree.Insert(20, "twenty"))
	require.NoError(t, tree.Insert(5, "five"))
	verify(t, tree)

	val, err := tree.Get(10)
	require.NoError(t, err)
	assert.Equal(t, "ten", val)

	assert.True(t, tree.Has(5))
	assert.False(t, tree.Has(15))

	_, err = tree.Get(15)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.Equal(t, 3, tree.Len())
	assert.False(t, tree.Empty())
}

func TestInsertRejectsDuplicate(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	require.NoError(t, tree.Insert(7, "first"))

	err := tree.Insert(7, "second")
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Existing value is kept
	val, err := tree.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "first", val)
	assert.Equal(t, 1, tree.Len())
}

func TestDeleteCases(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, 10, 20, 5, 15, 25)

	// Leaf
	v, err := tree.Delete(25)
	require.NoError(t, err)
	assert.Equal(t, "v25", v)
	assert.False(t, tree.Has(25))
	verify(t, tree)

	// One child
	_, err = tree.Delete(20)
	require.NoError(t, err)
	assert.False(t, tree.Has(20))
	assert.True(t, tree.Has(15))
	verify(t, tree)

	// Two children
	insertAll(t, tree, 20, 25)
	_, err = tree.Delete(10)
	require.NoError(t, err)
	verify(t, tree)
	assert.Equal(t, []int{5, 15, 20, 25}, tree.Keys())
}

func TestDeleteMissingLeavesTreeUnchanged(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, 3, 1, 4, 5, 9, 2, 6)
	before := tree.Keys()

	_, err := tree.Delete(42)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, before, tree.Keys())
	verify(t, tree)
}

func TestDeleteAll(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, seq(1, 100)...)

	for _, k := range seq(1, 100) {
		_, err := tree.Delete(k)
		require.NoError(t, err)
		verify(t, tree)
	}
	assert.True(t, tree.Empty())
	assert.Equal(t, 0, tree.Stats().MaxCount)

	_, err := tree.Min()
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestMinMax(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	_, err := tree.Min()
	assert.ErrorIs(t, err, ErrEmptyTree)
	_, err = tree.Max()
	assert.ErrorIs(t, err, ErrEmptyTree)

	insertAll(t, tree, 50, 30, 70, 20, 80)

	lo, err := tree.Min()
	require.NoError(t, err)
	assert.Equal(t, 20, lo)

	hi, err := tree.Max()
	require.NoError(t, err)
	assert.Equal(t, 80, hi)
}

func TestClear(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, seq(1, 20)...)

	tree.Clear()
	assert.True(t, tree.Empty())
	assert.Empty(t, tree.Keys())
	verify(t, tree)

	// Usable afterwards
	insertAll(t, tree, 1, 2)
	assert.Equal(t, []int{1, 2}, tree.Keys())
}

// Rebuild Tests

func TestSequentialInsertTriggersRebuild(t *testing.T) {
	t.Parallel()

	tree := setup(t, WithAlpha(0.5))
	insertAll(t, tree, seq(1, 7)...)
	verify(t, tree)

	stats := tree.Stats()
	assert.GreaterOrEqual(t, stats.Rebuilds, 1, "sorted inserts should trigger a rebuild")

	bound := int(math.Ceil(math.Log2(7)))
	assert.LessOrEqual(t, tree.Height(), bound+2)
	assert.Equal(t, seq(1, 7), tree.Keys())
}

func TestSequentialInsertStaysLogarithmic(t *testing.T) {
	t.Parallel()

	for _, alpha := range []float64{0.5, 0.6, DefaultAlpha, 0.75, 0.9} {
		tree := setup(t, WithAlpha(alpha))
		const n = 2000
		insertAll(t, tree, seq(1, n)...)
		verify(t, tree)

		// Depth never exceeds floor(log_{1/alpha} n) after each insert
		depthLimit := math.Log(n)/math.Log(1/alpha) + 1
		assert.LessOrEqual(t, float64(tree.Height()-1), depthLimit, "alpha %v", alpha)
		assert.True(t, tree.Stats().Balanced, "alpha %v: %v", alpha, tree.Stats())
	}
}

func TestRandomWorkloadKeepsInvariants(t *testing.T) {
	t.Parallel()

	// Deterministic seed for reproducibility
	rng := rand.New(rand.NewPCG(42, 1024))
	tree := setup(t)
	shadow := make(map[int]string)

	for i := 0; i < 5000; i++ {
		k := rng.IntN(500)
		if rng.IntN(3) == 0 {
			_, err := tree.Delete(k)
			if _, ok := shadow[k]; ok {
				require.NoError(t, err)
				delete(shadow, k)
			} else {
				require.ErrorIs(t, err, ErrKeyNotFound)
			}
		} else {
			err := tree.Insert(k, fmt.Sprintf("v%d", k))
			if _, ok := shadow[k]; ok {
				require.ErrorIs(t, err, ErrDuplicateKey)
			} else {
				require.NoError(t, err)
				shadow[k] = fmt.Sprintf("v%d", k)
			}
		}
		if i%250 == 0 {
			verify(t, tree)
		}
	}

	verify(t, tree)
	require.Equal(t, len(shadow), tree.Len())
	for k, want := range shadow {
		got, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDeletionsTriggerFullRebuild(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, seq(1, 90)...)
	before := tree.Stats().Rebuilds

	// Shrinking below alpha*maxCount forces a full rebuild
	for _, k := range seq(1, 40) {
		_, err := tree.Delete(k)
		require.NoError(t, err)
	}
	verify(t, tree)

	stats := tree.Stats()
	assert.Greater(t, stats.Rebuilds, before)
	assert.LessOrEqual(t, float64(stats.Count), float64(stats.MaxCount))
	assert.GreaterOrEqual(t, float64(stats.Count), DefaultAlpha*float64(stats.MaxCount))
}

func TestBalanceIsIdempotentOnContent(t *testing.T) {
	t.Parallel()

	tree := setup(t, WithAlpha(0.9))
	insertAll(t, tree, seq(1, 200)...)

	tree.Balance()
	once := tree.Keys()
	assert.True(t, tree.WeightBalanced())
	verify(t, tree)

	tree.Balance()
	assert.Equal(t, once, tree.Keys())
	assert.True(t, tree.WeightBalanced())
	assert.Equal(t, int(math.Floor(math.Log2(200)))+1, tree.Height())
}

func TestRebuiltTreeIsWeightBalancedForAnyAlpha(t *testing.T) {
	t.Parallel()

	for _, alpha := range []float64{0.5, 0.55, DefaultAlpha, 0.8} {
		for _, n := range []int{1, 2, 3, 4, 7, 8, 100, 1023} {
			tree := setup(t, WithAlpha(alpha))
			insertAll(t, tree, seq(1, n)...)
			tree.Balance()
			assert.True(t, tree.WeightBalanced(), "alpha %v n %d", alpha, n)
		}
	}
}

func TestTriggeredRebuildsAreWeightBalanced(t *testing.T) {
	t.Parallel()

	const n = 1000
	descending := seq(0, n-1)
	slices.Reverse(descending)

	workloads := []struct {
		name string
		keys func(rng *rand.Rand) []int
	}{
		{"ascending", func(*rand.Rand) []int { return seq(0, n-1) }},
		{"descending", func(*rand.Rand) []int { return descending }},
		{"random", func(rng *rand.Rand) []int { return rng.Perm(n) }},
	}

	for _, alpha := range []float64{0.5, DefaultAlpha, 0.8} {
		for _, w := range workloads {
			tree := setup(t, WithAlpha(alpha))

			// Check each rebuilt region the moment it is linked in
			rebuilds := 0
			tree.rebuilt = func(root *node[int, string]) {
				rebuilds++
				assert.True(t, tree.weightBalanced(root),
					"alpha %v %s: rebuilt subtree of size %d", alpha, w.name, sizeOf(root))
			}

			rng := rand.New(rand.NewPCG(3, 5))
			insertAll(t, tree, w.keys(rng)...)
			if w.name != "random" {
				// Sorted input always outgrows the depth bound
				assert.Positive(t, rebuilds, "alpha %v %s: no insert-triggered rebuild", alpha, w.name)
			}

			// Shrinking the tree triggers full rebuilds too
			afterInserts := rebuilds
			for _, k := range rng.Perm(n)[:n*3/4] {
				_, err := tree.Delete(k)
				require.NoError(t, err)
			}
			assert.Greater(t, rebuilds, afterInserts, "alpha %v %s: no delete-triggered rebuild", alpha, w.name)
			verify(t, tree)
		}
	}
}

// Custom Order Tests

func TestNewFuncCustomOrderAndWeight(t *testing.T) {
	t.Parallel()

	// Case-insensitive keys, weighted by value
	tree, err := NewFunc[string, int](func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}, func(_ string, v int) float64 {
		return float64(v)
	})
	require.NoError(t, err)

	require.NoError(t, tree.Insert("banana", 3))
	require.NoError(t, tree.Insert("Apple", 5))
	require.NoError(t, tree.Insert("cherry", 7))
	assert.ErrorIs(t, tree.Insert("APPLE", 1), ErrDuplicateKey)
	verify(t, tree)

	assert.Equal(t, []string{"Apple", "banana", "cherry"}, tree.Keys())

	sum, err := tree.SumInRange("a", "BZ")
	require.NoError(t, err)
	assert.Equal(t, 8.0, sum)
	assert.Equal(t, 15.0, tree.Sum())
}

func TestNilWeightSumsToZero(t *testing.T) {
	t.Parallel()

	tree, err := NewFunc[string, string](strings.Compare, nil)
	require.NoError(t, err)
	require.NoError(t, tree.Insert("a", "x"))

	sum, err := tree.SumInRange("a", "z")
	require.NoError(t, err)
	assert.Zero(t, sum)
}

// Search Cache Tests

func TestSearchCacheStaysCoherent(t *testing.T) {
	t.Parallel()

	tree := setup(t, WithSearchCache(64))
	insertAll(t, tree, seq(1, 50)...)

	for _, k := range seq(1, 50) {
		v, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("v%d", k), v)
	}
	assert.Positive(t, tree.cache.Len())

	_, _ = tree.Get(1)
	stats := tree.Stats()
	assert.Equal(t, uint64(50), stats.CacheMisses)
	assert.Equal(t, uint64(1), stats.CacheHits)

	// Delete then reinsert with a new value; the cache must not serve the old one
	_, err := tree.Delete(7)
	require.NoError(t, err)
	_, err = tree.Get(7)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, tree.Insert(7, "seven"))
	v, err := tree.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "seven", v)

	tree.BatchDelete([]int{8})
	_, err = tree.Get(8)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	tree.Clear()
	_, err = tree.Get(1)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDerivedTreesKeepSearchCache(t *testing.T) {
	t.Parallel()

	tree := setup(t, WithSearchCache(32))
	insertAll(t, tree, seq(1, 10)...)
	other := setup(t)
	insertAll(t, other, 11)

	merged, _ := tree.Merge(other)
	lower, upper := tree.Split(5)
	for _, derived := range []*Tree[int, string]{merged, lower, upper} {
		require.NotNil(t, derived.cache)

		k, err := derived.Min()
		require.NoError(t, err)
		_, err = derived.Get(k)
		require.NoError(t, err)
		_, err = derived.Get(k)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), derived.Stats().CacheHits)
	}
}

// Verify Tests

func TestVerifyDetectsCorruption(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	insertAll(t, tree, 2, 1, 3)
	require.NoError(t, tree.Verify())

	tree.root.size = 10
	assert.ErrorIs(t, tree.Verify(), ErrCorruption)

	tree.update(tree.root)
	require.NoError(t, tree.Verify())

	tree.root.left.key = 5
	assert.ErrorIs(t, tree.Verify(), ErrCorruption)
}

func TestStatsString(t *testing.T) {
	t.Parallel()

	tree := setup(t)
	assert.Equal(t, "empty tree", tree.Stats().String())

	insertAll(t, tree, seq(1, 10)...)
	s := tree.Stats().String()
	assert.Contains(t, s, "count=10")
	assert.Contains(t, s, "balanced")
}
