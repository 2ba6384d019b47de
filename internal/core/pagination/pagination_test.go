package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(25)

	t.Run("last partial page", func(t *testing.T) {
		p := Paginate(items, 3, 10)
		assert.Equal(t, []int{20, 21, 22, 23, 24}, p.Items)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, 25, p.TotalCount)
		assert.Equal(t, 3, p.TotalPages)
	})

	t.Run("past the end", func(t *testing.T) {
		p := Paginate(items, 4, 10)
		require.NotNil(t, p.Items)
		assert.Empty(t, p.Items)
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, 25, p.TotalCount)
	})

	t.Run("non-positive values fall back to defaults", func(t *testing.T) {
		p := Paginate(items, 0, -5)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, seq(10), p.Items)
	})

	t.Run("huge page does not overflow the offset", func(t *testing.T) {
		p := Paginate(items, 1<<62, 4)
		require.NotNil(t, p.Items)
		assert.Empty(t, p.Items)
		assert.Equal(t, 7, p.TotalPages)
		assert.Equal(t, 25, p.TotalCount)
	})

	t.Run("huge limit fits everything on the first page", func(t *testing.T) {
		p := Paginate(items, 2, math.MaxInt)
		assert.Empty(t, p.Items)
		assert.Equal(t, 1, p.TotalPages)

		p = Paginate(items, 1, math.MaxInt)
		assert.Equal(t, items, p.Items)
	})

	t.Run("empty input", func(t *testing.T) {
		p := Paginate([]int{}, 1, 10)
		assert.Empty(t, p.Items)
		assert.Equal(t, 0, p.TotalPages)
		assert.Equal(t, 0, p.TotalCount)
	})
}

func TestPaginate_WalkCoversEveryItemOnce(t *testing.T) {
	items := seq(37)
	seen := map[int]int{}
	for page := 1; page <= TotalPages(len(items), 6); page++ {
		for _, it := range Paginate(items, page, 6).Items {
			seen[it]++
		}
	}
	require.Len(t, seen, 37)
	for k, v := range seen {
		assert.Equal(t, 1, v, "item %d", k)
	}
}
