package listing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Paginate(items, 2, 2)
	require.Equal(t, []int{3, 4}, page)
	require.Equal(t, Meta{Page: 2, PageSize: 2, TotalItems: 5, TotalPages: 3}, meta)

	page, meta = Paginate(items, 9, 2)
	require.Empty(t, page)
	require.Equal(t, 9, meta.Page)

	page, meta = Paginate(items, 0, 0)
	require.Len(t, page, 5)
	require.Equal(t, DefaultPageSize, meta.PageSize)
	require.Equal(t, 1, meta.TotalPages)
}

func TestPaginateHugePageIsEmpty(t *testing.T) {
	page, meta := Paginate([]int{1, 2, 3}, 92233720368547760, 100)
	require.Empty(t, page)
	require.Equal(t, 1, meta.TotalPages)
	require.Equal(t, 92233720368547760, meta.Page)
}

func TestPaginateEmpty(t *testing.T) {
	page, meta := Paginate([]string{}, 1, 10)
	require.Empty(t, page)
	require.Zero(t, meta.TotalPages)
}

func TestNormalizeCapsPageSize(t *testing.T) {
	page, size := Normalize(-1, 1000)
	require.Equal(t, 1, page)
	require.Equal(t, MaxPageSize, size)
}

func TestFilterAndSort(t *testing.T) {
	words := []string{"Physics", "biology", "Chemistry", "Combined Maths"}
	filtered := Filter(words, func(w string) bool { return MatchesSearch("Y", w) })
	require.Equal(t, []string{"Physics", "biology", "Chemistry"}, filtered)

	SortBy(words, func(a, b string) bool { return len(a) < len(b) })
	require.Equal(t, "Physics", words[0])
	require.True(t, MatchesSearch("  ", "anything"))
	require.False(t, MatchesSearch("geo", "History", "Tamil"))
}
