package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	require.Equal(t, 3, TotalPages(37, 15))
	require.Equal(t, 2, TotalPages(30, 15))
	require.Equal(t, 1, TotalPages(1, 15))
	require.Equal(t, 0, TotalPages(0, 15))
	require.Equal(t, 0, TotalPages(10, 0))
}

func TestParamsNormalizeAndOffset(t *testing.T) {
	p := Params{}.Normalize()
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)

	require.Equal(t, 30, Params{Page: 3, Limit: 15}.Offset())
	require.Equal(t, MaxLimit, NormalizeLimit(500))
	require.Equal(t, 0, Params{Page: -4, Limit: 10}.Offset())
}

func TestNewInfo(t *testing.T) {
	info := NewInfo(Params{Page: 3, Limit: 15}, 37)
	require.Equal(t, Info{Page: 3, Limit: 15, Total: 37, TotalPages: 3}, info)
}
