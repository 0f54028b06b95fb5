package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b"}, "b"))
	require.Equal(t, -1, FindIndex([]string{"a", "b"}, "c"))
	require.True(t, Contains([]int{1, 2, 3}, 3))
}

func TestAbsAndSum(t *testing.T) {
	require.Equal(t, 3, Abs(-3))
	require.Equal(t, int64(4), Abs(int64(4)))
	require.Equal(t, 6, Sum([]int{1, 2, 3}))
	require.InDelta(t, 1.5, Sum([]float64{0.5, 1}), 1e-9)
}

func TestArgMax(t *testing.T) {
	length := func(s string) int { return len(s) }
	require.Equal(t, 1, ArgMax([]string{"a", "ccc", "bbb"}, length))
	require.Equal(t, -1, ArgMax(nil, length))
	require.True(t, ContainsFunc([]int{1, 4}, func(v int) bool { return v > 3 }))
	require.False(t, ContainsFunc([]int{1, 2}, func(v int) bool { return v > 3 }))
}
