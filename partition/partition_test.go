package partition

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDivide(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		n     int
		want  [][]int
	}{
		{
			name:  "even split",
			items: []int{1, 2, 3, 4, 5, 6},
			n:     3,
			want:  [][]int{{1, 2}, {3, 4}, {5, 6}},
		},
		{
			name:  "remainder drained from last chunk",
			items: []int{0, 500, 1000, 1500, 2000, 2500, 3000, 3500, 4000, 4500, 5000, 5500, 6000, 6500, 7000, 7500},
			n:     5,
			want: [][]int{
				{0, 500, 1000, 7500},
				{1500, 2000, 2500},
				{3000, 3500, 4000},
				{4500, 5000, 5500},
				{6000, 6500, 7000},
			},
		},
		{
			name:  "fewer items than workers",
			items: []int{1, 2, 3},
			n:     5,
			want:  [][]int{{3}, {2}, {1}, {}, {}},
		},
		{
			name:  "empty input",
			items: nil,
			n:     2,
			want:  [][]int{{}, {}},
		},
		{
			name:  "single worker",
			items: []int{4, 2, 9},
			n:     1,
			want:  [][]int{{4, 2, 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Divide(tt.items, tt.n)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Divide() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDivideBalanceAndMultiset(t *testing.T) {
	for n := 0; n <= 40; n++ {
		items := make([]int, n)
		for i := range items {
			items[i] = i % 7
		}
		for w := 1; w <= n; w++ {
			chunks, err := Divide(items, w)
			require.NoError(t, err)
			require.Len(t, chunks, w)

			minSize, maxSize := len(items), 0
			var joined []int
			for _, c := range chunks {
				minSize = min(minSize, len(c))
				maxSize = max(maxSize, len(c))
				joined = append(joined, c...)
			}
			require.LessOrEqual(t, maxSize-minSize, 1, "N=%d W=%d", n, w)

			want := slices.Clone(items)
			slices.Sort(want)
			slices.Sort(joined)
			require.Equal(t, want, joined, "N=%d W=%d", n, w)
		}
	}
}

func TestDivideDoesNotMutateInput(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	chunks, err := Divide(items, 2)
	require.NoError(t, err)
	chunks[0][0] = 99
	require.Equal(t, []int{1, 2, 3, 4, 5}, items)
}

func TestDivideNoWorkers(t *testing.T) {
	_, err := Divide([]int{1}, 0)
	require.ErrorIs(t, err, ErrNoWorkers)
}

func TestShard(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, err := Shard(items, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, got)

	_, err = Shard(items, 2, 2)
	require.Error(t, err)
	_, err = Shard(items, -1, 2)
	require.Error(t, err)
}

func TestShuffleIsSeeded(t *testing.T) {
	items := []int{0, 500, 1000, 1500, 2000, 2500, 3000, 3500}
	a := Shuffle(items, 42)
	b := Shuffle(items, 42)
	require.Equal(t, a, b)
	require.ElementsMatch(t, items, a)
	require.Equal(t, []int{0, 500, 1000, 1500, 2000, 2500, 3000, 3500}, items)
}
