package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
)

func sequentialData(n, numFeatures int) ([]float32, []int32) {
	features := make([]float32, n*numFeatures)
	labels := make([]int32, n)
	for i := 0; i < n; i++ {
		labels[i] = int32(i)
		for j := 0; j < numFeatures; j++ {
			features[i*numFeatures+j] = float32(i)
		}
	}
	return features, labels
}

func TestNewLoaderValidation(t *testing.T) {
	b := cpu.New()
	features, labels := sequentialData(4, 2)

	_, err := NewLoader(b, features, labels, 0, 2, false, 0)
	assert.Error(t, err, "zero features")

	_, err = NewLoader(b, features, labels, 2, 0, false, 0)
	assert.Error(t, err, "zero batch size")

	_, err = NewLoader(b, features, labels, 3, 2, false, 0)
	assert.Error(t, err, "feature count does not divide")

	_, err = NewLoader(b, features, labels[:3], 2, 2, false, 0)
	assert.Error(t, err, "label count mismatch")
}

func TestLoaderBatchesIncludeFinalPartial(t *testing.T) {
	b := cpu.New()
	features, labels := sequentialData(5, 2)
	l, err := NewLoader(b, features, labels, 2, 2, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Len())
	assert.Equal(t, 2, l.NumFeatures())

	var sizes []int
	var seen []int32
	for {
		x, y, ok := l.Next()
		if !ok {
			break
		}
		shape := x.Shape()
		sizes = append(sizes, shape[0])
		assert.Equal(t, 2, shape[1])
		seen = append(seen, y.Data()...)
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, seen)
}

func TestLoaderUnshuffledPreservesOrder(t *testing.T) {
	b := cpu.New()
	features, labels := sequentialData(4, 3)
	l, err := NewLoader(b, features, labels, 3, 4, false, 0)
	require.NoError(t, err)

	x, y, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, []int32{0, 1, 2, 3}, y.Data())
	// Each row carries its example index in every feature slot.
	assert.Equal(t, []float32{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3}, x.Data())

	_, _, ok = l.Next()
	assert.False(t, ok)
}

func TestLoaderResetRestartsPass(t *testing.T) {
	b := cpu.New()
	features, labels := sequentialData(3, 1)
	l, err := NewLoader(b, features, labels, 1, 3, false, 0)
	require.NoError(t, err)

	_, _, ok := l.Next()
	require.True(t, ok)
	_, _, ok = l.Next()
	require.False(t, ok)

	l.Reset()
	_, y, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, []int32{0, 1, 2}, y.Data())
}

func drainLabels(t *testing.T, l *Loader[*cpu.Backend]) []int32 {
	t.Helper()
	var out []int32
	for {
		_, y, ok := l.Next()
		if !ok {
			return out
		}
		out = append(out, y.Data()...)
	}
}

func TestLoaderShuffleIsSeedDeterministic(t *testing.T) {
	features, labels := sequentialData(16, 1)

	l1, err := NewLoader(cpu.New(), features, labels, 1, 4, true, 11)
	require.NoError(t, err)
	l2, err := NewLoader(cpu.New(), features, labels, 1, 4, true, 11)
	require.NoError(t, err)

	order1 := drainLabels(t, l1)
	order2 := drainLabels(t, l2)
	assert.Equal(t, order1, order2)

	// Every example appears exactly once per pass.
	assert.Len(t, order1, 16)
	seen := make(map[int32]bool)
	for _, v := range order1 {
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestLoaderShuffleKeepsRowsWithLabels(t *testing.T) {
	features, labels := sequentialData(8, 2)
	l, err := NewLoader(cpu.New(), features, labels, 2, 3, true, 5)
	require.NoError(t, err)

	for {
		x, y, ok := l.Next()
		if !ok {
			break
		}
		xd, yd := x.Data(), y.Data()
		for i, label := range yd {
			assert.Equal(t, float32(label), xd[i*2])
			assert.Equal(t, float32(label), xd[i*2+1])
		}
	}
}

func TestLoaderReshufflesBetweenPasses(t *testing.T) {
	features, labels := sequentialData(32, 1)
	l, err := NewLoader(cpu.New(), features, labels, 1, 32, true, 3)
	require.NoError(t, err)

	first := append([]int32(nil), drainLabels(t, l)...)
	l.Reset()
	second := drainLabels(t, l)
	// 32! orderings make a repeat effectively impossible.
	assert.NotEqual(t, first, second)
}
