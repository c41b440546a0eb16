package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 5, Shape{5}.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want Shape
		ok   bool
	}{
		{"equal", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, true},
		{"bias row", Shape{4, 10}, Shape{1, 10}, Shape{4, 10}, true},
		{"scalar-ish", Shape{3, 4}, Shape{1}, Shape{3, 4}, true},
		{"rank extend", Shape{5, 2, 3}, Shape{2, 3}, Shape{5, 2, 3}, true},
		{"mismatch", Shape{2, 3}, Shape{2, 4}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := BroadcastShapes(tt.a, tt.b)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1, 3}.Validate())
}
