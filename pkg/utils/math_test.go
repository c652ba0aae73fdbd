package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	NormalizeL2(x)
	if math.Abs(float64(x[0])-0.6) > 1e-6 || math.Abs(float64(x[1])-0.8) > 1e-6 {
		t.Errorf("got %v", x)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should be unchanged, got %v", zero)
	}
}

func TestMeanPool(t *testing.T) {
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	got := MeanPool(hidden, []int64{1, 1, 0}, 3, 2)
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("masked mean = %v, want [2 3]", got)
	}

	all := MeanPool(hidden[:4], []int64{0, 0}, 2, 2)
	if all[0] != 2 || all[1] != 3 {
		t.Errorf("all-zero mask should average every row, got %v", all)
	}

	short := MeanPool([]float32{1}, nil, 2, 2)
	if len(short) != 2 || short[0] != 0 {
		t.Errorf("short input should yield zeros, got %v", short)
	}
}

func TestFirstRow(t *testing.T) {
	got := FirstRow([]float32{7, 8, 9, 10}, 2)
	if got[0] != 7 || got[1] != 8 {
		t.Errorf("got %v", got)
	}
}
