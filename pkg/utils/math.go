package utils

import "math"

// NormalizeL2 normalizes the slice in place to unit L2 norm.
// If the norm is zero, the slice is unchanged.
func NormalizeL2(x []float32) {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := 1.0 / math.Sqrt(sum)
	for i := range x {
		x[i] = float32(float64(x[i]) * norm)
	}
}

// MeanPool averages the rows of a [seqLen x dim] hidden-state matrix, counting
// only positions whose mask entry is non-zero. An all-zero mask falls back to
// averaging every row.
func MeanPool(hidden []float32, mask []int64, seqLen, dim int) []float32 {
	out := make([]float32, dim)
	if seqLen <= 0 || dim <= 0 || len(hidden) < seqLen*dim {
		return out
	}
	sums := make([]float64, dim)
	count := 0
	for t := 0; t < seqLen; t++ {
		if t < len(mask) && mask[t] == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			sums[j] += float64(v)
		}
		count++
	}
	if count == 0 {
		for t := 0; t < seqLen; t++ {
			for j, v := range hidden[t*dim : (t+1)*dim] {
				sums[j] += float64(v)
			}
		}
		count = seqLen
	}
	for j := range out {
		out[j] = float32(sums[j] / float64(count))
	}
	return out
}

// FirstRow returns a copy of row 0 of a [seqLen x dim] matrix (CLS pooling).
func FirstRow(hidden []float32, dim int) []float32 {
	out := make([]float32, dim)
	if dim > 0 && len(hidden) >= dim {
		copy(out, hidden[:dim])
	}
	return out
}
