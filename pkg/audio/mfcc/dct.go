package mfcc

import "math"

// dctMatrix precomputes the orthonormal DCT-II basis truncated to the first
// numCep coefficients: out[k] = sum_j in[j] * basis[k][j].
func dctMatrix(numCep, n int) [][]float64 {
	basis := make([][]float64, numCep)
	for k := range basis {
		scale := math.Sqrt(2.0 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(n))
		}
		row := make([]float64, n)
		for j := range row {
			row[j] = scale * math.Cos(math.Pi*float64(k)*(2*float64(j)+1)/(2*float64(n)))
		}
		basis[k] = row
	}
	return basis
}

// lifter returns the sinusoidal cepstral lifter weights. A non-positive l
// disables liftering (all weights 1).
func lifter(numCep, l int) []float64 {
	w := make([]float64, numCep)
	for n := range w {
		w[n] = 1
		if l > 0 {
			w[n] += float64(l) / 2 * math.Sin(math.Pi*float64(n)/float64(l))
		}
	}
	return w
}
