package mfcc

import "gonum.org/v1/gonum/stat"

// Normalize applies per-utterance cepstral mean and variance normalization
// in place: every feature column is shifted to zero mean and scaled to unit
// variance across the frames of this matrix only. Columns with zero
// variance become all zeros.
func Normalize(features [][]float32) {
	if len(features) == 0 {
		return
	}
	width := len(features[0])
	col := make([]float64, len(features))
	for m := 0; m < width; m++ {
		for t, f := range features {
			col[t] = float64(f[m])
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < 1e-10 {
			std = 1e-10
		}
		for _, f := range features {
			f[m] = float32((float64(f[m]) - mean) / std)
		}
	}
}

// Flatten converts [T][width] to a flat row-major [T*width] slice.
func Flatten(features [][]float32) []float32 {
	if len(features) == 0 {
		return nil
	}
	cols := len(features[0])
	flat := make([]float32, len(features)*cols)
	for t, row := range features {
		copy(flat[t*cols:], row)
	}
	return flat
}
