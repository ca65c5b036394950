package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/speechbatch/pkg/errs"
)

// Resample converts mono samples recorded at srcRate to dstRate. When the
// rates are equal a copy of samples is returned. Output samples are clamped
// to [-1, 1].
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, errs.Config("sample rates must be positive, got %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}
	if len(samples) == 0 {
		return nil, nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}
	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush: %w", err)
	}
	output = append(output, tail...)

	out := make([]float32, len(output))
	for i, s := range output {
		switch {
		case s > 1.0:
			s = 1.0
		case s < -1.0:
			s = -1.0
		}
		out[i] = float32(s)
	}
	return out, nil
}

// OutputLen returns the nominal number of samples n input samples become
// after conversion from srcRate to dstRate.
func OutputLen(n, srcRate, dstRate int) int {
	if srcRate <= 0 {
		return 0
	}
	return int(int64(n) * int64(dstRate) / int64(srcRate))
}
