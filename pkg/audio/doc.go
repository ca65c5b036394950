// Package audio groups the audio front-end used to turn recordings into
// feature matrices:
//
//   - wavfile: decode RIFF/WAVE files into mono float32 waveforms
//   - resampler: convert a waveform to the analysis sample rate
//   - mfcc: cepstral analysis and per-utterance normalization
//
// Typical use:
//
//	w, err := wavfile.ReadFile("a.wav")
//	samples, err := resampler.Resample(w.Samples, w.SampleRate, 16000)
//	e, err := mfcc.New(mfcc.DefaultConfig(16000))
//	m, err := e.Extract(samples)
//	mfcc.Normalize(m)
package audio
