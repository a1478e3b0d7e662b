// Package entropy provides quick randomness estimates for a byte window.
//
// A fixed-key XOR of a filesystem image keeps the plaintext's byte-frequency
// structure, while real encryption or compression flattens it. Running these
// tests before an exhaustive key search tells the analyst whether the window
// even looks like obfuscated structured data.
package entropy

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
)

// ErrShortInput is returned when the window is too small for a meaningful
// estimate.
var ErrShortInput = errors.New("not enough data for randomness tests")

// MinSample is the smallest window the tests accept. Below this the byte
// histogram is too sparse to say anything.
const MinSample = 256

// Shannon returns the Shannon entropy of data in bits per byte, 0 through 8.
func Shannon(data []byte) float64 {
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	var h float64
	n := float64(len(data))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// ChiSquare returns Pearson's chi-square statistic of the byte histogram
// against a uniform distribution. Uniformly random data scores near 255
// (the degrees of freedom); structured data scores far higher.
func ChiSquare(data []byte) float64 {
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	expected := float64(len(data)) / 256
	var chi float64
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// Autocorrelation computes byte-series correlations for lags 1 through
// maxLag and returns their standard deviation. Periodic structure, such as a
// short repeating XOR key over low-entropy plaintext, shows up as spread
// between lags.
func Autocorrelation(data []byte, maxLag int) (float64, error) {
	if maxLag < 1 || len(data) <= maxLag+1 {
		return 0, ErrShortInput
	}
	series := make([]float64, len(data))
	for i, b := range data {
		series[i] = float64(b)
	}
	lags := make([]float64, 0, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		corr, err := stats.Correlation(series[lag:], series[:len(series)-lag])
		if err != nil {
			return 0, err
		}
		lags = append(lags, corr)
	}
	return stats.StandardDeviation(lags)
}

// Report bundles the three estimates for one window.
type Report struct {
	Shannon    float64 `json:"shannon"`
	ChiSquare  float64 `json:"chi_square"`
	AutocorrSD float64 `json:"autocorr_sd"`
}

// Analyze runs all tests over data with the given autocorrelation lag depth.
func Analyze(data []byte, maxLag int) (Report, error) {
	if len(data) < MinSample {
		return Report{}, ErrShortInput
	}
	sd, err := Autocorrelation(data, maxLag)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Shannon:    Shannon(data),
		ChiSquare:  ChiSquare(data),
		AutocorrSD: sd,
	}, nil
}

// HighEntropy reports whether the window looks close to uniformly random.
// 7.2 bits per byte separates compressed or encrypted content from typical
// code and filesystem structures in practice.
func (r Report) HighEntropy() bool {
	return r.Shannon >= 7.2
}
