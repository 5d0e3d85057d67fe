package main

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Decay fit ranges in dB below the initial energy (ISO 3382 T30 and T20).
const (
	fitStartDB = -5.0
	t30EndDB   = -35.0
	t20EndDB   = -25.0

	decayRangeDB = -60.0
	powerToDB    = 10.0
)

var errNoDecay = errors.New("impulse response does not decay far enough to estimate RT60")

// irStats describes an impulse response.
type irStats struct {
	peak      float64
	peakIndex int
	energy    float64
	rt60      float64 // seconds, 0 when not measurable
	fitRange  float64 // dB span of the decay fit
}

// analyzeIR computes peak, energy and a reverberation time estimate.
func analyzeIR(samples []float32, sampleRate int) irStats {
	h := make([]float64, len(samples))
	for i, s := range samples {
		h[i] = float64(s)
	}

	var st irStats
	for i, v := range h {
		if a := math.Abs(v); a > st.peak {
			st.peak, st.peakIndex = a, i
		}
	}
	st.energy = floats.Dot(h, h)

	edc := energyDecayCurve(h)
	if rt60, span, err := estimateRT60(edc, sampleRate); err == nil {
		st.rt60, st.fitRange = rt60, span
	}

	return st
}

// energyDecayCurve returns the Schroeder backward-integrated energy in dB
// relative to the total energy. Silent responses yield nil.
func energyDecayCurve(h []float64) []float64 {
	edc := make([]float64, len(h))
	var acc float64
	for i := len(h) - 1; i >= 0; i-- {
		acc += h[i] * h[i]
		edc[i] = acc
	}
	if len(edc) == 0 || edc[0] == 0 {
		return nil
	}

	total := edc[0]
	for i, e := range edc {
		edc[i] = powerToDB * math.Log10(e/total)
	}
	return edc
}

// estimateRT60 fits a line to the decay curve between fitStartDB and the
// T30 end point (falling back to T20) and extrapolates it to -60 dB.
func estimateRT60(edc []float64, sampleRate int) (rt60, span float64, err error) {
	for _, end := range []float64{t30EndDB, t20EndDB} {
		var xs, ys []float64
		for i, db := range edc {
			if db > fitStartDB {
				continue
			}
			if db < end {
				break
			}
			xs = append(xs, float64(i)/float64(sampleRate))
			ys = append(ys, db)
		}
		if len(xs) < 2 || ys[len(ys)-1]-end > 1 {
			continue
		}

		_, slope := stat.LinearRegression(xs, ys, nil, false)
		if slope >= 0 {
			continue
		}
		return decayRangeDB / slope, fitStartDB - end, nil
	}
	return 0, 0, errNoDecay
}
