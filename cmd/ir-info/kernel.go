package main

import (
	"fmt"

	"github.com/tphakala/go-audio-reverb/internal/filter"
	"github.com/tphakala/go-audio-reverb/internal/resample"
)

const (
	// responsePoints is the frequency grid used for kernel analysis.
	responsePoints = 2048

	// passbandFraction is the share of the cutoff checked for ripple.
	passbandFraction = 0.9

	// stopbandMargin is added to the cutoff, in cycles per sample, before
	// stopband attenuation is measured.
	stopbandMargin = 0.02
)

// kernelReport summarizes the interpolation kernel for one conversion.
type kernelReport struct {
	taps         int
	phases       int
	cutoff       float64 // fraction of input Nyquist
	beta         float64
	dcGainMin    float64
	dcGainMax    float64
	rippleDB     float64 // peak-to-peak over the passband
	stopbandDB   float64 // worst case, negative
}

// analyzeKernel designs the kernel used for fromRate -> toRate and measures
// its DC gain spread, passband ripple and stopband attenuation.
func analyzeKernel(fromRate, toRate int) (*kernelReport, error) {
	table, err := filter.DesignSincTable(resample.KernelParams(fromRate, toRate))
	if err != nil {
		return nil, fmt.Errorf("designing kernel: %w", err)
	}

	r := &kernelReport{
		taps:      table.Taps,
		phases:    len(table.Phases),
		cutoff:    table.Cutoff,
		beta:      table.Beta,
		dcGainMin: 1e300,
	}

	for _, phase := range table.Phases {
		var dc float64
		for _, c := range phase {
			dc += c
		}
		r.dcGainMin = min(r.dcGainMin, dc)
		r.dcGainMax = max(r.dcGainMax, dc)
	}

	// The middle phase is the worst case for a half-sample offset.
	mid := table.Phases[len(table.Phases)/2]
	resp := filter.ComputeFrequencyResponse(mid, responsePoints)

	edge := table.Cutoff / 2
	passMin, passMax := 1e300, -1e300
	r.stopbandDB = -1e300
	for k, f := range resp.Frequencies {
		db := filter.MagnitudeDB(resp.Magnitude[k])
		switch {
		case f <= edge*passbandFraction:
			passMin = min(passMin, db)
			passMax = max(passMax, db)
		case f >= edge+stopbandMargin:
			r.stopbandDB = max(r.stopbandDB, db)
		}
	}
	r.rippleDB = passMax - passMin

	return r, nil
}

func printKernelReport(fromRate, toRate int, r *kernelReport) {
	fmt.Printf("\n=== Resampling kernel %d Hz -> %d Hz ===\n", fromRate, toRate)
	fmt.Printf("  Taps: %d, phases: %d\n", r.taps, r.phases)
	fmt.Printf("  Cutoff: %.4f of input Nyquist\n", r.cutoff)
	fmt.Printf("  Kaiser beta: %.4f\n", r.beta)
	fmt.Printf("  DC gain per phase: %.8f .. %.8f\n", r.dcGainMin, r.dcGainMax)
	fmt.Printf("  Passband ripple: %.5f dB\n", r.rippleDB)
	fmt.Printf("  Stopband: %.1f dB\n", r.stopbandDB)
}
