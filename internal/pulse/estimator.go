package pulse

import "math"

// Estimate is the estimator's result. BPM is absent whenever the window is
// too short, fails validation, has fewer than two accepted peaks or yields
// an implausible rate; the diagnostic fields tell those cases apart.
type Estimate struct {
	BPM       NullBPM
	Peaks     int
	Threshold float64
	Amplitude float64
}

// EstimateBPM derives a heart rate from a window of raw samples
func EstimateBPM(samples []int, p Params) Estimate {
	if len(samples) < p.SamplingRate {
		return Estimate{}
	}

	if !Valid(samples, p) {
		return Estimate{Amplitude: Summarize(samples).PeakToPeak}
	}

	detrended := Detrend(samples, p.MovingAverageWidth)
	normalized := Normalize(detrended)
	peaks := FindPeaks(normalized, p.PeakThreshold, p.refractorySamples())

	est := Estimate{
		Peaks:     len(peaks),
		Threshold: p.PeakThreshold,
		Amplitude: peakToPeak(detrended),
	}
	if len(peaks) < 2 {
		return est
	}

	sum := 0
	for i := 1; i < len(peaks); i++ {
		sum += peaks[i] - peaks[i-1]
	}
	meanInterval := float64(sum) / float64(len(peaks)-1)

	bpm := 60 * float64(p.SamplingRate) / meanInterval
	if bpm >= p.MinBPM && bpm <= p.MaxBPM {
		est.BPM = Some(int(math.RoundToEven(bpm)))
	}

	return est
}

// Detrend subtracts a trailing moving average of the given width from each
// sample, returning len(samples)-width+1 values aligned to the tail.
func Detrend(samples []int, width int) []float64 {
	if width <= 0 || len(samples) < width {
		return nil
	}

	out := make([]float64, len(samples)-width+1)
	sum := 0.0
	for i := 0; i < width; i++ {
		sum += float64(samples[i])
	}

	for i := range out {
		if i > 0 {
			sum += float64(samples[i+width-1] - samples[i-1])
		}
		out[i] = float64(samples[i+width-1]) - sum/float64(width)
	}

	return out
}

// Normalize z-scores xs. A constant series has no spread to scale by and
// normalizes to all zeros.
func Normalize(xs []float64) []float64 {
	mean, std := meanStd(xs)
	out := make([]float64, len(xs))
	if std == 0 {
		return out
	}

	for i, x := range xs {
		out[i] = (x - mean) / std
	}

	return out
}

// FindPeaks returns the indices above threshold, keeping only those at
// least minDistance samples after the previously accepted one.
func FindPeaks(normalized []float64, threshold float64, minDistance int) []int {
	var peaks []int
	for i, v := range normalized {
		if v <= threshold {
			continue
		}
		if len(peaks) > 0 && i-peaks[len(peaks)-1] < minDistance {
			continue
		}
		peaks = append(peaks, i)
	}

	return peaks
}

func (p Params) refractorySamples() int {
	return max(1, int(math.Round(float64(p.SamplingRate)*p.RefractoryFraction)))
}
