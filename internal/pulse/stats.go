package pulse

import "math"

// Stats summarizes a window of raw samples
type Stats struct {
	Min        int
	Max        int
	PeakToPeak float64
	Mean       float64
	StdDev     float64
}

// Summarize computes min, max, peak-to-peak, mean and population standard
// deviation. An empty window yields the zero Stats.
func Summarize(samples []int) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	s := Stats{Min: samples[0], Max: samples[0]}
	sum := 0.0
	for _, v := range samples {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
	}

	n := float64(len(samples))
	s.Mean = sum / n
	s.PeakToPeak = float64(s.Max - s.Min)

	variance := 0.0
	for _, v := range samples {
		d := float64(v) - s.Mean
		variance += d * d
	}
	s.StdDev = math.Sqrt(variance / n)

	return s
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}

	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	for _, x := range xs {
		d := x - mean
		std += d * d
	}

	return mean, math.Sqrt(std / float64(len(xs)))
}

func peakToPeak(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	return hi - lo
}
