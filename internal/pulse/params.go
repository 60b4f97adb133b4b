// Package pulse holds the heart-rate core: the signal validity gate, the
// peak-based BPM estimator and the status classifier. Everything here is a
// pure function of its inputs.
package pulse

const (
	DefaultSamplingRate       = 50
	DefaultMinAmplitude       = 1000
	DefaultMaxAmplitude       = 15000
	DefaultMinStdDev          = 100
	DefaultMaxStdDev          = 5000
	DefaultMinRaw             = 100
	DefaultMaxRaw             = 20000
	DefaultMinSignalMax       = 1000
	DefaultMinSamples         = 10
	DefaultPeakThreshold      = 0.2
	DefaultMovingAverageWidth = 5
	DefaultRefractoryFraction = 0.5
	DefaultMinBPM             = 40
	DefaultMaxBPM             = 200

	// windowSeconds is the span of the analysis window
	windowSeconds = 4
)

// Params carries the sampling rate and every tunable of the validator and
// estimator.
type Params struct {
	SamplingRate int

	// Validator bounds. Amplitude and standard deviation bounds are
	// exclusive; raw bounds are inclusive.
	MinAmplitude float64
	MaxAmplitude float64
	MinStdDev    float64
	MaxStdDev    float64
	MinRaw       int
	MaxRaw       int
	MinSignalMax int
	MinSamples   int

	// Estimator tunables
	PeakThreshold      float64
	MovingAverageWidth int
	RefractoryFraction float64
	MinBPM             float64
	MaxBPM             float64
}

// DefaultParams returns the stock tuning for a sensor sampled at rate Hz.
// A non-positive rate selects DefaultSamplingRate.
func DefaultParams(rate int) Params {
	if rate <= 0 {
		rate = DefaultSamplingRate
	}

	return Params{
		SamplingRate:       rate,
		MinAmplitude:       DefaultMinAmplitude,
		MaxAmplitude:       DefaultMaxAmplitude,
		MinStdDev:          DefaultMinStdDev,
		MaxStdDev:          DefaultMaxStdDev,
		MinRaw:             DefaultMinRaw,
		MaxRaw:             DefaultMaxRaw,
		MinSignalMax:       DefaultMinSignalMax,
		MinSamples:         DefaultMinSamples,
		PeakThreshold:      DefaultPeakThreshold,
		MovingAverageWidth: DefaultMovingAverageWidth,
		RefractoryFraction: DefaultRefractoryFraction,
		MinBPM:             DefaultMinBPM,
		MaxBPM:             DefaultMaxBPM,
	}
}

// WindowSize is the number of samples kept for analysis
func (p Params) WindowSize() int {
	return p.SamplingRate * windowSeconds
}

// InRawRange reports whether a single raw sample indicates sensor contact
func (p Params) InRawRange(v int) bool {
	return v >= p.MinRaw && v <= p.MaxRaw
}
