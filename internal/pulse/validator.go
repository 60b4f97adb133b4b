package pulse

// Valid reports whether the window looks like a contact-present pulsatile
// signal. Both the window-wide raw range check and the stricter check on
// the window maximum are applied.
func Valid(samples []int, p Params) bool {
	if len(samples) < p.MinSamples {
		return false
	}

	s := Summarize(samples)
	if s.Min < p.MinRaw || s.Max > p.MaxRaw {
		return false
	}

	return s.PeakToPeak > p.MinAmplitude && s.PeakToPeak < p.MaxAmplitude &&
		s.StdDev > p.MinStdDev && s.StdDev < p.MaxStdDev &&
		s.Max > p.MinSignalMax && s.Max < p.MaxRaw
}
