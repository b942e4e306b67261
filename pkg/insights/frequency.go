package insights

// MaxIntervalCV is the regularity gate: interval sets whose coefficient of
// variation exceeds it are never classified.
const MaxIntervalCV = 0.20

// frequencyRange maps an inclusive mean-interval band (in days) to a cadence.
type frequencyRange struct {
	freq     Frequency
	min, max float64
}

// frequencyRanges are tuned for real-world billing calendars. The bands are
// tunable constants, not derived figures; mean intervals outside every band
// (e.g. every 10 days) deliberately classify as unknown as a false-positive
// guard.
var frequencyRanges = []frequencyRange{
	{FrequencyWeekly, 6, 8},
	{FrequencyBiWeekly, 13, 15},
	{FrequencyMonthly, 28, 32},
	{FrequencyQuarterly, 88, 95},
	{FrequencyYearly, 360, 370},
}

// ClassifyFrequency maps a mean interval to a cadence, returning
// FrequencyUnknown when the intervals are too irregular (cv > MaxIntervalCV)
// or the mean falls outside every band.
func ClassifyFrequency(meanDays, cv float64) Frequency {
	if cv > MaxIntervalCV {
		return FrequencyUnknown
	}
	for _, r := range frequencyRanges {
		if meanDays >= r.min && meanDays <= r.max {
			return r.freq
		}
	}
	return FrequencyUnknown
}
