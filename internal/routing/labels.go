package routing

// TripColors is the palette assigned to trips in creation order
var TripColors = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#bfef45", "#fabed4", "#469990",
	"#dcbeff", "#9A6324", "#fffac8", "#800000", "#aaffc3",
	"#808000", "#ffd8b1", "#000075", "#a9a9a9", "#000000",
}

// TripColor returns the palette entry for the i-th trip, wrapping around
func TripColor(i int) string {
	return TripColors[i%len(TripColors)]
}

const (
	TimeMorning   = "Morning"
	TimeMidday    = "Midday"
	TimeAfternoon = "Afternoon"
)

// TimeWindowLabel buckets an average time (minutes since midnight)
func TimeWindowLabel(avgMinutes float64) string {
	switch {
	case avgMinutes <= 600:
		return TimeMorning
	case avgMinutes <= 780:
		return TimeMidday
	default:
		return TimeAfternoon
	}
}
