package util

import (
	"fmt"
	"math"
	"time"
)

// RoundSeconds converts a duration to seconds rounded to two decimal places.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// DurationDisplay renders a duration the way run reports show it:
// seconds below one minute, minutes above.
func DurationDisplay(d time.Duration) string {
	seconds := RoundSeconds(d)
	if seconds > 60 {
		return fmt.Sprintf("%v min", math.Round(seconds/60*100)/100)
	}
	return fmt.Sprintf("%v sec", seconds)
}

// Elapsed renders elapsed wall-clock time as "M min S sec" for progress lines.
func Elapsed(d time.Duration) string {
	seconds := RoundSeconds(d)
	minutes := int(seconds / 60)
	remainder := math.Round((seconds-float64(minutes)*60)*100) / 100
	return fmt.Sprintf("%d min %v sec", minutes, remainder)
}
