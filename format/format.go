package format

import (
	"fmt"
	"time"
)

// HumanNumber abbreviates token and merge counts: 1200 becomes 1.20K.
func HumanNumber(n int) string {
	const (
		Thousand = 1000
		Million  = Thousand * 1000
		Billion  = Million * 1000
	)

	switch {
	case n >= Billion:
		return decimalPlace(float64(n)/Billion) + "B"
	case n >= Million:
		return decimalPlace(float64(n)/Million) + "M"
	case n >= Thousand:
		return decimalPlace(float64(n)/Thousand) + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func decimalPlace(number float64) string {
	switch {
	case number >= 100:
		return fmt.Sprintf("%.0f", number)
	case number >= 10:
		return fmt.Sprintf("%.1f", number)
	default:
		return fmt.Sprintf("%.2f", number)
	}
}

// Ratio reports how many input bytes each token covers on average.
func Ratio(bytes, tokens int) string {
	if tokens == 0 {
		return "n/a"
	}

	return fmt.Sprintf("%.2fX", float64(bytes)/float64(tokens))
}

// Elapsed limits a duration to two units, rounding to milliseconds below a
// minute and to seconds above.
func Elapsed(d time.Duration) string {
	switch {
	case d >= 100*time.Hour:
		return "99h+"
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
