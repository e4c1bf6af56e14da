package estimate

import "fmt"

// FormatEstimated renders an estimated preparation time. Estimates are
// always whole minutes at least one dish's base time, so there is no
// sub-minute case.
func FormatEstimated(minutes int) string {
	return formatMinutes(minutes)
}

// FormatElapsed renders how long a table has been waiting. Unlike
// estimates, elapsed time starts below one minute.
func FormatElapsed(minutes int) string {
	if minutes < 1 {
		return "Less than 1 min"
	}
	return formatMinutes(minutes)
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dmin", h, m)
}
