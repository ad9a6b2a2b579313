// Package format renders byte counts and durations for display.
package format

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Bytes renders a byte count using 1024-based units with two decimals.
// Negative counts render as "0.00 B".
func Bytes(size int64) string {
	if size < 0 {
		return "0.00 B"
	}
	value := float64(size)
	for _, unit := range byteUnits {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f EB", value)
}

// Duration renders a number of seconds as MM:SS, switching to HH:MM:SS
// from one hour up. Negative values mean "unknown" and render as "--:--".
func Duration(seconds int64) string {
	if seconds < 0 {
		return "--:--"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
