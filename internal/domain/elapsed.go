package domain

import (
	"fmt"
	"time"
)

// FormatElapsed renders d as "M minutes and S seconds", truncating both.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)

	return fmt.Sprintf("%d %s and %d %s", minutes, plural(minutes, "minute"), seconds, plural(seconds, "second"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
