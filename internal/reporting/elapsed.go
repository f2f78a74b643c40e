package reporting

import (
	"fmt"
	"time"
)

// FormatElapsed renders d as HH:MM:SS.mmm. Hours are not wrapped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// FormatMicros is FormatElapsed for a microsecond count.
func FormatMicros(us int64) string {
	return FormatElapsed(time.Duration(us) * time.Microsecond)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
