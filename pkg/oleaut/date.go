package oleaut

import (
	"math"
	"time"
)

// oleEpoch is day zero of the OLE automation DATE serial format.
var oleEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateFromOLE converts an OLE automation DATE (fractional days since
// 1899-12-30) to a time.Time in UTC. For negative serials the integer part
// counts days before the epoch while the fraction still measures time of
// day forward from midnight.
func DateFromOLE(d float64) time.Time {
	days := math.Trunc(d)
	frac := math.Abs(d - days)
	return oleEpoch.
		AddDate(0, 0, int(days)).
		Add(time.Duration(frac * float64(24*time.Hour)))
}

// OLEFromDate converts a time.Time to an OLE automation DATE serial.
func OLEFromDate(t time.Time) float64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := midnight.Sub(oleEpoch).Hours() / 24
	frac := t.Sub(midnight).Hours() / 24
	if days < 0 {
		return days - frac
	}
	return days + frac
}
