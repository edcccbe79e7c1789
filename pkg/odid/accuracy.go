package odid

import (
	"math"

	"github.com/TechGeek001/jhu-capstone/pkg/models"
)

// HorizontalAccuracy maps an accuracy radius in metres to its enumerated value
func HorizontalAccuracy(m float64) models.HorizontalAccuracy {
	limits := []float64{18520, 7408, 3704, 1852, 926, 555.6, 185.2, 92.6, 30, 10, 3, 1}
	return models.HorizontalAccuracy(bucket(m, limits))
}

// VerticalAccuracy maps an altitude accuracy in metres to its enumerated value
func VerticalAccuracy(m float64) models.VerticalAccuracy {
	limits := []float64{150, 45, 25, 10, 3, 1}
	return models.VerticalAccuracy(bucket(m, limits))
}

// SpeedAccuracy maps a speed accuracy in m/s to its enumerated value
func SpeedAccuracy(mps float64) models.SpeedAccuracy {
	limits := []float64{10, 3, 1, 0.3}
	return models.SpeedAccuracy(bucket(mps, limits))
}

// TimestampAccuracy maps a timestamp accuracy in seconds to tenths of a second, 0 when unknown or above 1.5 s
func TimestampAccuracy(s float64) models.TimestampAccuracy {
	if s <= 0 || s > 1.5 || math.IsNaN(s) {
		return 0
	}
	return models.TimestampAccuracy(math.Ceil(math.Round(s*1000) / 100))
}

// bucket returns 0 for unknown values or values above limits[0], otherwise 1 + the index
// of the last limit the value is below.
func bucket(v float64, limits []float64) int {
	if v < 0 || math.IsNaN(v) || v >= limits[0] {
		return 0
	}
	i := 1
	for i < len(limits) && v < limits[i] {
		i++
	}
	return i
}
