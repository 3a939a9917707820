package delta

import "github.com/treyp/clickhistory/internal/domain/model"

// Bucket maps a seconds-left reading to its press category. Total over all
// inputs; thresholds are lower-bound exclusive.
func Bucket(seconds float64) string {
	switch {
	case seconds > 51:
		return model.CategoryPress6
	case seconds > 41:
		return model.CategoryPress5
	case seconds > 31:
		return model.CategoryPress4
	case seconds > 21:
		return model.CategoryPress3
	case seconds > 11:
		return model.CategoryPress2
	default:
		return model.CategoryPress1
	}
}
