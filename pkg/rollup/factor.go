package rollup

import "github.com/vsinha/quoting/pkg/domain/entities"

// HoursPerUnit converts a production standard into hours per piece, or into a
// flat hour total for the quantity-independent factors. Unknown tags yield 0.
func HoursPerUnit(factor entities.StandardFactor, standard float64) float64 {
	switch factor {
	case entities.HoursPerPiece:
		return standard
	case entities.HoursPer100Pieces:
		return standard / 100
	case entities.HoursPer1000Pieces:
		return standard / 1000
	case entities.MinutesPerPiece:
		return standard / 60
	case entities.MinutesPer100Pieces:
		return standard / 100 / 60
	case entities.MinutesPer1000Pieces:
		return standard / 1000 / 60
	case entities.PiecesPerHour:
		return 1 / standard
	case entities.PiecesPerMinute:
		return 1 / (standard / 60)
	case entities.SecondsPerPiece:
		return standard / 3600
	case entities.TotalHours:
		return standard
	case entities.TotalMinutes:
		return standard / 60
	default:
		return 0
	}
}

// IsQuantityIndependent reports whether the factor describes a flat total that
// does not scale with the build quantity
func IsQuantityIndependent(factor entities.StandardFactor) bool {
	return factor == entities.TotalHours || factor == entities.TotalMinutes
}
