package entities

// StandardFactor is the unit-of-measure tag for an operation's production standard
type StandardFactor string

const (
	HoursPerPiece        StandardFactor = "Hours/Piece"
	HoursPer100Pieces    StandardFactor = "Hours/100 Pieces"
	HoursPer1000Pieces   StandardFactor = "Hours/1000 Pieces"
	MinutesPerPiece      StandardFactor = "Minutes/Piece"
	MinutesPer100Pieces  StandardFactor = "Minutes/100 Pieces"
	MinutesPer1000Pieces StandardFactor = "Minutes/1000 Pieces"
	PiecesPerHour        StandardFactor = "Pieces/Hour"
	PiecesPerMinute      StandardFactor = "Pieces/Minute"
	SecondsPerPiece      StandardFactor = "Seconds/Piece"
	TotalHours           StandardFactor = "Total Hours"
	TotalMinutes         StandardFactor = "Total Minutes"
)

// KnownStandardFactors lists every supported tag in display order
func KnownStandardFactors() []StandardFactor {
	return []StandardFactor{
		HoursPerPiece,
		HoursPer100Pieces,
		HoursPer1000Pieces,
		MinutesPerPiece,
		MinutesPer100Pieces,
		MinutesPer1000Pieces,
		PiecesPerHour,
		PiecesPerMinute,
		SecondsPerPiece,
		TotalHours,
		TotalMinutes,
	}
}

// IsKnown reports whether the tag is one of the supported standard factors
func (f StandardFactor) IsKnown() bool {
	for _, known := range KnownStandardFactors() {
		if f == known {
			return true
		}
	}
	return false
}
