package profile

import "strings"

// Sex is the categorical sex of a profile.
type Sex int

const (
	// SexUnknown is an unset or unrecognised value.
	SexUnknown Sex = iota
	// SexFemale is a female profile.
	SexFemale
	// SexMale is a male profile.
	SexMale
)

// Platform sex codes as delivered by the harvested records.
const (
	codeFemale = 1
	codeMale   = 2
)

// SexFromCode maps a platform sex code (1 female, 2 male) to Sex.
func SexFromCode(code int) Sex {
	switch code {
	case codeFemale:
		return SexFemale
	case codeMale:
		return SexMale
	default:
		return SexUnknown
	}
}

// ParseSex maps a textual sex label (English or Russian) to Sex.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f", "женский", "ж":
		return SexFemale
	case "male", "m", "мужской", "м":
		return SexMale
	default:
		return SexUnknown
	}
}

// String returns the canonical label.
func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "female"
	case SexMale:
		return "male"
	default:
		return "unknown"
	}
}
