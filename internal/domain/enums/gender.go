package enums

import "strings"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
	GenderUnset  Gender = ""
)

func ParseGender(value string) (Gender, bool) {
	switch Gender(strings.ToUpper(strings.TrimSpace(value))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderOther:
		return GenderOther, true
	case GenderUnset:
		return GenderUnset, true
	default:
		return GenderUnset, false
	}
}

// Opposite returns the binary complement used for deck targeting. The
// complement is undefined for OTHER and unset genders; callers must treat
// ok == false as "no deck can be built".
func (g Gender) Opposite() (Gender, bool) {
	switch g {
	case GenderMale:
		return GenderFemale, true
	case GenderFemale:
		return GenderMale, true
	default:
		return GenderUnset, false
	}
}
