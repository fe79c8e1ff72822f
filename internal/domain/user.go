package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Gender enumerates the supported gender values.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Genders lists every known gender in declaration order.
var Genders = []Gender{GenderMale, GenderFemale}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

// ParseGender matches free text against the gender set ignoring case.
// Surrounding whitespace is not stripped. The boolean is false when nothing matches.
func ParseGender(text string) (Gender, bool) {
	candidate := Gender(strings.ToUpper(text))
	if !candidate.Valid() {
		return "", false
	}
	return candidate, true
}

// User is the domain model for directory records.
type User struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Gender    Gender
	Age       int
	Email     string
}
