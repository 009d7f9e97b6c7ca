package profile

import (
	"time"

	"github.com/kailas-cloud/audience/internal/domain/group"
)

// Profile is a harvested social profile (immutable value object).
type Profile struct {
	id        int64
	birthDate string
	sex       Sex
	city      string
	country   string
	groups    []group.Group
}

// New creates a Profile. Empty strings mean "not provided".
func New(id int64, birthDate string, sex Sex, city, country string, groups []group.Group) Profile {
	return Profile{
		id:        id,
		birthDate: birthDate,
		sex:       sex,
		city:      city,
		country:   country,
		groups:    append([]group.Group(nil), groups...),
	}
}

// ID returns the profile identifier.
func (p Profile) ID() int64 { return p.id }

// BirthDate returns the raw birth-date string.
func (p Profile) BirthDate() string { return p.birthDate }

// Sex returns the profile sex.
func (p Profile) Sex() Sex { return p.sex }

// City returns the city title, empty when unknown.
func (p Profile) City() string { return p.city }

// Country returns the country title, empty when unknown.
func (p Profile) Country() string { return p.country }

// Groups returns the group memberships.
func (p Profile) Groups() []group.Group { return p.groups }

// Member is a profile with its age resolved against a reference instant.
type Member struct {
	Profile
	age      int
	ageKnown bool
}

// Resolve computes the derived age of p at now.
func Resolve(p Profile, now time.Time) Member {
	m := Member{Profile: p}
	if birth, ok := ParseBirthDate(p.birthDate); ok {
		m.age = AgeAt(birth, now)
		m.ageKnown = true
	}
	return m
}

// Age returns the derived age and whether it is known.
func (m Member) Age() (int, bool) { return m.age, m.ageKnown }
