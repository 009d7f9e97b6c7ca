package criteria

import "github.com/kailas-cloud/audience/internal/domain/profile"

// Criteria is the structured filter extracted from a free-text query.
// Every field is optional; an unset field places no constraint.
type Criteria struct {
	minAge    int
	maxAge    int
	hasMinAge bool
	hasMaxAge bool
	gender    profile.Sex
	city      string
}

// Option sets one constraint.
type Option func(*Criteria)

// WithMinAge sets the inclusive lower age bound.
func WithMinAge(age int) Option {
	return func(c *Criteria) { c.minAge, c.hasMinAge = age, true }
}

// WithMaxAge sets the inclusive upper age bound.
func WithMaxAge(age int) Option {
	return func(c *Criteria) { c.maxAge, c.hasMaxAge = age, true }
}

// WithGender constrains sex. SexUnknown leaves it unconstrained.
func WithGender(s profile.Sex) Option {
	return func(c *Criteria) { c.gender = s }
}

// WithCity constrains the city. An empty name leaves it unconstrained.
func WithCity(name string) Option {
	return func(c *Criteria) { c.city = name }
}

// New builds Criteria from options.
func New(opts ...Option) Criteria {
	var c Criteria
	for _, o := range opts {
		o(&c)
	}
	return c
}

// MinAge returns the lower bound and whether it is set.
func (c Criteria) MinAge() (int, bool) { return c.minAge, c.hasMinAge }

// MaxAge returns the upper bound and whether it is set.
func (c Criteria) MaxAge() (int, bool) { return c.maxAge, c.hasMaxAge }

// Gender returns the required sex and whether it is set.
func (c Criteria) Gender() (profile.Sex, bool) { return c.gender, c.gender != profile.SexUnknown }

// City returns the canonical city name and whether it is set.
func (c Criteria) City() (string, bool) { return c.city, c.city != "" }

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return !c.hasMinAge && !c.hasMaxAge && c.gender == profile.SexUnknown && c.city == ""
}
