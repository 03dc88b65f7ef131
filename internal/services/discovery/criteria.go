package discovery

import "github.com/amora-app/backend/internal/domain/model"

const (
	// DefaultLimit caps a single feed page.
	DefaultLimit = 50

	DefaultAgeMin           = 18
	DefaultAgeMax           = 99
	DefaultMaxDistanceMiles = 50
)

// Criteria is the immutable filter set for one feed request. It is built once
// from the requester's stored preference and never mutated during ranking.
type Criteria struct {
	AgeMin           int
	AgeMax           int
	MaxDistanceMiles float64
	InterestedIn     []string
	Limit            int
}

// CriteriaFromPreference normalizes a stored preference into usable bounds.
// Zero or inverted values fall back to the documented defaults.
func CriteriaFromPreference(pref model.Preference) Criteria {
	c := Criteria{
		AgeMin:           pref.AgeMin,
		AgeMax:           pref.AgeMax,
		MaxDistanceMiles: pref.MaxDistanceMiles,
		InterestedIn:     append([]string(nil), pref.InterestedIn...),
		Limit:            DefaultLimit,
	}
	return c.normalized()
}

// DefaultCriteria is used when the requester has no stored preference.
func DefaultCriteria() Criteria {
	return Criteria{
		AgeMin:           DefaultAgeMin,
		AgeMax:           DefaultAgeMax,
		MaxDistanceMiles: DefaultMaxDistanceMiles,
		Limit:            DefaultLimit,
	}
}

func (c Criteria) normalized() Criteria {
	if c.AgeMin < DefaultAgeMin {
		c.AgeMin = DefaultAgeMin
	}
	if c.AgeMax <= 0 || c.AgeMax < c.AgeMin {
		c.AgeMax = DefaultAgeMax
	}
	if c.MaxDistanceMiles <= 0 {
		c.MaxDistanceMiles = DefaultMaxDistanceMiles
	}
	if c.Limit <= 0 || c.Limit > DefaultLimit {
		c.Limit = DefaultLimit
	}
	return c
}

func (c Criteria) ageFits(age int) bool {
	return age >= c.AgeMin && age <= c.AgeMax
}

func (c Criteria) genderFits(gender string) bool {
	if len(c.InterestedIn) == 0 {
		return true
	}
	for _, g := range c.InterestedIn {
		if g == gender {
			return true
		}
	}
	return false
}
