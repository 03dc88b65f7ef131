package compatibility

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amora-app/backend/internal/domain/model"
	"github.com/amora-app/backend/internal/domain/rules"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("pair has no qualifying interaction")
)

const (
	weightInterests        = 0.30
	weightProximity        = 0.20
	weightLifestyle        = 0.15
	weightRelationshipGoal = 0.20
	weightAgeFit           = 0.10
	weightEducation        = 0.05
)

type ProfileSource interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

type PreferenceSource interface {
	Get(ctx context.Context, userID string) (model.Preference, error)
}

type InteractionSource interface {
	LikeExists(ctx context.Context, actorID, targetID string) (bool, error)
}

type MatchSource interface {
	GetByPair(ctx context.Context, userID, targetID string) (pgrepo.MatchRecord, error)
}

type ScoreStore interface {
	Upsert(ctx context.Context, score model.CompatibilityScore) error
	GetByPair(ctx context.Context, userID, targetID string) (model.CompatibilityScore, error)
}

type Distancer func(lat1, lon1, lat2, lon2 float64) float64

type Service struct {
	profiles     ProfileSource
	preferences  PreferenceSource
	interactions InteractionSource
	matches      MatchSource
	scores       ScoreStore
	distance     Distancer
	now          func() time.Time
}

type Dependencies struct {
	Profiles     ProfileSource
	Preferences  PreferenceSource
	Interactions InteractionSource
	Matches      MatchSource
	Scores       ScoreStore
	Distance     Distancer
}

func NewService(deps Dependencies) *Service {
	return &Service{
		profiles:     deps.Profiles,
		preferences:  deps.Preferences,
		interactions: deps.Interactions,
		matches:      deps.Matches,
		scores:       deps.Scores,
		distance:     deps.Distance,
		now:          time.Now,
	}
}

// Compute scores the pair for a caller who is matched with the target or has
// a directed like toward them. Unauthorized pairs are refused before any
// profile data is read. The result is persisted by canonical pair and
// recomputable at will.
func (s *Service) Compute(ctx context.Context, callerID, targetID string) (model.CompatibilityScore, error) {
	callerID = strings.TrimSpace(callerID)
	targetID = strings.TrimSpace(targetID)
	if callerID == "" || targetID == "" || callerID == targetID {
		return model.CompatibilityScore{}, ErrValidation
	}
	if s.profiles == nil || s.preferences == nil || s.interactions == nil || s.matches == nil || s.distance == nil {
		return model.CompatibilityScore{}, fmt.Errorf("compatibility dependencies are not configured")
	}

	authorized, err := s.authorized(ctx, callerID, targetID)
	if err != nil {
		return model.CompatibilityScore{}, err
	}
	if !authorized {
		return model.CompatibilityScore{}, ErrForbidden
	}

	caller, err := s.profiles.Get(ctx, callerID)
	if err != nil {
		return model.CompatibilityScore{}, fmt.Errorf("load caller profile: %w", err)
	}
	target, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		return model.CompatibilityScore{}, fmt.Errorf("load target profile: %w", err)
	}

	callerPref, callerPrefOK, err := s.loadPreference(ctx, callerID)
	if err != nil {
		return model.CompatibilityScore{}, err
	}
	targetPref, targetPrefOK, err := s.loadPreference(ctx, targetID)
	if err != nil {
		return model.CompatibilityScore{}, err
	}

	breakdown := []model.FactorScore{
		interestsFactor(caller, target),
		s.proximityFactor(caller, target),
		lifestyleFactor(caller, target),
		relationshipGoalFactor(caller, target),
		ageFitFactor(caller, target, callerPref, callerPrefOK, targetPref, targetPrefOK),
		educationFactor(caller, target),
	}

	userA, userB := rules.CanonicalPair(callerID, targetID)
	score := model.CompatibilityScore{
		UserAID:    userA,
		UserBID:    userB,
		Score:      renormalize(breakdown),
		Breakdown:  breakdown,
		ComputedAt: s.now().UTC(),
	}

	if s.scores != nil {
		if err := s.scores.Upsert(ctx, score); err != nil {
			return model.CompatibilityScore{}, fmt.Errorf("persist compatibility score: %w", err)
		}
	}

	return score, nil
}

// Cached returns the stored score for the pair without recomputing, behind
// the same authorization gate as Compute. pgrepo.ErrScoreNotFound passes
// through when the pair has never been scored.
func (s *Service) Cached(ctx context.Context, callerID, targetID string) (model.CompatibilityScore, error) {
	callerID = strings.TrimSpace(callerID)
	targetID = strings.TrimSpace(targetID)
	if callerID == "" || targetID == "" || callerID == targetID {
		return model.CompatibilityScore{}, ErrValidation
	}
	if s.interactions == nil || s.matches == nil || s.scores == nil {
		return model.CompatibilityScore{}, fmt.Errorf("compatibility dependencies are not configured")
	}

	authorized, err := s.authorized(ctx, callerID, targetID)
	if err != nil {
		return model.CompatibilityScore{}, err
	}
	if !authorized {
		return model.CompatibilityScore{}, ErrForbidden
	}

	return s.scores.GetByPair(ctx, callerID, targetID)
}

func (s *Service) authorized(ctx context.Context, callerID, targetID string) (bool, error) {
	_, err := s.matches.GetByPair(ctx, callerID, targetID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgrepo.ErrMatchNotFound):
	default:
		return false, fmt.Errorf("lookup match: %w", err)
	}

	liked, err := s.interactions.LikeExists(ctx, callerID, targetID)
	if err != nil {
		return false, fmt.Errorf("lookup directed like: %w", err)
	}
	return liked, nil
}

func (s *Service) loadPreference(ctx context.Context, userID string) (model.Preference, bool, error) {
	pref, err := s.preferences.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferenceNotFound) {
			return model.Preference{}, false, nil
		}
		return model.Preference{}, false, fmt.Errorf("load preference: %w", err)
	}
	return pref, true, nil
}

// renormalize divides the weighted sum by the weight of the available factors
// only, so a missing factor is excluded rather than scored as zero.
func renormalize(breakdown []model.FactorScore) float64 {
	var weightedSum, weightTotal float64
	for _, f := range breakdown {
		if !f.Available {
			continue
		}
		weightedSum += f.Weight * f.Value
		weightTotal += f.Weight
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

func interestsFactor(a, b model.Profile) model.FactorScore {
	f := model.FactorScore{Name: "shared_interests", Weight: weightInterests, Available: true}

	set := make(map[string]struct{}, len(a.Interests))
	for _, it := range a.Interests {
		set[it] = struct{}{}
	}
	shared := 0
	for _, it := range b.Interests {
		if _, ok := set[it]; ok {
			shared++
		}
	}

	denom := len(a.Interests)
	if len(b.Interests) > denom {
		denom = len(b.Interests)
	}
	if denom < 1 {
		denom = 1
	}
	f.Value = 100 * float64(shared) / float64(denom)
	return f
}

func (s *Service) proximityFactor(a, b model.Profile) model.FactorScore {
	f := model.FactorScore{Name: "location_proximity", Weight: weightProximity}
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return f
	}

	f.Available = true
	d := s.distance(*a.Lat, *a.Lon, *b.Lat, *b.Lon)
	value := 100 - d/100
	if value < 0 {
		value = 0
	}
	f.Value = value
	return f
}

func lifestyleFactor(a, b model.Profile) model.FactorScore {
	f := model.FactorScore{Name: "lifestyle_match", Weight: weightLifestyle, Available: true}

	equal := 0
	pairs := [4][2]string{
		{a.Drinking, b.Drinking},
		{a.Smoking, b.Smoking},
		{a.Exercise, b.Exercise},
		{a.Religion, b.Religion},
	}
	for _, p := range pairs {
		if p[0] != "" && p[0] == p[1] {
			equal++
		}
	}
	f.Value = 100 * float64(equal) / 4
	return f
}

func relationshipGoalFactor(a, b model.Profile) model.FactorScore {
	f := model.FactorScore{Name: "relationship_goal_match", Weight: weightRelationshipGoal, Available: true}
	if a.RelationshipGoal != "" && a.RelationshipGoal == b.RelationshipGoal {
		f.Value = 100
	} else {
		f.Value = 50
	}
	return f
}

func ageFitFactor(a, b model.Profile, aPref model.Preference, aPrefOK bool, bPref model.Preference, bPrefOK bool) model.FactorScore {
	f := model.FactorScore{Name: "mutual_age_fit", Weight: weightAgeFit}
	if !aPrefOK || !bPrefOK || a.Age <= 0 || b.Age <= 0 {
		return f
	}

	f.Available = true
	aFitsB := b.Age >= aPref.AgeMin && b.Age <= aPref.AgeMax
	bFitsA := a.Age >= bPref.AgeMin && a.Age <= bPref.AgeMax
	switch {
	case aFitsB && bFitsA:
		f.Value = 100
	case aFitsB || bFitsA:
		f.Value = 50
	}
	return f
}

func educationFactor(a, b model.Profile) model.FactorScore {
	f := model.FactorScore{Name: "education_match", Weight: weightEducation, Available: true}
	if a.Education != "" && a.Education == b.Education {
		f.Value = 100
	} else {
		f.Value = 50
	}
	return f
}
