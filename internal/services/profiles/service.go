package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amora-app/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type ProfileSource interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

type PreferenceStore interface {
	Get(ctx context.Context, userID string) (model.Preference, error)
	Upsert(ctx context.Context, pref model.Preference) error
}

type PhotoURLSource interface {
	SignedPhotoURL(ctx context.Context, key string) (string, error)
}

type Fuzzer interface {
	Fuzz(lat, lon float64, id string, radiusMiles float64) (float64, float64, error)
	FuzzRadiusMiles() float64
}

type ReputationSource interface {
	GetGracefulClosures(ctx context.Context, userID string) (int64, error)
}

// View is the displayable profile. Coordinates are fuzzed even for the owner,
// so no response path ever carries true coordinates.
type View struct {
	Profile          model.Profile `json:"profile"`
	Lat              *float64      `json:"lat"`
	Lon              *float64      `json:"lon"`
	PhotoURL         *string       `json:"photo_url"`
	GracefulClosures int64         `json:"graceful_closures"`
}

type Service struct {
	profiles    ProfileSource
	preferences PreferenceStore
	photos      PhotoURLSource
	fuzzer      Fuzzer
	reputation  ReputationSource
	now         func() time.Time
}

type Dependencies struct {
	Profiles    ProfileSource
	Preferences PreferenceStore
	Photos      PhotoURLSource
	Fuzzer      Fuzzer
	Reputation  ReputationSource
}

func NewService(deps Dependencies) *Service {
	return &Service{
		profiles:    deps.Profiles,
		preferences: deps.Preferences,
		photos:      deps.Photos,
		fuzzer:      deps.Fuzzer,
		reputation:  deps.Reputation,
		now:         time.Now,
	}
}

// GetOwn returns the requester's profile view with fuzzed coordinates and a
// signed photo URL. Photo failures degrade to nil.
func (s *Service) GetOwn(ctx context.Context, userID string) (View, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return View{}, ErrValidation
	}
	if s.profiles == nil || s.fuzzer == nil {
		return View{}, fmt.Errorf("profile dependencies are not configured")
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("load profile: %w", err)
	}

	view := View{Profile: profile}
	if profile.HasCoordinates() {
		lat, lon, err := s.fuzzer.Fuzz(*profile.Lat, *profile.Lon, profile.UserID, s.fuzzer.FuzzRadiusMiles())
		if err != nil {
			return View{}, fmt.Errorf("fuzz coordinates: %w", err)
		}
		view.Lat, view.Lon = &lat, &lon
	}

	if s.photos != nil && profile.PhotoKey != "" {
		if url, err := s.photos.SignedPhotoURL(ctx, profile.PhotoKey); err == nil && url != "" {
			view.PhotoURL = &url
		}
	}

	// The counter is cosmetic on the profile card; a read failure degrades to 0.
	if s.reputation != nil {
		if count, err := s.reputation.GetGracefulClosures(ctx, userID); err == nil {
			view.GracefulClosures = count
		}
	}

	return view, nil
}

// UpsertPreferences replaces the user's whole preference row.
func (s *Service) UpsertPreferences(ctx context.Context, userID string, pref model.Preference) (model.Preference, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Preference{}, ErrValidation
	}
	if s.preferences == nil {
		return model.Preference{}, fmt.Errorf("preference store is nil")
	}

	if pref.AgeMin < 18 || pref.AgeMax < pref.AgeMin {
		return model.Preference{}, fmt.Errorf("invalid age range: %w", ErrValidation)
	}
	if pref.MaxDistanceMiles <= 0 {
		return model.Preference{}, fmt.Errorf("invalid max distance: %w", ErrValidation)
	}

	pref.UserID = userID
	pref.UpdatedAt = s.now().UTC()
	if err := s.preferences.Upsert(ctx, pref); err != nil {
		return model.Preference{}, fmt.Errorf("upsert preference: %w", err)
	}

	return pref, nil
}
