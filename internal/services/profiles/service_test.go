package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
	"github.com/amora-app/backend/internal/services/geo"
)

type fakeProfiles struct {
	profile model.Profile
	err     error
}

func (f *fakeProfiles) Get(_ context.Context, _ string) (model.Profile, error) {
	return f.profile, f.err
}

type fakePreferences struct {
	upserted *model.Preference
}

func (f *fakePreferences) Get(_ context.Context, _ string) (model.Preference, error) {
	if f.upserted == nil {
		return model.Preference{}, pgrepo.ErrPreferenceNotFound
	}
	return *f.upserted, nil
}

func (f *fakePreferences) Upsert(_ context.Context, pref model.Preference) error {
	f.upserted = &pref
	return nil
}

type fakePhotos struct {
	err error
}

func (f *fakePhotos) SignedPhotoURL(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + key, nil
}

type fakeReputation struct {
	count int64
	err   error
}

func (f *fakeReputation) GetGracefulClosures(_ context.Context, _ string) (int64, error) {
	return f.count, f.err
}

func ptr(v float64) *float64 { return &v }

func newTestService(profiles *fakeProfiles, prefs *fakePreferences, photos *fakePhotos) *Service {
	return &Service{
		profiles:    profiles,
		preferences: prefs,
		photos:      photos,
		fuzzer:      geo.NewService(1.0),
		reputation:  &fakeReputation{count: 2},
		now:         func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestGetOwnFuzzesCoordinates(t *testing.T) {
	profiles := &fakeProfiles{profile: model.Profile{
		UserID:   "1111",
		Bio:      "hi",
		Lat:      ptr(40.7128),
		Lon:      ptr(-74.0060),
		PhotoKey: "users/1111.jpg",
	}}
	svc := newTestService(profiles, &fakePreferences{}, &fakePhotos{})

	view, err := svc.GetOwn(context.Background(), "1111")
	if err != nil {
		t.Fatalf("get own: %v", err)
	}
	if view.Lat == nil || view.Lon == nil {
		t.Fatalf("expected fuzzed coordinates, got %+v", view)
	}
	if *view.Lat == 40.7128 && *view.Lon == -74.0060 {
		t.Fatalf("true coordinates must never surface")
	}
	if d := geo.DistanceMiles(40.7128, -74.0060, *view.Lat, *view.Lon); d > 1.01 {
		t.Fatalf("displacement %f exceeds fuzz radius", d)
	}
	if view.PhotoURL == nil || *view.PhotoURL != "https://cdn.example.com/users/1111.jpg" {
		t.Fatalf("unexpected photo url: %v", view.PhotoURL)
	}
	if view.GracefulClosures != 2 {
		t.Fatalf("graceful closures = %d, want 2", view.GracefulClosures)
	}
}

func TestGetOwnDegradesReputation(t *testing.T) {
	profiles := &fakeProfiles{profile: model.Profile{UserID: "1111", Bio: "hi"}}
	svc := newTestService(profiles, &fakePreferences{}, &fakePhotos{})
	svc.reputation = &fakeReputation{err: errors.New("pool closed")}

	view, err := svc.GetOwn(context.Background(), "1111")
	if err != nil {
		t.Fatalf("reputation failure must not fail the read: %v", err)
	}
	if view.GracefulClosures != 0 {
		t.Fatalf("expected zero counter on read failure, got %d", view.GracefulClosures)
	}
}

func TestGetOwnDegradesPhoto(t *testing.T) {
	profiles := &fakeProfiles{profile: model.Profile{UserID: "1111", Bio: "hi", PhotoKey: "k"}}
	svc := newTestService(profiles, &fakePreferences{}, &fakePhotos{err: errors.New("storage down")})

	view, err := svc.GetOwn(context.Background(), "1111")
	if err != nil {
		t.Fatalf("photo failure must not fail the read: %v", err)
	}
	if view.PhotoURL != nil {
		t.Fatalf("expected nil photo url, got %v", view.PhotoURL)
	}
	if view.Lat != nil || view.Lon != nil {
		t.Fatalf("profile without coordinates must not grow any")
	}
}

func TestUpsertPreferencesValidates(t *testing.T) {
	prefs := &fakePreferences{}
	svc := newTestService(&fakeProfiles{}, prefs, &fakePhotos{})
	ctx := context.Background()

	tests := []struct {
		name string
		pref model.Preference
	}{
		{name: "underage min", pref: model.Preference{AgeMin: 17, AgeMax: 30, MaxDistanceMiles: 10}},
		{name: "inverted range", pref: model.Preference{AgeMin: 40, AgeMax: 30, MaxDistanceMiles: 10}},
		{name: "zero distance", pref: model.Preference{AgeMin: 20, AgeMax: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpsertPreferences(ctx, "1111", tt.pref); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	got, err := svc.UpsertPreferences(ctx, "1111", model.Preference{
		AgeMin:           25,
		AgeMax:           35,
		MaxDistanceMiles: 40,
		InterestedIn:     []string{"woman"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.UserID != "1111" || got.UpdatedAt.IsZero() {
		t.Fatalf("user id and timestamp must be stamped: %+v", got)
	}
	if prefs.upserted == nil || prefs.upserted.MaxDistanceMiles != 40 {
		t.Fatalf("preference not stored: %+v", prefs.upserted)
	}
}
