package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNoCoordinates = errors.New("requester has no coordinates")
)

type CandidateSource interface {
	ListDiscoverable(ctx context.Context, requesterID string, limit int) ([]pgrepo.CandidateRecord, error)
}

type SwipeSource interface {
	ListSwipedTargetIDs(ctx context.Context, actorID string) ([]string, error)
}

type PreferenceSource interface {
	Get(ctx context.Context, userID string) (model.Preference, error)
}

type ProfileSource interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

type PhotoURLSource interface {
	SignedPhotoURL(ctx context.Context, key string) (string, error)
}

type Fuzzer interface {
	Fuzz(lat, lon float64, id string, radiusMiles float64) (float64, float64, error)
	FuzzRadiusMiles() float64
}

type Distancer func(lat1, lon1, lat2, lon2 float64) float64

// Candidate is one ranked feed entry. Coordinates are already fuzzed; the
// distance is computed from true coordinates before fuzzing.
type Candidate struct {
	UserID        string   `json:"user_id"`
	DisplayName   string   `json:"display_name"`
	Bio           string   `json:"bio"`
	Age           int      `json:"age"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	DistanceMiles float64  `json:"distance_miles"`
	Interests     []string `json:"interests"`
	Verified      bool     `json:"verified"`
	PhotoURL      *string  `json:"photo_url"`
}

type Service struct {
	candidates  CandidateSource
	swipes      SwipeSource
	preferences PreferenceSource
	profiles    ProfileSource
	photos      PhotoURLSource
	fuzzer      Fuzzer
	distance    Distancer
	log         *zap.Logger
	rawLimit    int
	maxFeedSize int
}

type Dependencies struct {
	Candidates  CandidateSource
	Swipes      SwipeSource
	Preferences PreferenceSource
	Profiles    ProfileSource
	Photos      PhotoURLSource
	Fuzzer      Fuzzer
	Distance    Distancer
	Logger      *zap.Logger
	MaxFeedSize int
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	maxFeedSize := deps.MaxFeedSize
	if maxFeedSize <= 0 {
		maxFeedSize = DefaultLimit
	}

	return &Service{
		candidates:  deps.Candidates,
		swipes:      deps.Swipes,
		preferences: deps.Preferences,
		profiles:    deps.Profiles,
		photos:      deps.Photos,
		fuzzer:      deps.Fuzzer,
		distance:    deps.Distance,
		log:         log,
		rawLimit:    500,
		maxFeedSize: maxFeedSize,
	}
}

// ListCandidates assembles the ranked feed for one requester: load criteria,
// drop excluded and out-of-bounds profiles, keep the repo's score ordering,
// cap, then fuzz coordinates and enrich photos for display.
func (s *Service) ListCandidates(ctx context.Context, requesterID string) ([]Candidate, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return nil, ErrValidation
	}
	if s.candidates == nil || s.swipes == nil || s.preferences == nil || s.profiles == nil || s.fuzzer == nil || s.distance == nil {
		return nil, fmt.Errorf("discovery dependencies are not configured")
	}

	requester, err := s.profiles.Get(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester profile: %w", err)
	}
	if !requester.HasCoordinates() {
		return nil, ErrNoCoordinates
	}

	criteria := DefaultCriteria()
	pref, err := s.preferences.Get(ctx, requesterID)
	switch {
	case err == nil:
		criteria = CriteriaFromPreference(pref)
	case errors.Is(err, pgrepo.ErrPreferenceNotFound):
	default:
		return nil, fmt.Errorf("load preference: %w", err)
	}

	swipedIDs, err := s.swipes.ListSwipedTargetIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load swipe exclusions: %w", err)
	}
	excluded := make(map[string]struct{}, len(swipedIDs)+1)
	excluded[requesterID] = struct{}{}
	for _, id := range swipedIDs {
		excluded[id] = struct{}{}
	}

	records, err := s.candidates.ListDiscoverable(ctx, requesterID, s.rawLimit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("candidate listing deadline exceeded, returning empty feed",
				zap.String("requester_id", requesterID))
			return []Candidate{}, nil
		}
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	type ranked struct {
		rec      pgrepo.CandidateRecord
		distance float64
	}
	kept := make([]ranked, 0, criteria.Limit)
	for _, rec := range records {
		if _, skip := excluded[rec.UserID]; skip {
			continue
		}
		if rec.Bio == "" || rec.Lat == nil || rec.Lon == nil {
			continue
		}
		if !criteria.ageFits(rec.Age) || !criteria.genderFits(rec.Gender) {
			continue
		}

		d := s.distance(*requester.Lat, *requester.Lon, *rec.Lat, *rec.Lon)
		if d > criteria.MaxDistanceMiles {
			continue
		}
		kept = append(kept, ranked{rec: rec, distance: d})
	}

	// The repo orders by score already, but filtered fan-in from fakes and
	// future sources must still produce a deterministic page.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].rec.VisibilityScore != kept[j].rec.VisibilityScore {
			return kept[i].rec.VisibilityScore > kept[j].rec.VisibilityScore
		}
		return kept[i].rec.UserID < kept[j].rec.UserID
	})
	limit := criteria.Limit
	if limit > s.maxFeedSize {
		limit = s.maxFeedSize
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]Candidate, 0, len(kept))
	for _, item := range kept {
		fuzzLat, fuzzLon, err := s.fuzzer.Fuzz(*item.rec.Lat, *item.rec.Lon, item.rec.UserID, s.fuzzer.FuzzRadiusMiles())
		if err != nil {
			s.log.Warn("skipping candidate with bad coordinates",
				zap.String("candidate_id", item.rec.UserID), zap.Error(err))
			continue
		}

		out = append(out, Candidate{
			UserID:        item.rec.UserID,
			DisplayName:   item.rec.DisplayName,
			Bio:           item.rec.Bio,
			Age:           item.rec.Age,
			Lat:           fuzzLat,
			Lon:           fuzzLon,
			DistanceMiles: item.distance,
			Interests:     item.rec.Interests,
			Verified:      item.rec.Verified,
			PhotoURL:      s.signedPhotoURL(ctx, item.rec.UserID, item.rec.PhotoKey),
		})
	}

	return out, nil
}

// signedPhotoURL degrades to nil on any storage failure. A broken photo must
// never fail the whole feed.
func (s *Service) signedPhotoURL(ctx context.Context, userID, key string) *string {
	if s.photos == nil || key == "" {
		return nil
	}

	url, err := s.photos.SignedPhotoURL(ctx, key)
	if err != nil {
		s.log.Warn("photo url signing failed",
			zap.String("candidate_id", userID), zap.Error(err))
		return nil
	}
	if url == "" {
		return nil
	}
	return &url
}
