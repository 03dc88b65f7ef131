package geo

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
)

var ErrValidation = errors.New("validation error")

const (
	earthRadiusMiles = 3958.8
	kmPerDegreeLat   = 111.32
	kmPerMile        = 1.60934
)

// Service provides the two pure geometry operations the engine needs:
// great-circle distance between true coordinates and deterministic
// privacy fuzzing for display. Both are stateless and safe to call
// concurrently.
type Service struct {
	fuzzRadiusMiles float64
}

func NewService(fuzzRadiusMiles float64) *Service {
	if fuzzRadiusMiles <= 0 {
		fuzzRadiusMiles = 1.0
	}
	return &Service{fuzzRadiusMiles: fuzzRadiusMiles}
}

func (s *Service) FuzzRadiusMiles() float64 {
	return s.fuzzRadiusMiles
}

// Fuzz displaces true coordinates by at most radiusMiles. The offset
// direction and unit-disk sample are pure functions of the id alone, so a
// profile never jitters between renders and keeps its bearing when the fuzz
// radius is reconfigured; only the displacement magnitude scales with R.
// Sampling is area-uniform over the disk: radius = R*sqrt(u), which avoids
// clustering displaced points near the true location.
func (s *Service) Fuzz(lat, lon float64, id string, radiusMiles float64) (float64, float64, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	if radiusMiles < 0 {
		return 0, 0, fmt.Errorf("negative fuzz radius: %w", ErrValidation)
	}
	if radiusMiles == 0 || id == "" {
		return lat, lon, nil
	}

	angleUnit, radiusUnit := offsetSamples(id)

	angle := angleUnit * 2 * math.Pi
	offsetMiles := radiusMiles * math.Sqrt(radiusUnit)
	offsetKM := offsetMiles * kmPerMile

	latDelta := (offsetKM * math.Cos(angle)) / kmPerDegreeLat

	// Meridians converge toward the poles; without the cos(lat) correction a
	// fixed longitude delta shrinks in ground distance as latitude grows.
	cosLat := math.Cos(lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6
	}
	lonDelta := (offsetKM * math.Sin(angle)) / (kmPerDegreeLat * cosLat)

	return clampLat(lat + latDelta), wrapLon(lon + lonDelta), nil
}

// DistanceMiles computes the great-circle distance between two coordinates.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("invalid coordinates: %w", ErrValidation)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("coordinates out of range: %w", ErrValidation)
	}
	return nil
}

// offsetSamples derives two independent unit-interval samples from the
// identifier alone. Keeping the radius out of the seed makes the
// displacement scale linearly with the configured radius instead of jumping
// to an unrelated bearing. FNV-1a keeps the seed stable across processes,
// unlike maphash or the runtime map seed.
func offsetSamples(id string) (float64, float64) {
	angleHash := fnv.New64a()
	_, _ = angleHash.Write([]byte(id))
	angleSeed := angleHash.Sum64()

	radiusHash := fnv.New64a()
	_, _ = radiusHash.Write([]byte("r:"))
	_, _ = radiusHash.Write([]byte(id))
	radiusSeed := radiusHash.Sum64()

	return unitFloat(angleSeed), unitFloat(radiusSeed)
}

// unitFloat maps a 64-bit hash onto [0, 1) using the top 53 bits, the same
// construction math/rand uses for Float64.
func unitFloat(v uint64) float64 {
	return float64(v>>11) / float64(1<<53)
}

func clampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
