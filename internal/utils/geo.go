package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// Earth's radius in kilometers
const EarthRadiusKm = 6371.0

// Fallback coordinate used when a location cannot be parsed at all: Karachi
// city centre. Overridable via DISPATCH_DEFAULT_LONGITUDE/LATITUDE.
const (
	DefaultLongitude = 67.0011
	DefaultLatitude  = 24.8607
)

// Swap-detection thresholds for the operating region. A longitude that looks
// like a latitude (|lon| <= 40) paired with a latitude that looks like a
// longitude (|lat| >= 60) is treated as a swapped pair.
const (
	swapLonMax = 40.0
	swapLatMin = 60.0
)

// GeoPoint represents a geographical point with latitude and longitude.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// ValidateCoordinate reports whether the pair is a usable coordinate: both
// values finite, longitude in [-180,180] and latitude in [-90,90].
func ValidateCoordinate(longitude, latitude float64) bool {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return false
	}
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return false
	}
	return longitude >= -180 && longitude <= 180 && latitude >= -90 && latitude <= 90
}

// ParseCoordinate normalizes the closed set of accepted location input shapes
// into a (longitude, latitude) pair:
//
//   - "lon,lat" string
//   - two-element numeric array [lon, lat] (GeoJSON Point order)
//   - object with "longitude"/"latitude" keys
//   - models.Location
//
// It does not validate ranges; callers run RepairCoordinate on the result.
func ParseCoordinate(input interface{}) (longitude, latitude float64, err error) {
	switch v := input.(type) {
	case models.Location:
		return v.Longitude, v.Latitude, nil
	case *models.Location:
		if v == nil {
			return 0, 0, fmt.Errorf("location is nil")
		}
		return v.Longitude, v.Latitude, nil
	case string:
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("location string must be \"lon,lat\", got %q", v)
		}
		longitude, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
		}
		latitude, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
		}
		return longitude, latitude, nil
	case []float64:
		if len(v) != 2 {
			return 0, 0, fmt.Errorf("location array must have 2 elements, got %d", len(v))
		}
		return v[0], v[1], nil
	case [2]float64:
		return v[0], v[1], nil
	case []interface{}:
		if len(v) != 2 {
			return 0, 0, fmt.Errorf("location array must have 2 elements, got %d", len(v))
		}
		longitude, err = toFloat(v[0])
		if err != nil {
			return 0, 0, err
		}
		latitude, err = toFloat(v[1])
		if err != nil {
			return 0, 0, err
		}
		return longitude, latitude, nil
	case map[string]interface{}:
		lonRaw, lonOK := v["longitude"]
		latRaw, latOK := v["latitude"]
		if !lonOK || !latOK {
			return 0, 0, fmt.Errorf("location object requires longitude and latitude keys")
		}
		longitude, err = toFloat(lonRaw)
		if err != nil {
			return 0, 0, err
		}
		latitude, err = toFloat(latRaw)
		if err != nil {
			return 0, 0, err
		}
		return longitude, latitude, nil
	default:
		return 0, 0, fmt.Errorf("unsupported location shape %T", input)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported numeric value %T", v)
	}
}

// RepairCoordinate returns a valid coordinate pair derived from the input.
// Swapped pairs are un-swapped, everything else is clamped to its axis range.
// Idempotent: repairing a repaired pair is a no-op. The returned flag reports
// whether the pair was changed; callers persist repaired values and log the
// repair for audit.
func RepairCoordinate(longitude, latitude float64) (lon, lat float64, changed bool) {
	origLon, origLat := longitude, latitude

	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		longitude = DefaultLongitude
	}
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		latitude = DefaultLatitude
	}

	if math.Abs(longitude) <= swapLonMax && math.Abs(latitude) >= swapLatMin {
		longitude, latitude = latitude, longitude
	}

	lon = clamp(longitude, -180, 180)
	lat = clamp(latitude, -90, 90)
	return lon, lat, lon != origLon || lat != origLat
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// CalculateDistance calculates the great-circle distance between two points
// in kilometers using the Haversine formula.
func CalculateDistance(point1, point2 GeoPoint) float64 {
	lat1 := point1.Latitude * math.Pi / 180.0
	lon1 := point1.Longitude * math.Pi / 180.0
	lat2 := point2.Latitude * math.Pi / 180.0
	lon2 := point2.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// EncodeLocation converts a location to a geohash cell string.
func EncodeLocation(location models.Location, precision uint) string {
	return geohash.EncodeWithPrecision(location.Latitude, location.Longitude, precision)
}

// CellNeighbors returns the neighboring geohash cells of a given cell.
func CellNeighbors(cell string) []string {
	return geohash.Neighbors(cell)
}

// GeoPointFromLocation converts a Location model to a GeoPoint.
func GeoPointFromLocation(location models.Location) GeoPoint {
	return GeoPoint{
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}
}
