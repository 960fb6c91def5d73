package Catalog

import (
	"regexp"
	"strings"
)

// VehicleSlugPattern is the route contract for /services/:vehicleSlug.
var VehicleSlugPattern = regexp.MustCompile(`^[a-z0-9-]+-services$`)

var (
	slugInvalidChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace    = regexp.MustCompile(`\s+`)
	slugRepeatHyphens = regexp.MustCompile(`-+`)
)

// SlugifySegment turns an arbitrary name into a URL-safe, lowercase,
// hyphenated segment.
func SlugifySegment(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugRepeatHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// BuildVehicleSlug builds the canonical services-page slug for a finalized
// fuel/brand/model selection, e.g. "petrol-honda-city-services".
func BuildVehicleSlug(fuelType, brandSlug, modelSlug string) string {
	return SlugifySegment(fuelType) + "-" + SlugifySegment(brandSlug) + "-" + SlugifySegment(modelSlug) + "-services"
}

func BuildVehiclePath(fuelType, brandSlug, modelSlug string) string {
	return "/services/" + BuildVehicleSlug(fuelType, brandSlug, modelSlug)
}

// VehicleMatch is the (model, fuel type) pair a vehicle slug resolves to.
type VehicleMatch struct {
	Model    VehicleModel
	FuelType string
}

// MatchVehicleSlug reverses BuildVehicleSlug by scanning every model and fuel
// type, rebuilding the candidate slug per pair. The catalog holds a few
// hundred entries at most, so the linear scan is fine.
func MatchVehicleSlug(slug string, models []VehicleModel) (*VehicleMatch, bool) {
	if slug == "" || !strings.HasSuffix(slug, "-services") {
		return nil, false
	}

	normalized := strings.ToLower(slug)
	for _, model := range models {
		for _, fuelType := range model.FuelTypes {
			if BuildVehicleSlug(fuelType, model.BrandSlug, model.Slug) == normalized {
				return &VehicleMatch{Model: model, FuelType: fuelType}, true
			}
		}
	}
	return nil, false
}
