package Catalog

import (
	"strings"
	"sync"
)

// Selection is the per-visitor brand/model/fuel tuple. The cascade invariant
// is enforced here: a model must belong to the selected brand, a fuel type
// must belong to the selected model, and picking an earlier step clears the
// later ones.
type Selection struct {
	store *Store

	mu       sync.Mutex
	brand    *VehicleBrand
	model    *VehicleModel
	fuelType string
}

func NewSelection(store *Store) *Selection {
	return &Selection{store: store}
}

// SelectBrand re-resolves the brand against the loaded list so a stale
// caller-supplied copy cannot leak in, then clears model and fuel type.
func (s *Selection) SelectBrand(brand VehicleBrand) {
	if resolved, ok := s.store.FindBrand(brand.Slug); ok {
		brand = resolved
	}
	s.mu.Lock()
	s.brand = &brand
	s.model = nil
	s.fuelType = ""
	s.mu.Unlock()
}

// SelectModel applies the model only if it belongs to the currently selected
// brand. A stale selection arriving after the brand changed underneath it is
// dropped, reported via the false return.
func (s *Selection) SelectModel(model VehicleModel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.brand == nil || model.BrandSlug != s.brand.Slug {
		return false
	}
	if resolved, ok := s.store.FindModel(s.brand.Slug, model.Slug); ok {
		model = resolved
	}
	s.model = &model
	s.fuelType = ""
	return true
}

// SetFuelType applies the fuel only when a model is selected and the fuel is
// one of that model's fuel types (case-insensitive match, canonical casing
// stored).
func (s *Selection) SetFuelType(fuelType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return false
	}
	for _, candidate := range s.model.FuelTypes {
		if strings.EqualFold(candidate, strings.TrimSpace(fuelType)) {
			s.fuelType = candidate
			return true
		}
	}
	return false
}

// Reset clears the selection. Catalog data itself is untouched.
func (s *Selection) Reset() {
	s.mu.Lock()
	s.brand = nil
	s.model = nil
	s.fuelType = ""
	s.mu.Unlock()
}

func (s *Selection) Brand() (VehicleBrand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.brand == nil {
		return VehicleBrand{}, false
	}
	return *s.brand, true
}

func (s *Selection) Model() (VehicleModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return VehicleModel{}, false
	}
	return *s.model, true
}

func (s *Selection) FuelType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fuelType
}

func (s *Selection) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brand != nil && s.model != nil && s.fuelType != ""
}

// Summary renders the partial selection for display, e.g. "Petrol Honda City".
func (s *Selection) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.brand != nil && s.model != nil && s.fuelType != "":
		return s.fuelType + " " + s.brand.Name + " " + s.model.Name
	case s.brand != nil && s.model != nil:
		return s.brand.Name + " " + s.model.Name
	case s.brand != nil:
		return s.brand.Name
	default:
		return ""
	}
}
