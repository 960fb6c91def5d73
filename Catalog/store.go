package Catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// VehicleBrand is a normalized, display-ready brand.
type VehicleBrand struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	IconURL string `json:"iconUrl,omitempty"`
}

// VehicleModel is a normalized model, always owned by exactly one brand via
// BrandSlug. Service links are kept for vehicle-scoped pricing.
type VehicleModel struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	BrandName    string         `json:"brandName"`
	BrandSlug    string         `json:"brandSlug"`
	FuelTypes    []string       `json:"fuelTypes"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	Services     []ModelService `json:"services,omitempty"`
}

// Store loads the vehicle catalog once and exposes it read-only. Concurrent
// loaders share a single in-flight fetch instead of racing on flags.
type Store struct {
	client *Client

	mu            sync.Mutex
	loaded        bool
	inflight      chan struct{}
	lastErr       error
	brands        []VehicleBrand
	models        []VehicleModel
	modelsByBrand map[string][]VehicleModel

	serviceMu       sync.Mutex
	serviceInflight chan struct{}
	serviceErr      error
	serviceCatalog  *ServiceCatalog
}

func NewStore(client *Client) *Store {
	return &Store{
		client:        client,
		modelsByBrand: map[string][]VehicleModel{},
	}
}

// Ensure loads the catalog if it has not been loaded yet. Callers arriving
// while a load is running wait for that load and share its result.
func (s *Store) Ensure(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	if s.inflight != nil {
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.loaded {
			return nil
		}
		return s.lastErr
	}
	done := make(chan struct{})
	s.inflight = done
	s.mu.Unlock()

	brands, models, modelsByBrand, err := s.load(ctx)

	s.mu.Lock()
	if err == nil {
		s.brands = brands
		s.models = models
		s.modelsByBrand = modelsByBrand
		s.loaded = true
	}
	s.lastErr = err
	s.inflight = nil
	close(done)
	s.mu.Unlock()
	return err
}

// Refresh re-fetches the catalog unconditionally. On failure the previously
// loaded data stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	brands, models, modelsByBrand, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.brands = brands
	s.models = models
	s.modelsByBrand = modelsByBrand
	s.loaded = true
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// load fetches brand and model lists concurrently. Both must succeed, there
// is no partial catalog.
func (s *Store) load(ctx context.Context) ([]VehicleBrand, []VehicleModel, map[string][]VehicleModel, error) {
	var (
		wg        sync.WaitGroup
		rawBrands []Brand
		rawModels []Model
		brandErr  error
		modelErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		rawBrands, brandErr = s.client.FetchBrands(ctx)
	}()
	go func() {
		defer wg.Done()
		rawModels, modelErr = s.client.FetchModels(ctx)
	}()
	wg.Wait()

	if brandErr != nil {
		return nil, nil, nil, brandErr
	}
	if modelErr != nil {
		return nil, nil, nil, modelErr
	}

	origin := s.client.Origin()
	brands := normalizeBrands(rawBrands, origin)
	models := normalizeModels(rawModels, brands, origin)
	return brands, models, groupModelsByBrand(models), nil
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Store) Brands() []VehicleBrand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brands
}

func (s *Store) Models() []VehicleModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.models
}

func (s *Store) ModelsForBrand(brandSlug string) []VehicleModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelsByBrand[brandSlug]
}

func (s *Store) FindBrand(slug string) (VehicleBrand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, brand := range s.brands {
		if brand.Slug == slug {
			return brand, true
		}
	}
	return VehicleBrand{}, false
}

func (s *Store) FindModel(brandSlug, modelSlug string) (VehicleModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, model := range s.modelsByBrand[brandSlug] {
		if model.Slug == modelSlug {
			return model, true
		}
	}
	return VehicleModel{}, false
}

// normalizeBrands drops inactive brands, repairs missing or junk slugs and
// sorts the result by name.
func normalizeBrands(raw []Brand, origin string) []VehicleBrand {
	brands := make([]VehicleBrand, 0, len(raw))
	for _, brand := range raw {
		if !brand.Status {
			continue
		}
		brands = append(brands, VehicleBrand{
			Name:    strings.TrimSpace(brand.Name),
			Slug:    normalizeBrandSlug(brand),
			IconURL: resolveAssetURL(origin, brand.Icon),
		})
	}
	sort.SliceStable(brands, func(i, j int) bool {
		return strings.ToLower(brands[i].Name) < strings.ToLower(brands[j].Name)
	})
	return brands
}

// normalizeBrandSlug falls back to a slugified brand name when the backend
// ships an empty slug or the string literals "null"/"undefined".
func normalizeBrandSlug(brand Brand) string {
	slug := strings.ToLower(strings.TrimSpace(brand.Slug))
	if slug == "" || slug == "null" || slug == "undefined" {
		return SlugifySegment(brand.Name)
	}
	return SlugifySegment(slug)
}

// normalizeModels drops inactive models and models whose brand name does not
// resolve against the normalized brand list.
func normalizeModels(raw []Model, brands []VehicleBrand, origin string) []VehicleModel {
	lookup := make(map[string]VehicleBrand, len(brands))
	for _, brand := range brands {
		lookup[strings.ToLower(strings.TrimSpace(brand.Name))] = brand
	}

	models := make([]VehicleModel, 0, len(raw))
	for _, model := range raw {
		if !model.Status {
			continue
		}
		brand, ok := lookup[strings.ToLower(strings.TrimSpace(model.BrandName))]
		if !ok {
			continue
		}
		brandName := strings.TrimSpace(model.BrandName)
		if brandName == "" {
			brandName = brand.Name
		}
		thumbnail := model.Thumbnail
		if thumbnail == nil {
			thumbnail = model.Image
		}
		models = append(models, VehicleModel{
			ID:           model.ID,
			Name:         strings.TrimSpace(model.Name),
			Slug:         model.Slug,
			BrandName:    brandName,
			BrandSlug:    brand.Slug,
			FuelTypes:    normalizeFuelTypes(model.FuelType),
			ThumbnailURL: resolveAssetURL(origin, thumbnail),
			Services:     model.Services,
		})
	}
	sort.SliceStable(models, func(i, j int) bool {
		return strings.ToLower(models[i].Name) < strings.ToLower(models[j].Name)
	})
	return models
}

// normalizeFuelTypes de-duplicates case-insensitively and renders each fuel
// in title case ("petrol" -> "Petrol").
func normalizeFuelTypes(raw []string) []string {
	seen := map[string]bool{}
	fuels := make([]string, 0, len(raw))
	for _, fuel := range raw {
		trimmed := strings.TrimSpace(fuel)
		if trimmed == "" {
			continue
		}
		normalized := toTitleCase(trimmed)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		fuels = append(fuels, normalized)
	}
	return fuels
}

func toTitleCase(value string) string {
	parts := strings.Fields(strings.ToLower(value))
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func groupModelsByBrand(models []VehicleModel) map[string][]VehicleModel {
	grouped := map[string][]VehicleModel{}
	for _, model := range models {
		grouped[model.BrandSlug] = append(grouped[model.BrandSlug], model)
	}
	return grouped
}
