package Catalog

import (
	"context"
	"strings"
	"sync"
)

// ServicePricing is the price block attached to a service, either the
// cheapest offer across all models or the offer of a resolved model.
type ServicePricing struct {
	Discount      float64 `json:"discount"`
	OriginalPrice float64 `json:"originalPrice"`
	DiscountPrice float64 `json:"discountPrice"`
}

// ServiceDetail is a display-ready service with resolved asset URLs.
type ServiceDetail struct {
	Service
	ThumbnailURL     string          `json:"thumbnailUrl,omitempty"`
	ServiceImageURLs []string        `json:"serviceImageUrls,omitempty"`
	Pricing          *ServicePricing `json:"pricing,omitempty"`
}

// ServiceCatalog is the normalized services catalog the services page reads.
type ServiceCatalog struct {
	Services           []ServiceDetail            `json:"services"`
	Categories         []ServiceCategory          `json:"categories"`
	PricingByServiceID map[string]ServicePricing  `json:"-"`
	servicesByID       map[string]ServiceDetail
}

// EnsureServices loads the services catalog on first use, sharing a single
// in-flight fetch the same way Ensure does for vehicles.
func (s *Store) EnsureServices(ctx context.Context) (*ServiceCatalog, error) {
	s.serviceMu.Lock()
	if s.serviceCatalog != nil {
		catalog := s.serviceCatalog
		s.serviceMu.Unlock()
		return catalog, nil
	}
	if s.serviceInflight != nil {
		done := s.serviceInflight
		s.serviceMu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.serviceMu.Lock()
		defer s.serviceMu.Unlock()
		if s.serviceCatalog != nil {
			return s.serviceCatalog, nil
		}
		return nil, s.serviceErr
	}
	done := make(chan struct{})
	s.serviceInflight = done
	s.serviceMu.Unlock()

	catalog, err := s.loadServices(ctx)

	s.serviceMu.Lock()
	if err == nil {
		s.serviceCatalog = catalog
	}
	s.serviceErr = err
	s.serviceInflight = nil
	close(done)
	s.serviceMu.Unlock()
	return catalog, err
}

// RefreshServices drops the cached services catalog and re-fetches it.
func (s *Store) RefreshServices(ctx context.Context) error {
	catalog, err := s.loadServices(ctx)
	if err != nil {
		return err
	}
	s.serviceMu.Lock()
	s.serviceCatalog = catalog
	s.serviceErr = nil
	s.serviceMu.Unlock()
	return nil
}

func (s *Store) loadServices(ctx context.Context) (*ServiceCatalog, error) {
	// Pricing comes from model service links, so the vehicle catalog is a
	// prerequisite here.
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}

	var (
		wg          sync.WaitGroup
		services    []Service
		categories  []ServiceCategory
		serviceErr  error
		categoryErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		services, serviceErr = s.client.FetchServices(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, categoryErr = s.client.FetchServiceCategories(ctx)
	}()
	wg.Wait()

	if serviceErr != nil {
		return nil, serviceErr
	}
	if categoryErr != nil {
		return nil, categoryErr
	}

	pricing := BuildPricingMap(s.Models())
	origin := s.client.Origin()

	details := make([]ServiceDetail, 0, len(services))
	byID := make(map[string]ServiceDetail, len(services))
	for _, service := range services {
		if !service.Status {
			continue
		}
		detail := ServiceDetail{
			Service:      service,
			ThumbnailURL: resolveAssetURL(origin, service.Thumbnail),
		}
		for _, image := range service.ServiceImages {
			img := image
			if resolved := resolveAssetURL(origin, &img); resolved != "" {
				detail.ServiceImageURLs = append(detail.ServiceImageURLs, resolved)
			}
		}
		if price, ok := pricing[service.ID]; ok {
			p := price
			detail.Pricing = &p
		}
		details = append(details, detail)
		byID[service.ID] = detail
	}

	return &ServiceCatalog{
		Services:           details,
		Categories:         categories,
		PricingByServiceID: pricing,
		servicesByID:       byID,
	}, nil
}

// BuildPricingMap picks, per service, the cheapest positive discount price
// offered across all active models.
func BuildPricingMap(models []VehicleModel) map[string]ServicePricing {
	pricing := map[string]ServicePricing{}
	for _, model := range models {
		for _, link := range model.Services {
			candidate := ServicePricing{
				Discount:      link.Discount,
				OriginalPrice: link.OriginalPrice,
				DiscountPrice: link.DiscountPrice,
			}
			existing, ok := pricing[link.ServicesID]
			if !ok || (candidate.DiscountPrice > 0 && candidate.DiscountPrice < existing.DiscountPrice) {
				pricing[link.ServicesID] = candidate
			}
		}
	}
	return pricing
}

// VehicleServices joins a resolved vehicle's service links against the
// services catalog, applying that model's own pricing.
func (c *ServiceCatalog) VehicleServices(match VehicleMatch) []ServiceDetail {
	scoped := make([]ServiceDetail, 0, len(match.Model.Services))
	for _, link := range match.Model.Services {
		detail, ok := c.servicesByID[link.ServicesID]
		if !ok {
			continue
		}
		detail.Pricing = &ServicePricing{
			Discount:      link.Discount,
			OriginalPrice: link.OriginalPrice,
			DiscountPrice: link.DiscountPrice,
		}
		scoped = append(scoped, detail)
	}
	return scoped
}

// NormalizeCategoryKey flattens a category name into a stable filter key.
func NormalizeCategoryKey(value string) string {
	key := strings.ToLower(value)
	key = strings.ReplaceAll(key, "&", " & ")
	return strings.Join(strings.Fields(key), " ")
}
