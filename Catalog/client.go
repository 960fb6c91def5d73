package Catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CatalogError carries the upstream failure message verbatim so the UI can
// show it next to a retry button.
type CatalogError struct {
	Message string
}

func (e *CatalogError) Error() string {
	return e.Message
}

// Brand is the raw brand record as returned by the control-panel backend.
type Brand struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Status      bool    `json:"status"`
	Icon        *string `json:"icon"`
	CreatedDate *string `json:"created_date"`
	UpdatedDate *string `json:"updated_date"`
}

// ModelService links a model to a service with model-specific pricing.
type ModelService struct {
	ServicesID    string  `json:"services_id"`
	Discount      float64 `json:"discount"`
	OriginalPrice float64 `json:"original_price"`
	DiscountPrice float64 `json:"discount_price"`
}

// Model is the raw model record as returned by the control-panel backend.
type Model struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	BrandID     int            `json:"brand_id"`
	BrandName   string         `json:"brand_name"`
	BodyType    *string        `json:"body_type"`
	FuelType    []string       `json:"fuel_type"`
	Thumbnail   *string        `json:"thumbnail"`
	Image       *string        `json:"image"`
	Services    []ModelService `json:"services"`
	Status      bool           `json:"status"`
	CreatedDate *string        `json:"created_date"`
	UpdatedDate *string        `json:"updated_date"`
}

type Service struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CategoryID    int      `json:"category_id"`
	CategoryName  string   `json:"category_name"`
	ServiceImages []string `json:"service_images"`
	Thumbnail     *string  `json:"thumbnail"`
	Description   *string  `json:"description"`
	Features      []string `json:"features"`
	TimeTaken     *string  `json:"time_taken"`
	Warranty      *string  `json:"warranty"`
	Status        bool     `json:"status"`
}

type ServiceCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// listEnvelope is the shared response envelope of every catalog listing
// endpoint. Data is decoded per call site.
type listEnvelope struct {
	Success   bool            `json:"success"`
	Count     int             `json:"count"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	Limit     int             `json:"limit"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
}

// Client talks to the control-panel backend that owns brands, models and
// services. The portal never writes to it.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Origin returns the scheme+host of the backend, used to resolve relative
// asset paths (brand icons, thumbnails) into absolute URLs.
func (c *Client) Origin() string {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" {
		return c.BaseURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

func (c *Client) getList(ctx context.Context, path string, params url.Values) (*listEnvelope, error) {
	endpoint := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CSW-Portal/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue processing
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("backend rate limited the request (%s)", path)
	default:
		return nil, fmt.Errorf("backend returned status %d for %s", resp.StatusCode, path)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return &envelope, nil
}

func (c *Client) fetchList(ctx context.Context, path string, params url.Values, fallbackMessage string, out interface{}) error {
	envelope, err := c.getList(ctx, path, params)
	if err != nil {
		return err
	}
	if !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = fallbackMessage
		}
		return &CatalogError{Message: message}
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) FetchBrands(ctx context.Context) ([]Brand, error) {
	params := url.Values{}
	params.Set("sortStatus", "active-first")
	params.Set("sortUpdated", "desc")
	params.Set("limit", "200")

	var brands []Brand
	if err := c.fetchList(ctx, "v1/cars/brands", params, "Unable to fetch car brands.", &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (c *Client) FetchModels(ctx context.Context) ([]Model, error) {
	params := url.Values{}
	params.Set("sortStatus", "active-first")
	params.Set("sortUpdated", "desc")
	params.Set("limit", "500")

	var models []Model
	if err := c.fetchList(ctx, "v1/cars/models", params, "Unable to fetch car models.", &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) FetchServices(ctx context.Context) ([]Service, error) {
	params := url.Values{}
	params.Set("status", "active")
	params.Set("sortUpdated", "desc")
	params.Set("limit", "100")

	var services []Service
	if err := c.fetchList(ctx, "v1/services/details", params, "Unable to fetch services.", &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) FetchServiceCategories(ctx context.Context) ([]ServiceCategory, error) {
	params := url.Values{}
	params.Set("limit", "100")

	var categories []ServiceCategory
	if err := c.fetchList(ctx, "v1/services/service-category", params, "Unable to fetch service categories.", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// resolveAssetURL turns backend-relative asset paths into absolute URLs.
func resolveAssetURL(origin string, path *string) string {
	if path == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(trimmed, "/")
}
