package Wizard

import "CSW/Catalog"

// State is the JSON snapshot a client renders the sheet from. Only the data
// for the active step is populated; missing prerequisites turn into
// instructional empty states instead of errors.
type State struct {
	ID         string `json:"id"`
	Step       Step   `json:"step"`
	IsOpen     bool   `json:"isOpen"`
	Title      string `json:"title,omitempty"`
	Subtitle   string `json:"subtitle,omitempty"`
	EmptyState string `json:"emptyState,omitempty"`

	CatalogError string `json:"catalogError,omitempty"`

	Brands    []Catalog.VehicleBrand `json:"brands,omitempty"`
	Models    []Catalog.VehicleModel `json:"models,omitempty"`
	FuelTypes []string               `json:"fuelTypes,omitempty"`

	SelectedBrandSlug string `json:"selectedBrandSlug,omitempty"`
	SelectedModelSlug string `json:"selectedModelSlug,omitempty"`
	SelectedFuelType  string `json:"selectedFuelType,omitempty"`
	SelectionSummary  string `json:"selectionSummary,omitempty"`
	Completed         bool   `json:"completed"`
}

// State renders the current snapshot.
func (w *Wizard) State() State {
	w.mu.Lock()
	step := w.step
	catalogError := w.catalogError
	w.mu.Unlock()

	state := State{
		ID:               w.ID,
		Step:             step,
		IsOpen:           step != StepNone,
		SelectionSummary: w.selection.Summary(),
		Completed:        w.selection.Completed(),
	}

	brand, hasBrand := w.selection.Brand()
	model, hasModel := w.selection.Model()
	if hasBrand {
		state.SelectedBrandSlug = brand.Slug
	}
	if hasModel {
		state.SelectedModelSlug = model.Slug
	}
	state.SelectedFuelType = w.selection.FuelType()

	switch step {
	case StepBrand:
		state.Title = "Popular Brands"
		state.Subtitle = "Tap a brand to continue"
		state.CatalogError = catalogError
		if catalogError == "" {
			state.Brands = w.store.Brands()
		}
	case StepModel:
		state.Subtitle = "Pick the exact model you drive"
		if !hasBrand {
			state.Title = "Choose a model"
			state.EmptyState = "Pick a brand first to see its models."
			break
		}
		state.Title = "Choose a " + brand.Name + " model"
		state.Models = w.store.ModelsForBrand(brand.Slug)
	case StepFuel:
		state.Title = "Select fuel type"
		state.Subtitle = "What fuel does your car use?"
		if !hasModel {
			state.EmptyState = "Pick a model first to see its fuel types."
			break
		}
		state.FuelTypes = model.FuelTypes
	}

	return state
}
