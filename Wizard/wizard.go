package Wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CSW/Catalog"
)

// Step identifies the pane the selection sheet is showing. StepNone means
// the sheet is closed.
type Step string

const (
	StepNone  Step = ""
	StepBrand Step = "brand"
	StepModel Step = "model"
	StepFuel  Step = "fuel"
)

var stepSequence = []Step{StepBrand, StepModel, StepFuel}

var (
	ErrUnknownBrand  = errors.New("unknown brand")
	ErrUnknownModel  = errors.New("unknown model")
	ErrUnknownFuel   = errors.New("unknown fuel type")
	ErrBrandRequired = errors.New("no brand selected")
	ErrModelRequired = errors.New("no model selected")
)

// Wizard drives one visitor's pass through the brand -> model -> fuel sheet.
// Selecting an item auto-advances; selecting the final fuel type closes the
// sheet, there is no confirm step.
type Wizard struct {
	ID        string
	store     *Catalog.Store
	selection *Catalog.Selection

	mu           sync.Mutex
	step         Step
	catalogError string
	lastActive   time.Time
}

func New(id string, store *Catalog.Store) *Wizard {
	return &Wizard{
		ID:         id,
		store:      store,
		selection:  Catalog.NewSelection(store),
		step:       StepNone,
		lastActive: time.Now(),
	}
}

func (w *Wizard) Selection() *Catalog.Selection {
	return w.selection
}

// Open shows the sheet at the first incomplete step instead of always
// restarting at the brand pane.
func (w *Wizard) Open(ctx context.Context) {
	next := StepBrand
	if _, ok := w.selection.Brand(); ok {
		next = StepModel
		if _, ok := w.selection.Model(); ok {
			next = StepFuel
		}
	}
	w.GoToStep(ctx, next)
}

// GoToStep moves the sheet. Entering the brand step triggers the idempotent
// catalog load; a failure is held on the wizard so the pane can render the
// message with a retry affordance.
func (w *Wizard) GoToStep(ctx context.Context, step Step) {
	w.mu.Lock()
	w.step = step
	w.lastActive = time.Now()
	w.mu.Unlock()

	if step == StepBrand {
		w.loadCatalog(ctx)
	}
}

// Retry re-invokes the same idempotent catalog load the brand step uses.
func (w *Wizard) Retry(ctx context.Context) {
	w.loadCatalog(ctx)
}

func (w *Wizard) loadCatalog(ctx context.Context) {
	err := w.store.Ensure(ctx)
	w.mu.Lock()
	if err != nil {
		w.catalogError = err.Error()
	} else {
		w.catalogError = ""
	}
	w.mu.Unlock()
}

// Back moves one step left, or closes the sheet when already at the brand
// step.
func (w *Wizard) Back(ctx context.Context) {
	w.mu.Lock()
	current := w.step
	w.mu.Unlock()

	if current == StepNone {
		return
	}
	if current == StepBrand {
		w.Close()
		return
	}
	for i, step := range stepSequence {
		if step == current {
			w.GoToStep(ctx, stepSequence[i-1])
			return
		}
	}
}

func (w *Wizard) Close() {
	w.mu.Lock()
	w.step = StepNone
	w.lastActive = time.Now()
	w.mu.Unlock()
}

// SelectBrand picks a brand by slug and advances to the model step.
func (w *Wizard) SelectBrand(ctx context.Context, slug string) error {
	brand, ok := w.store.FindBrand(slug)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBrand, slug)
	}
	w.selection.SelectBrand(brand)
	w.GoToStep(ctx, StepModel)
	return nil
}

// SelectModel picks a model of the selected brand and advances to the fuel
// step. A model of a different brand is rejected, the guard in the selection
// keeps a stale pick from applying after the brand changed.
func (w *Wizard) SelectModel(ctx context.Context, modelSlug string) error {
	brand, ok := w.selection.Brand()
	if !ok {
		return ErrBrandRequired
	}
	model, ok := w.store.FindModel(brand.Slug, modelSlug)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, modelSlug)
	}
	if !w.selection.SelectModel(model) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, modelSlug)
	}
	w.GoToStep(ctx, StepFuel)
	return nil
}

// SelectFuel completes the selection and closes the sheet.
func (w *Wizard) SelectFuel(fuelType string) error {
	if _, ok := w.selection.Model(); !ok {
		return ErrModelRequired
	}
	if !w.selection.SetFuelType(fuelType) {
		return fmt.Errorf("%w: %s", ErrUnknownFuel, fuelType)
	}
	w.Close()
	return nil
}

// ResetSelection clears the vehicle tuple; the sheet stays where it is.
func (w *Wizard) ResetSelection() {
	w.selection.Reset()
	w.mu.Lock()
	w.lastActive = time.Now()
	w.mu.Unlock()
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}
