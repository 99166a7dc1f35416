package view

import (
	"context"
	"errors"
	"fmt"

	"fitlog/internal/app"
	"fitlog/internal/domain"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// controller's current mode.
var ErrInvalidTransition = errors.New("action not allowed in current state")

// WeightStore is what the history page needs from the application layer.
type WeightStore interface {
	History(ctx context.Context, userID int64) ([]app.HistoryItem, error)
	Save(ctx context.Context, userID int64, form app.WeightForm) (*domain.WeightEntry, error)
	Remove(ctx context.Context, userID int64, id string) error
}

// HistoryMode is the state of the weight history page.
type HistoryMode int

const (
	HistoryIdle HistoryMode = iota
	HistoryEditing
	HistoryConfirmingDelete
)

func (m HistoryMode) String() string {
	switch m {
	case HistoryEditing:
		return "editing"
	case HistoryConfirmingDelete:
		return "confirmingDelete"
	default:
		return "idle"
	}
}

// Field names an editable weight-entry field.
type Field string

const (
	FieldDate     Field = "date"
	FieldWeight   Field = "weight"
	FieldHeight   Field = "height"
	FieldFat      Field = "fatPercentage"
	FieldMuscle   Field = "musclePercentage"
	FieldVisceral Field = "visceralFat"
)

// Fields lists the editable fields in form order.
var Fields = []Field{FieldDate, FieldWeight, FieldHeight, FieldFat, FieldMuscle, FieldVisceral}

// HistoryController drives the add/edit modal, the calendar picker and the
// delete confirmation of the weight history page.
type HistoryController struct {
	store    WeightStore
	userID   int64
	mode     HistoryMode
	form     app.WeightForm
	calendar bool
	deletion Confirm[string]
}

// NewHistoryController creates an idle controller for userID.
func NewHistoryController(store WeightStore, userID int64) *HistoryController {
	return &HistoryController{store: store, userID: userID}
}

// Mode returns the current state.
func (c *HistoryController) Mode() HistoryMode { return c.mode }

// Form returns the record being edited.
func (c *HistoryController) Form() app.WeightForm { return c.form }

// CalendarOpen reports whether the date picker is showing.
func (c *HistoryController) CalendarOpen() bool { return c.calendar }

// PendingDelete returns the entry awaiting confirmation.
func (c *HistoryController) PendingDelete() (string, bool) { return c.deletion.Pending() }

// Preview is the IMC the form would be saved with.
func (c *HistoryController) Preview() (string, domain.Classification) {
	imc := domain.CalculateIMC(c.form.Weight, c.form.Height)
	return imc, domain.ClassifyIMC(imc)
}

// History lists the entries to render.
func (c *HistoryController) History(ctx context.Context) ([]app.HistoryItem, error) {
	return c.store.History(ctx, c.userID)
}

// RequestAdd opens the modal on an empty record dated today.
func (c *HistoryController) RequestAdd(today string) error {
	if c.mode != HistoryIdle {
		return fmt.Errorf("add from %s: %w", c.mode, ErrInvalidTransition)
	}
	c.form = app.NewEntryDefaults(today)
	c.mode = HistoryEditing
	return nil
}

// RequestEdit opens the modal on a copy of e.
func (c *HistoryController) RequestEdit(e domain.WeightEntry) error {
	if c.mode != HistoryIdle {
		return fmt.Errorf("edit from %s: %w", c.mode, ErrInvalidTransition)
	}
	c.form = app.FormFromEntry(e)
	c.mode = HistoryEditing
	return nil
}

// SetField changes one field of the record being edited.
func (c *HistoryController) SetField(f Field, value string) error {
	if c.mode != HistoryEditing {
		return fmt.Errorf("set %s from %s: %w", f, c.mode, ErrInvalidTransition)
	}
	switch f {
	case FieldDate:
		c.form.Date = value
	case FieldWeight:
		c.form.Weight = value
	case FieldHeight:
		c.form.Height = value
	case FieldFat:
		c.form.FatPercentage = value
	case FieldMuscle:
		c.form.MusclePercentage = value
	case FieldVisceral:
		c.form.VisceralFat = value
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// OpenCalendar shows the date picker.
func (c *HistoryController) OpenCalendar() error {
	if c.mode != HistoryEditing {
		return fmt.Errorf("open calendar from %s: %w", c.mode, ErrInvalidTransition)
	}
	c.calendar = true
	return nil
}

// PickDate sets the date from the picker and closes it.
func (c *HistoryController) PickDate(date string) error {
	if err := c.SetField(FieldDate, date); err != nil {
		return err
	}
	c.calendar = false
	return nil
}

// CloseCalendar hides the date picker.
func (c *HistoryController) CloseCalendar() { c.calendar = false }

// Save sends the whole record to the store. On failure the modal stays open
// so the user can correct the input.
func (c *HistoryController) Save(ctx context.Context) (*domain.WeightEntry, error) {
	if c.mode != HistoryEditing {
		return nil, fmt.Errorf("save from %s: %w", c.mode, ErrInvalidTransition)
	}
	e, err := c.store.Save(ctx, c.userID, c.form)
	if err != nil {
		return nil, err
	}
	c.reset()
	return e, nil
}

// Cancel closes the modal and drops the edits.
func (c *HistoryController) Cancel() {
	if c.mode == HistoryEditing {
		c.reset()
	}
}

// RequestDelete asks for confirmation before removing id.
func (c *HistoryController) RequestDelete(id string) error {
	if c.mode != HistoryIdle {
		return fmt.Errorf("delete from %s: %w", c.mode, ErrInvalidTransition)
	}
	c.deletion.Request(id)
	c.mode = HistoryConfirmingDelete
	return nil
}

// ConfirmDelete removes the pending entry. The controller returns to idle
// whether or not the store succeeds.
func (c *HistoryController) ConfirmDelete(ctx context.Context) error {
	if c.mode != HistoryConfirmingDelete {
		return fmt.Errorf("confirm delete from %s: %w", c.mode, ErrInvalidTransition)
	}
	id, _ := c.deletion.Take()
	c.mode = HistoryIdle
	return c.store.Remove(ctx, c.userID, id)
}

// CancelDelete keeps the entry.
func (c *HistoryController) CancelDelete() {
	if c.mode == HistoryConfirmingDelete {
		c.deletion.Cancel()
		c.mode = HistoryIdle
	}
}

func (c *HistoryController) reset() {
	c.mode = HistoryIdle
	c.form = app.WeightForm{}
	c.calendar = false
}
