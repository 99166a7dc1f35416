package view_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitlog/internal/adapter/memory"
	"fitlog/internal/app"
	"fitlog/internal/domain"
	"fitlog/internal/view"
)

func TestHistoryController_AddTwoEntries(t *testing.T) {
	ctx := context.Background()
	c := view.NewHistoryController(app.NewWeightService(memory.New()), 1)

	require.NoError(t, c.RequestAdd("2024-01-01"))
	assert.Equal(t, view.HistoryEditing, c.Mode())
	assert.Equal(t, "173", c.Form().Height)

	require.NoError(t, c.SetField(view.FieldWeight, "80"))
	require.NoError(t, c.SetField(view.FieldHeight, "180"))
	imc, class := c.Preview()
	assert.Equal(t, "24.69", imc)
	assert.Equal(t, "Peso normal", class.Label)

	_, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, view.HistoryIdle, c.Mode())

	require.NoError(t, c.RequestAdd("2024-01-08"))
	require.NoError(t, c.SetField(view.FieldWeight, "78"))
	require.NoError(t, c.SetField(view.FieldHeight, "180"))
	_, err = c.Save(ctx)
	require.NoError(t, err)

	items, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2024-01-08", items[0].Date)
	assert.Equal(t, domain.TrendDecrease, items[0].Trends.Weight)
	assert.Equal(t, domain.TrendDecrease, items[0].Trends.IMC)
	assert.Equal(t, "24.69", items[1].IMC)
	assert.Equal(t, "Peso normal", items[1].Classification.Label)
}

func TestHistoryController_EditSendsFullRecord(t *testing.T) {
	ctx := context.Background()
	svc := app.NewWeightService(memory.New())
	saved, err := svc.Save(ctx, 1, app.WeightForm{Date: "2024-01-01", Weight: "80", Height: "180", FatPercentage: "20"})
	require.NoError(t, err)

	c := view.NewHistoryController(svc, 1)
	require.NoError(t, c.RequestEdit(*saved))
	require.NoError(t, c.SetField(view.FieldWeight, "79"))
	got, err := c.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "20", got.FatPercentage, "untouched fields are kept")

	entries, _ := svc.Entries(ctx, 1)
	require.Len(t, entries, 1)
}

func TestHistoryController_CancelAndCalendar(t *testing.T) {
	c := view.NewHistoryController(app.NewWeightService(memory.New()), 1)

	assert.ErrorIs(t, c.OpenCalendar(), view.ErrInvalidTransition)
	require.NoError(t, c.RequestAdd("2024-01-01"))
	require.NoError(t, c.OpenCalendar())
	assert.True(t, c.CalendarOpen())
	require.NoError(t, c.PickDate("2024-02-02"))
	assert.False(t, c.CalendarOpen())
	assert.Equal(t, "2024-02-02", c.Form().Date)

	assert.ErrorIs(t, c.RequestAdd("2024-01-01"), view.ErrInvalidTransition)
	c.Cancel()
	assert.Equal(t, view.HistoryIdle, c.Mode())
	assert.Empty(t, c.Form().Date)
	assert.ErrorIs(t, c.SetField(view.FieldWeight, "1"), view.ErrInvalidTransition)
}

func TestHistoryController_SaveFailureKeepsModal(t *testing.T) {
	c := view.NewHistoryController(app.NewWeightService(memory.New()), 1)
	require.NoError(t, c.RequestAdd("2024-01-01"))
	require.NoError(t, c.SetField(view.FieldDate, "ayer"))

	_, err := c.Save(context.Background())
	assert.ErrorIs(t, err, app.ErrValidation)
	assert.Equal(t, view.HistoryEditing, c.Mode())
}

func TestHistoryController_Delete(t *testing.T) {
	ctx := context.Background()
	svc := app.NewWeightService(memory.New())
	e, _ := svc.Save(ctx, 1, app.WeightForm{Date: "2024-01-01", Weight: "80"})
	c := view.NewHistoryController(svc, 1)

	require.NoError(t, c.RequestDelete(e.ID))
	assert.Equal(t, view.HistoryConfirmingDelete, c.Mode())
	assert.ErrorIs(t, c.RequestEdit(*e), view.ErrInvalidTransition)
	c.CancelDelete()
	assert.Equal(t, view.HistoryIdle, c.Mode())
	entries, _ := svc.Entries(ctx, 1)
	require.Len(t, entries, 1)

	require.NoError(t, c.RequestDelete(e.ID))
	require.NoError(t, c.ConfirmDelete(ctx))
	assert.Equal(t, view.HistoryIdle, c.Mode())
	_, pending := c.PendingDelete()
	assert.False(t, pending)
	entries, _ = svc.Entries(ctx, 1)
	assert.Empty(t, entries)

	assert.ErrorIs(t, c.ConfirmDelete(ctx), view.ErrInvalidTransition)
}
