package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/models"
)

func sampleDraft() Draft {
	return NewDraft([]models.ReceiptItem{
		{ID: "a", Description: "Nachos", Price: 8, Quantity: 1, AssignedTo: []string{}},
		{ID: "b", Description: "Taco", Price: 3.5, Quantity: 3, AssignedTo: []string{}},
	})
}

func TestDraftEdits(t *testing.T) {
	d := sampleDraft()

	d2, err := d.SetQuantity("a", 2)
	require.NoError(t, err)
	d2, err = d2.SetPrice("a", 7.25)
	require.NoError(t, err)
	d2 = d2.SetDescription("a", "Big Nachos")

	t.Run("edits are sparse overrides", func(t *testing.T) {
		assert.Len(t, d2.Edits, 1)
		assert.NotContains(t, d2.Edits, "b")
		eff := d2.Effective(d2.Items[0])
		assert.Equal(t, 2, eff.Quantity)
		assert.Equal(t, 7.25, eff.Price)
		assert.Equal(t, "Big Nachos", eff.Description)
		assert.Equal(t, d2.Items[1], d2.Effective(d2.Items[1]))
	})

	t.Run("items are untouched until materialized", func(t *testing.T) {
		assert.Equal(t, 1, d2.Items[0].Quantity)
		assert.Equal(t, 8.0, d2.Items[0].Price)
		assert.Empty(t, d.Edits, "receiver must not change")

		items := d2.Materialize()
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, 7.25, items[0].Price)
		assert.Equal(t, "Big Nachos", items[0].Description)
	})

	t.Run("totals use effective values", func(t *testing.T) {
		assert.Equal(t, 14.5, d2.ItemTotal("a"))
		assert.Equal(t, 25.0, d2.Subtotal())
		assert.Equal(t, 0.0, d2.ItemTotal("missing"))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := d.SetQuantity("a", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = d.SetQuantity("a", MaxQuantity+1)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = d.SetQuantity("a", MaxQuantity)
		assert.NoError(t, err)
		_, err = d.SetPrice("a", -1)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		got, err := d.SetQuantity("zzz", 3)
		require.NoError(t, err)
		assert.Empty(t, got.Edits)
	})
}

func TestDraftAddAndDelete(t *testing.T) {
	d, added := sampleDraft().AddItem()
	require.Len(t, d.Items, 3)
	assert.Equal(t, added, d.Items[2])
	assert.Equal(t, 0.0, added.Price)
	assert.Equal(t, 1, added.Quantity)
	assert.Empty(t, added.AssignedTo)

	d, err := d.SetPrice(added.ID, 4)
	require.NoError(t, err)
	d = d.DeleteItem(added.ID)
	assert.Len(t, d.Items, 2)
	assert.NotContains(t, d.Edits, added.ID)
}

func TestDraftSplitItemKeepsEdits(t *testing.T) {
	d := sampleDraft()
	d, err := d.SetQuantity("b", 2)
	require.NoError(t, err)
	d, err = d.SetPrice("b", 4)
	require.NoError(t, err)
	d = d.SetDescription("b", "Fish Taco")

	d = d.SplitItem("b")

	require.Len(t, d.Items, 3)
	assert.Equal(t, "a", d.Items[0].ID)
	for _, piece := range d.Items[1:] {
		assert.Equal(t, 4.0, piece.Price)
		assert.Equal(t, "Fish Taco", piece.Description)
		assert.Equal(t, 1, piece.Quantity)
	}
	assert.NotContains(t, d.Edits, "b")

	t.Run("unit item is not split", func(t *testing.T) {
		assert.Equal(t, d, d.SplitItem("a"))
	})
}

func TestDraftMergeItems(t *testing.T) {
	d := sampleDraft().SplitItem("b")
	d, err := d.SetPrice("b-split-1", 4.5)
	require.NoError(t, err)
	d, err = d.SetQuantity("a", 2)
	require.NoError(t, err)

	d, merged, err := d.MergeItems([]string{"b-split-0", "b-split-1", "b-split-2"})
	require.NoError(t, err)

	assert.Equal(t, "b", merged.ID)
	assert.Equal(t, 3, merged.Quantity)
	assert.InDelta(t, 11.5/3, merged.Price, 1e-9)
	assert.InDelta(t, 11.5, merged.LineTotal(), 1e-9)
	require.Len(t, d.Items, 2)
	assert.Equal(t, 1, d.Items[0].Quantity, "other items keep their pending edits")
	assert.Equal(t, 2, d.Effective(d.Items[0]).Quantity)
	assert.NotContains(t, d.Edits, "b-split-1")

	_, _, err = d.MergeItems(nil)
	assert.ErrorIs(t, err, ErrNothingToMerge)
}

func TestDraftSplitAfterPartialMerge(t *testing.T) {
	d := NewDraft([]models.ReceiptItem{{ID: "a", Description: "Wings", Price: 2, Quantity: 3, AssignedTo: []string{}}})
	d = d.SplitItem("a")

	d, merged, err := d.MergeItems([]string{"a-split-0", "a-split-1"})
	require.NoError(t, err)
	require.Equal(t, "a", merged.ID)

	d = d.SplitItem("a")

	ids := make([]string, len(d.Items))
	for i, item := range d.Items {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"a-split-3", "a-split-4", "a-split-2"}, ids)

	_, again, err := d.MergeItems([]string{"a-split-2", "a-split-4"})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Quantity)

	t.Run("merge of trailing pieces", func(t *testing.T) {
		d := NewDraft([]models.ReceiptItem{{ID: "a", Price: 2, Quantity: 3, AssignedTo: []string{}}}).SplitItem("a")
		d, _, err := d.MergeItems([]string{"a-split-1", "a-split-2"})
		require.NoError(t, err)

		d = d.SplitItem("a")

		seen := map[string]bool{}
		for _, item := range d.Items {
			assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
			seen[item.ID] = true
		}
		assert.Len(t, seen, 3)
	})
}
