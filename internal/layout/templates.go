package layout

import "fmt"

// DefaultLayout is the layout of the sample row of a new document.
const DefaultLayout = "50-50"

func content(label, column, row string) Slot {
	return Slot{Role: RoleContent, Label: label, Column: column, Row: row}
}

func spacer() Slot {
	return Slot{Role: RoleSpacer}
}

// columns builds n plain content slots laid out left to right.
func columns(n int) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = content(fmt.Sprintf("Item %d", i+1), "", "")
	}
	return slots
}

// sideStack is one tall slot on the left and two stacked slots on the right.
func sideStack(first, second, third string) []Slot {
	return []Slot{
		content(first, "1", "1 / 3"),
		content(second, "2", "1"),
		content(third, "2", "2"),
	}
}

// Builtin returns the templates shipped with the widget in picker order.
func Builtin() []Template {
	return []Template{
		{ID: "100", Name: "Single", Columns: "1fr", Slots: columns(1)},
		{ID: "50-50", Name: "Half & Half", Columns: "1fr 1fr", Slots: columns(2)},
		{ID: "50p-50l", Name: "Portrait + Landscape", Columns: "1fr 1fr", Slots: columns(2)},
		{
			ID: "25s-75l", Name: "Stack + Landscape", Columns: "1fr 3fr", Rows: "1fr 1fr",
			Slots: []Slot{
				content("Item 1", "1", "1"),
				content("Item 2", "1", "2"),
				content("Item 3", "2", "1 / 3"),
			},
		},
		{ID: "67l-33l", Name: "2/3 + 1/3", Columns: "2fr 1fr", Slots: columns(2)},
		{ID: "33l-67l", Name: "1/3 + 2/3", Columns: "1fr 2fr", Slots: columns(2)},
		{
			ID: "67-left", Name: "2/3 Left Aligned", Columns: "2fr 1fr",
			Slots: []Slot{content("Item 1", "1", ""), spacer()},
		},
		{
			ID: "67-right", Name: "2/3 Right Aligned", Columns: "1fr 2fr",
			Slots: []Slot{spacer(), content("Item 1", "2", "")},
		},
		{ID: "33-33-33", Name: "3 Columns", Columns: "1fr 1fr 1fr", Slots: columns(3)},
		{
			ID: "50-25-25", Name: "Left + Stack", Columns: "1fr 1fr", Rows: "1fr 1fr",
			Slots: sideStack("Item 1", "Item 2", "Item 3"),
		},
		{
			ID: "25-25-50", Name: "Right + Stack", Columns: "1fr 1fr", Rows: "1fr 1fr",
			Slots: []Slot{
				content("Item 1", "1", "1"),
				content("Item 2", "1", "2"),
				content("Item 3", "2", "1 / 3"),
			},
		},
		{ID: "25-50-25", Name: "Side + Center + Side", Columns: "1fr 2fr 1fr", Slots: columns(3)},
		{ID: "25-25-25-25", Name: "4 Columns", Columns: "1fr 1fr 1fr 1fr", Slots: columns(4)},
		{
			ID: "70-15-15", Name: "Hero + Grid", Columns: "7fr 3fr", Rows: "1fr 1fr",
			Slots: sideStack("Feature", "Small 1", "Small 2"),
		},
		{ID: "40-30-30", Name: "40 / 30 / 30", Columns: "4fr 3fr 3fr", Slots: columns(3)},
		{ID: "60-20-20", Name: "Asymmetric Emphasis", Columns: "3fr 1fr 1fr", Slots: columns(3)},
		{
			ID: "irregular-6", Name: "Pinterest Style (5)", Columns: "2fr 1fr 1fr", Rows: "1fr 1fr",
			Slots: []Slot{
				content("Feature", "1", "1 / 3"),
				content("Item 2", "2", "1"),
				content("Item 3", "3", "1"),
				content("Item 4", "2", "2"),
				content("Item 5", "3", "2"),
			},
		},
		{
			ID: "two-row-6", Name: "Two Row Grid (6)", Columns: "1fr 1fr 1fr 1fr", Rows: "1fr 1fr",
			Slots: []Slot{
				content("Hero", "1 / 3", "1"),
				content("Tall", "3", "1 / 3"),
				content("Top", "4", "1"),
				content("Left", "1", "2"),
				content("Right", "2", "2"),
				content("Bottom", "4", "2"),
			},
		},
	}
}

// Default returns a catalog of the builtin templates.
func Default() *Catalog {
	c, err := New(Builtin()...)
	if err != nil {
		panic(err)
	}
	return c
}
