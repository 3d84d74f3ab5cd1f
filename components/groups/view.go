package groups

// ViewState is the caller-owned state of one tree view. Every pipeline stage
// reads it explicitly; nothing about the view lives in package globals.
type ViewState struct {
	Expanded ExpansionState `json:"expanded"`
	Columns  []ColumnKey    `json:"columns,omitempty"`
	Filter   FilterCriteria `json:"filter"`
}

// Clone returns a copy that shares no mutable data with s.
func (s ViewState) Clone() ViewState {
	out := ViewState{
		Expanded: s.Expanded.Clone(),
		Columns:  append([]ColumnKey(nil), s.Columns...),
		Filter:   s.Filter,
	}
	out.Filter.CustomerCount = cloneRange(s.Filter.CustomerCount)
	out.Filter.Discount = cloneRange(s.Filter.Discount)
	return out
}

func cloneRange(r IntRange) IntRange {
	var out IntRange
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return out
}

// ViewRow is a visible row shaped for a table renderer.
type ViewRow struct {
	ID              int            `json:"id"`
	Level           int            `json:"level"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	CustomerCount   int            `json:"customer_count"`
	DiscountPercent int            `json:"discount_percent"`
	Benefits        BenefitSummary `json:"benefits"`
	ColorTag        ColorTag       `json:"color_tag"`
	BadgeClass      string         `json:"badge_class"`
	HasChildren     bool           `json:"has_children"`
	Expanded        bool           `json:"expanded"`
}

// Column is a visible column plus its localized header.
type Column struct {
	Key   ColumnKey `json:"key"`
	Label string    `json:"label"`
}

// View is the output of one pipeline run.
type View struct {
	Rows        []ViewRow      `json:"rows"`
	Columns     []Column       `json:"columns"`
	Filter      FilterCriteria `json:"filter"`
	Expanded    ExpansionState `json:"expanded"`
	TotalRows   int            `json:"total_rows"`
	MatchedRows int            `json:"matched_rows"`
	Report      BuildReport    `json:"report"`
}

// VisibleRows runs build, flatten, filter and gate, returning the raw rows.
func VisibleRows(records []GroupRecord, state ViewState) []Row {
	forest := BuildForest(records)
	rows := FilterRows(Flatten(forest.Roots), state.Filter)
	return GateRows(rows, state.Expanded, records)
}

// Compute runs the full pipeline and shapes the result for rendering.
func Compute(records []GroupRecord, state ViewState, locale string) View {
	forest := BuildForest(records)
	flat := Flatten(forest.Roots)
	matched := FilterRows(flat, state.Filter)
	visible := GateRows(matched, state.Expanded, records)
	parents := ParentIDs(records)

	view := View{
		Rows:        make([]ViewRow, 0, len(visible)),
		Filter:      state.Filter,
		Expanded:    state.Expanded.Clone(),
		TotalRows:   len(flat),
		MatchedRows: len(matched),
		Report:      forest.Report,
	}
	for _, row := range visible {
		view.Rows = append(view.Rows, toViewRow(row, parents, state.Expanded))
	}
	for _, key := range normalizeColumns(state.Columns) {
		view.Columns = append(view.Columns, Column{Key: key, Label: ColumnLabel(key, locale)})
	}
	return view
}

func toViewRow(row Row, parents map[int]bool, expanded ExpansionState) ViewRow {
	rec := row.Node.GroupRecord
	return ViewRow{
		ID:              rec.ID,
		Level:           row.Level,
		Name:            rec.Name,
		Description:     rec.Description,
		CustomerCount:   rec.CustomerCount,
		DiscountPercent: rec.DiscountPercent,
		Benefits:        SummarizeBenefits(rec.Benefits),
		ColorTag:        rec.ColorTag,
		BadgeClass:      rec.ColorTag.BadgeClass(),
		HasChildren:     parents[rec.ID],
		Expanded:        expanded.Has(rec.ID),
	}
}
