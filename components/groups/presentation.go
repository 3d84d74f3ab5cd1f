package groups

import "strconv"

// VisibleBenefits is how many benefits a row shows before collapsing the rest.
const VisibleBenefits = 2

// BadgeClass maps a palette key to the badge CSS classes. Unknown keys use
// the secondary palette.
func (c ColorTag) BadgeClass() string {
	switch c {
	case ColorWarning, ColorPrimary, ColorSuccess, ColorInfo:
		return "bg-" + string(c) + "/10 text-" + string(c) + " border-0"
	default:
		return "bg-secondary text-secondary-foreground"
	}
}

// BenefitSummary is the compact benefit cell: the first few items plus an
// overflow count.
type BenefitSummary struct {
	Shown    []string `json:"shown"`
	Overflow int      `json:"overflow,omitempty"`
}

// OverflowLabel renders the "+N" badge, or "" when nothing is hidden.
func (b BenefitSummary) OverflowLabel() string {
	if b.Overflow <= 0 {
		return ""
	}
	return "+" + strconv.Itoa(b.Overflow)
}

// SummarizeBenefits keeps the first VisibleBenefits entries.
func SummarizeBenefits(benefits []string) BenefitSummary {
	if len(benefits) <= VisibleBenefits {
		return BenefitSummary{Shown: append([]string{}, benefits...)}
	}
	return BenefitSummary{
		Shown:    append([]string{}, benefits[:VisibleBenefits]...),
		Overflow: len(benefits) - VisibleBenefits,
	}
}

// RowAction is one entry in a row's action menu.
type RowAction struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Href   string `json:"href,omitempty"`
	Method string `json:"method,omitempty"`
	Danger bool   `json:"danger,omitempty"`
}

// RowActions returns the view/edit/delete menu for a group.
func RowActions(id int, locale string) []RowAction {
	base := "/admin/customer-groups/" + strconv.Itoa(id)
	return []RowAction{
		{Key: "view", Label: Label("action.view", locale), Href: base + "/customers", Method: "GET"},
		{Key: "edit", Label: Label("action.edit", locale), Href: base + "/edit", Method: "GET"},
		{Key: "delete", Label: Label("action.delete", locale), Href: base, Method: "DELETE", Danger: true},
	}
}
