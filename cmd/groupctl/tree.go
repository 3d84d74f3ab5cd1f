package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type treeCmd struct {
	sourceFlags

	ExpandAll bool     `name:"expand-all" short:"a" help:"Expand every group."`
	Expand    []int    `name:"expand" help:"Group ids to expand (repeatable)."`
	Query     string   `name:"query" short:"q" help:"Case-insensitive name/description search."`
	Bracket   string   `name:"bracket" default:"all" enum:"all,none,low,medium,high" help:"Discount bracket."`
	Columns   []string `name:"columns" help:"Columns to print (name,description,customer_count,discount,benefits)."`
	Locale    string   `name:"locale" default:"vi" env:"GROUPCTL_LOCALE" help:"Label locale (vi, en)."`
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	nameStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	discountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (c *treeCmd) Run(rt *runtime, ctx context.Context) error {
	source, closeSource, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	records, err := source.FetchAll(ctx)
	if err != nil {
		return err
	}
	state := groups.ViewState{
		Expanded: groups.NewExpansionState(c.Expand...),
		Filter:   groups.FilterInput{Query: c.Query, Bracket: c.Bracket}.Criteria(),
	}
	if c.ExpandAll {
		state.Expanded.ExpandAll(recordIDs(records))
	}
	if len(c.Columns) > 0 {
		cols, err := groups.ParseColumns(c.Columns)
		if err != nil {
			return err
		}
		state.Columns = cols
	}
	view := groups.Compute(records, state, c.Locale)
	stats := groups.ComputeStats(groups.BuildForest(records))
	renderTree(rt.out, view, stats, c.Locale)
	return nil
}

func recordIDs(records []groups.GroupRecord) []int {
	ids := make([]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}

func renderTree(w io.Writer, view groups.View, stats groups.Stats, locale string) {
	fmt.Fprintln(w, titleStyle.Render(groups.Label("title", locale)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s: %d · %s: %d%% · %s: %d · %s: %d",
		groups.Label("stats.groups", locale), stats.TotalGroups,
		groups.Label("stats.discount", locale), stats.MaxDiscount,
		groups.Label("stats.benefits", locale), stats.TotalBenefits,
		groups.Label("stats.customers", locale), stats.TotalCustomers,
	)))
	fmt.Fprintln(w)

	visible := make(map[groups.ColumnKey]bool, len(view.Columns))
	for _, col := range view.Columns {
		visible[col.Key] = true
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(groups.Label("empty", locale)))
	}
	for _, row := range view.Rows {
		fmt.Fprintln(w, treeLine(row, visible))
	}
	for _, issue := range view.Report.Issues {
		fmt.Fprintln(w, warnStyle.Render("! "+issue.Error()))
	}
}

func treeLine(row groups.ViewRow, visible map[groups.ColumnKey]bool) string {
	marker := "  "
	if row.HasChildren {
		marker = "▸ "
		if row.Expanded {
			marker = "▾ "
		}
	}
	parts := []string{strings.Repeat("  ", row.Level) + marker + nameStyle.Render(row.Name)}
	if visible[groups.ColumnCustomerCount] {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d", row.CustomerCount)))
	}
	if visible[groups.ColumnDiscount] {
		parts = append(parts, discountStyle.Render(fmt.Sprintf("-%d%%", row.DiscountPercent)))
	}
	if visible[groups.ColumnDescription] && row.Description != "" {
		parts = append(parts, mutedStyle.Render(row.Description))
	}
	if visible[groups.ColumnBenefits] && len(row.Benefits.Shown) > 0 {
		benefits := strings.Join(row.Benefits.Shown, ", ")
		if overflow := row.Benefits.OverflowLabel(); overflow != "" {
			benefits += " " + overflow
		}
		parts = append(parts, "["+benefits+"]")
	}
	return strings.Join(parts, "  ")
}
