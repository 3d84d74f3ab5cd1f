package groups

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartKind selects the chart rendered by DiscountChart.
type ChartKind string

const (
	// ChartBar plots customers and discount per group.
	ChartBar ChartKind = "bar"
	// ChartPie plots each group's share of customers.
	ChartPie ChartKind = "pie"
)

// DiscountChart renders server-side ECharts markup for a set of rows.
type DiscountChart struct {
	Theme      string
	AssetsHost string
	Cache      RenderCache
}

// NewDiscountChart builds a chart renderer with the Westeros theme.
func NewDiscountChart(cache RenderCache) *DiscountChart {
	return &DiscountChart{Theme: types.ThemeWesteros, Cache: cache}
}

// Render returns the chart HTML for rows, indenting names by level.
func (c *DiscountChart) Render(kind ChartKind, rows []ViewRow, locale string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("groups: chart needs at least one row")
	}
	render := func() (string, error) {
		switch kind {
		case ChartBar, "":
			return c.renderBar(rows, locale)
		case ChartPie:
			return c.renderPie(rows, locale)
		default:
			return "", fmt.Errorf("groups: unsupported chart type %q", kind)
		}
	}
	if c.Cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", kind, normalizeLocale(locale), c.Theme, rowsHash(rows))
	return c.Cache.GetOrRender(key, render)
}

func (c *DiscountChart) renderBar(rows []ViewRow, locale string) (string, error) {
	labels := make([]string, len(rows))
	customers := make([]opts.BarData, len(rows))
	discounts := make([]opts.BarData, len(rows))
	for i, row := range rows {
		labels[i] = axisLabel(row)
		customers[i] = opts.BarData{Name: row.Name, Value: row.CustomerCount}
		discounts[i] = opts.BarData{Name: row.Name, Value: row.DiscountPercent}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(c.globalOptions(Label("title", locale))...)
	bar.SetXAxis(labels)
	bar.AddSeries(ColumnLabel(ColumnCustomerCount, locale), customers)
	bar.AddSeries(ColumnLabel(ColumnDiscount, locale), discounts)
	return renderChart(bar)
}

func (c *DiscountChart) renderPie(rows []ViewRow, locale string) (string, error) {
	data := make([]opts.PieData, len(rows))
	for i, row := range rows {
		data[i] = opts.PieData{Name: row.Name, Value: row.CustomerCount}
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOptions(Label("stats.customers", locale))...)
	pie.AddSeries(ColumnLabel(ColumnCustomerCount, locale), data)
	return renderChart(pie)
}

func (c *DiscountChart) globalOptions(title string) []charts.GlobalOpts {
	theme := c.Theme
	if theme == "" {
		theme = types.ThemeWesteros
	}
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.AssetsHost != "" {
		initOpts.AssetsHost = c.AssetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func axisLabel(row ViewRow) string {
	return strings.Repeat("  ", row.Level) + row.Name
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
