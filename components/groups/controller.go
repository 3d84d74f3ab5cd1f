package groups

import (
	"context"
	"errors"
	"io"
)

const (
	defaultTemplate = "groups.html"
	indentPerLevel  = 24
)

type viewResolver interface {
	Rows(ctx context.Context, viewer ViewerContext) (View, error)
	Stats(ctx context.Context) (Stats, error)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  viewResolver
	Renderer Renderer
	Template string
	Chart    *DiscountChart
}

// Controller turns service views into template payloads and HTML.
type Controller struct {
	service  viewResolver
	renderer Renderer
	template string
	chart    *DiscountChart
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		chart:    opts.Chart,
	}
}

// ViewPayload resolves the viewer's rows, columns and stats as a JSON-friendly map.
func (c *Controller) ViewPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	if c.service == nil {
		return nil, errors.New("groups: controller requires service")
	}
	view, err := c.service.Rows(ctx, viewer)
	if err != nil {
		return nil, err
	}
	stats, err := c.service.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"view":   view,
		"stats":  stats,
		"locale": resolvedLocale(viewer.Locale),
	}, nil
}

// RenderTemplate renders the tree page for the viewer into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("groups: controller requires renderer")
	}
	if c.service == nil {
		return errors.New("groups: controller requires service")
	}
	view, err := c.service.Rows(ctx, viewer)
	if err != nil {
		return err
	}
	stats, err := c.service.Stats(ctx)
	if err != nil {
		return err
	}
	locale := resolvedLocale(viewer.Locale)
	data := map[string]any{
		"locale":  locale,
		"labels":  Labels(locale),
		"columns": templateColumns(view.Columns),
		"rows":    templateRows(view, locale),
		"stats":   stats,
		"filter":  view.Filter,
		"matched": view.MatchedRows,
		"total":   view.TotalRows,
	}
	if c.chart != nil && len(view.Rows) > 0 {
		html, err := c.chart.Render(ChartBar, view.Rows, locale)
		if err != nil {
			return err
		}
		data["chart_html"] = html
	}
	_, err = c.renderer.Render(c.template, data, out)
	return err
}

func resolvedLocale(locale string) string {
	if locale = normalizeLocale(locale); locale == "" {
		return DefaultLocale
	}
	return locale
}

func templateColumns(cols []Column) map[string]any {
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		out[string(col.Key)] = col.Label
	}
	return out
}

func templateRows(view View, locale string) []map[string]any {
	rows := make([]map[string]any, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, map[string]any{
			"id":               row.ID,
			"level":            row.Level,
			"indent":           row.Level * indentPerLevel,
			"name":             row.Name,
			"description":      row.Description,
			"customer_count":   row.CustomerCount,
			"discount_percent": row.DiscountPercent,
			"benefits":         row.Benefits.Shown,
			"benefit_overflow": row.Benefits.OverflowLabel(),
			"badge_class":      row.BadgeClass,
			"has_children":     row.HasChildren,
			"expanded":         row.Expanded,
			"actions":          RowActions(row.ID, locale),
		})
	}
	return rows
}
