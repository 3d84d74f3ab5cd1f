package main

import (
	"context"
	"os"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type chartCmd struct {
	sourceFlags

	Kind       string `name:"kind" default:"bar" enum:"bar,pie" help:"Chart type."`
	Out        string `name:"out" short:"o" type:"path" help:"Output HTML file (stdout when empty)."`
	Locale     string `name:"locale" default:"vi" env:"GROUPCTL_LOCALE" help:"Label locale (vi, en)."`
	AssetsHost string `name:"assets-host" env:"GROUPCTL_ECHARTS_ASSETS" help:"Override the ECharts assets host."`
}

func (c *chartCmd) Run(rt *runtime, ctx context.Context) error {
	source, closeSource, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	records, err := source.FetchAll(ctx)
	if err != nil {
		return err
	}
	state := groups.ViewState{Expanded: groups.NewExpansionState(recordIDs(records)...)}
	view := groups.Compute(records, state, c.Locale)

	chart := groups.NewDiscountChart(nil)
	chart.AssetsHost = c.AssetsHost
	html, err := chart.Render(groups.ChartKind(c.Kind), view.Rows, c.Locale)
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = rt.out.WriteString(html)
		return err
	}
	if err := os.WriteFile(c.Out, []byte(html), 0o644); err != nil {
		return fail("write chart: %w", err)
	}
	rt.logger.InfoContext(ctx, "chart written", "path", c.Out, "rows", len(view.Rows))
	return nil
}
