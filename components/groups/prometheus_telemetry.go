package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusTelemetry counts events by name and tracks pipeline sizes.
type PrometheusTelemetry struct {
	events  *prometheus.CounterVec
	visible prometheus.Histogram
	issues  *prometheus.GaugeVec
}

// NewPrometheusTelemetry registers its collectors on reg. Collectors already
// registered by an earlier instance are reused.
func NewPrometheusTelemetry(reg prometheus.Registerer) (*PrometheusTelemetry, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "customer_groups",
		Name:      "events_total",
		Help:      "Customer group tree events by name.",
	}, []string{"event"})
	visible := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "customer_groups",
		Name:      "visible_rows",
		Help:      "Rows visible after filtering and expansion gating.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	issues := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "customer_groups",
		Name:      "integrity_issues",
		Help:      "Records excluded from the tree at the last reload, by kind.",
	}, []string{"kind"})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if visible, err = register(reg, visible); err != nil {
		return nil, err
	}
	if issues, err = register(reg, issues); err != nil {
		return nil, err
	}
	return &PrometheusTelemetry{events: events, visible: visible, issues: issues}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("groups: register metrics: %w", err)
	}
	return c, nil
}

// Record implements Telemetry.
func (p *PrometheusTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	p.events.WithLabelValues(event).Inc()
	switch event {
	case EventRowsResolved:
		if n, ok := payload["visible"].(int); ok {
			p.visible.Observe(float64(n))
		}
	case EventDatasetReloaded:
		p.issues.Reset()
		if kinds, ok := payload["issues_by_kind"].(map[IssueKind]int); ok {
			for kind, n := range kinds {
				p.issues.WithLabelValues(string(kind)).Set(float64(n))
			}
		}
	}
}
