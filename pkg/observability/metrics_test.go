package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeEvent(id string, kind domain.NodeKind, success bool, ts time.Time) *domain.NodeEvent {
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: ts},
		NodeID:    id,
		Kind:      kind,
		Success:   success,
	}
}

func TestNodeCountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	start := time.Now()
	hooks.OnNodeStart(ctx, nodeEvent("a", domain.KindImageGen, false, start))
	assert.Equal(t, 1.0, gaugeValue(t, reg, "mosaic_nodes_in_flight"))

	hooks.OnNodeFinish(ctx, nodeEvent("a", domain.KindImageGen, true, start.Add(time.Second)))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "mosaic_nodes_in_flight"))

	hooks.OnNodeStart(ctx, nodeEvent("b", domain.KindTextVideo, false, start))
	hooks.OnNodeFinish(ctx, nodeEvent("b", domain.KindTextVideo, false, start.Add(time.Second)))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "mosaic_node_executions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			key := ""
			for _, l := range metric.GetLabel() {
				key += l.GetName() + "=" + l.GetValue() + ";"
			}
			counts[key] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["kind=image-gen;outcome=success;"])
	assert.Equal(t, 1.0, counts["kind=text-video;outcome=failure;"])
}

func TestRunOutcomeLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRunFinish(ctx, &domain.RunEvent{Completed: 2})
	hooks.OnRunFinish(ctx, &domain.RunEvent{Failed: 1})
	hooks.OnRunFinish(ctx, &domain.RunEvent{Stopped: true, Failed: 1})

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "mosaic_runs_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["success"])
	assert.Equal(t, 1.0, counts["failure"])
	assert.Equal(t, 1.0, counts["stopped"], "stopped wins over failure")
}

func TestChainFiresEveryHookSet(t *testing.T) {
	var order []string
	mk := func(tag string) domain.LifecycleHooks {
		return domain.LifecycleHooks{
			OnNodeFinish: func(context.Context, *domain.NodeEvent) {
				order = append(order, tag)
			},
		}
	}

	chained := observability.Chain(mk("first"), domain.LifecycleHooks{}, mk("second"))
	chained.OnNodeFinish(context.Background(), &domain.NodeEvent{})

	assert.Equal(t, []string{"first", "second"}, order)
	assert.NotPanics(t, func() {
		chained.OnRunStart(context.Background(), &domain.RunEvent{})
	})
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
