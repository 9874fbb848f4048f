package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordScheduled(SourcePopulate, 7)
	m.Promoted.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "bible_verses_scheduled_total")
	assert.Contains(t, names, "bible_verses_promoted_total")
	assert.Contains(t, names, "bible_verses_pending_reveals")
}

func TestRecordScheduled(t *testing.T) {
	m := Nop()

	m.RecordScheduled(SourceExplicit, 1)
	m.RecordScheduled(SourceCollection, 3)
	m.RecordScheduled(SourcePopulate, 0)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Scheduled.WithLabelValues(SourceExplicit)), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.Scheduled.WithLabelValues(SourceCollection)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.Scheduled.WithLabelValues(SourcePopulate)), 0)
}

func TestRecordWidgetPush(t *testing.T) {
	m := Nop()

	m.RecordWidgetPush(nil)
	m.RecordWidgetPush(nil)
	m.RecordWidgetPush(errors.New("app group unavailable"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.WidgetPushes.WithLabelValues(ResultOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WidgetPushes.WithLabelValues(ResultError)), 0)
}

func TestSetPending(t *testing.T) {
	m := Nop()
	m.SetPending(4)
	assert.InDelta(t, 4, testutil.ToFloat64(m.Pending), 0)
	m.SetPending(0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.Pending), 0)
}
