package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
)

func TestLoggingSinkUnitRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	sink := NewLoggingSink(log)
	sink.LogUnitRun(UnitRecord{
		SetInstanceID: "abc",
		UnitID:        "install_git",
		UnitType:      "command",
		Intent:        config.IntentApply,
		Action:        ActionApply,
		Info:          model.ResultInformation{Code: model.OK},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "install_git", entry["unit"])
	require.Equal(t, "apply", entry["action"])
	require.Equal(t, "ok", entry["code"])
}

func TestLoggingSinkApplySummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	sink := NewLoggingSink(log)
	sink.LogApplySummary(ApplySummary{
		SetInstanceID: "abc",
		Intent:        config.IntentApply,
		Code:          model.CodeSetApplyFailed,
		Source:        model.SourceInternal,
		Apply:         ProcessingSummary{Intent: config.IntentApply, Count: 3, Run: 2, Failed: 1},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "set_apply_failed", entry["code"])
	require.EqualValues(t, 3, entry["apply_count"])
	require.EqualValues(t, 1, entry["apply_failed"])
}

func TestPrometheusSinkCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	sink.LogUnitRun(UnitRecord{Intent: config.IntentApply, Action: ActionTest, Info: model.ResultInformation{Code: model.OK}})
	sink.LogUnitRun(UnitRecord{Intent: config.IntentApply, Action: ActionTest, Info: model.ResultInformation{Code: model.OK}})
	sink.LogApplySummary(ApplySummary{Code: model.OK})

	require.InEpsilon(t, 2.0, testutil.ToFloat64(sink.unitRuns.WithLabelValues("apply", "test", "ok")), 0.001)
	require.InEpsilon(t, 1.0, testutil.ToFloat64(sink.applies.WithLabelValues("ok")), 0.001)
}

func TestMultiSinkFansOut(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	prom, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	multi := Multi{Nop{}, prom}
	multi.LogApplySummary(ApplySummary{Code: model.CodeDependencyCycle})

	require.InEpsilon(t, 1.0, testutil.ToFloat64(prom.applies.WithLabelValues("dependency_cycle")), 0.001)
}
