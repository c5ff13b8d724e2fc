package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/sieve/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "metrics",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_RecordVerdict(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordVerdict("Error", "emitted", "Store", time.Microsecond)
	collector.RecordVerdict("Error", "emitted", "Store", time.Microsecond)
	collector.RecordVerdict("Debug", "tag", "Cache", time.Microsecond)
	collector.RecordVerdict("Debug", "master", "", time.Microsecond)

	vm := collector.verdictMetrics
	if got := testutil.ToFloat64(vm.verdictsTotal.WithLabelValues("Error", "emitted")); got != 2 {
		t.Errorf("verdicts{Error,emitted} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(vm.verdictsTotal.WithLabelValues("Debug", "tag")); got != 1 {
		t.Errorf("verdicts{Debug,tag} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.suppressedOwner.WithLabelValues("Cache")); got != 1 {
		t.Errorf("suppressed{Cache} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.suppressedOwner.WithLabelValues("none")); got != 1 {
		t.Errorf("suppressed{none} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(vm.suppressedOwner); got != 2 {
		t.Errorf("suppressed owner series = %d, want 2 (emitted lines are not counted)", got)
	}
}

func TestCollector_OwnerCardinalityLimited(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	for i := 0; i < maxOwnerCardinality+10; i++ {
		collector.RecordVerdict("Info", "class", fmt.Sprintf("Type%d", i), 0)
	}

	if got := testutil.ToFloat64(collector.verdictMetrics.suppressedOwner.WithLabelValues("other")); got != 10 {
		t.Errorf("suppressed{other} = %v, want 10", got)
	}
}

func TestCollector_SinkAndPolicy(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordSinkWrite("sqlite")
	collector.RecordSinkWrite("sqlite")
	collector.RecordSinkError("sqlite")
	collector.RecordPruned(5)
	collector.RecordPruned(0)
	collector.RecordPolicyReload("file", nil)
	collector.RecordPolicyReload("file", errors.New("bad yaml"))

	sm := collector.sinkMetrics
	if got := testutil.ToFloat64(sm.writesTotal.WithLabelValues("sqlite")); got != 2 {
		t.Errorf("sink writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sm.errorsTotal.WithLabelValues("sqlite")); got != 1 {
		t.Errorf("sink errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.prunedTotal); got != 5 {
		t.Errorf("pruned = %v, want 5", got)
	}

	pm := collector.policyMetrics
	if got := testutil.ToFloat64(pm.reloadsTotal.WithLabelValues("file", "success")); got != 1 {
		t.Errorf("reloads{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pm.reloadsTotal.WithLabelValues("file", "failure")); got != 1 {
		t.Errorf("reloads{failure} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pm.lastReload.WithLabelValues("file")); got == 0 {
		t.Error("last reload timestamp not set")
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordVerdict("Error", "emitted", "Store", time.Millisecond)
	collector.RecordSinkWrite("stdout")
	if got := testutil.CollectAndCount(collector.verdictMetrics.verdictsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d series", got)
	}

	var nilCollector *Collector
	nilCollector.RecordVerdict("Error", "emitted", "Store", time.Millisecond)
	nilCollector.RecordSinkError("stdout")
	nilCollector.RecordPolicyReload("git", nil)
	nilCollector.RecordPruned(1)
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordVerdict("Warning", "emitted", "Store", time.Microsecond)

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("GET metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	if !strings.Contains(string(body), "test_metrics_verdicts_total") {
		t.Errorf("metrics output missing verdicts_total:\n%s", body)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("first two values should be allowed")
	}
	if cl.Allow("c") {
		t.Error("third value allowed past limit")
	}
	if !cl.Allow("a") {
		t.Error("known value rejected")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
