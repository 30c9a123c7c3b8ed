package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/amebel/hyperon-experimental/pkg/atom"
	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/interpreter"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "metta",
		DurationBuckets: []float64{0.01, 0.1, 1},
		StepBuckets:     []float64{10, 100, 1000},
	}
}

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, registry)

	if c.Registry() != registry {
		t.Error("collector does not use the given registry")
	}
	if cfg.Namespace != "" {
		t.Error("NewCollector modified the caller's configuration")
	}
	if c.config.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want default", c.config.Namespace)
	}

	if NewCollector(nil, nil).Registry() == nil {
		t.Error("NewCollector(nil, nil) has no registry")
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordEvaluation(interpreter.OutcomeComplete, 42, 1, 5*time.Millisecond)
	c.RecordEvaluation(interpreter.OutcomeComplete, 7, 2, 50*time.Millisecond)
	c.RecordEvaluation(interpreter.OutcomeBudgetExhausted, 1000, 0, time.Second)

	if got := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues(interpreter.OutcomeComplete)); got != 2 {
		t.Errorf("complete evaluations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues(interpreter.OutcomeBudgetExhausted)); got != 1 {
		t.Errorf("exhausted evaluations = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.evaluationMetrics.evaluationSteps); got != 1 {
		t.Errorf("step histogram series = %d, want 1", got)
	}
}

func TestCollector_RecordGroundedCall(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordGroundedCall("+", false)
	c.RecordGroundedCall("+", false)
	c.RecordGroundedCall("/", true)

	calls := c.evaluationMetrics.groundedCallsTotal
	if got := testutil.ToFloat64(calls.WithLabelValues("+", "success")); got != 2 {
		t.Errorf("+ success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(calls.WithLabelValues("/", "error")); got != 1 {
		t.Errorf("/ error = %v, want 1", got)
	}
}

func TestCollector_OperationCardinality(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	for i := 0; i < maxOperationLabels+10; i++ {
		c.RecordGroundedCall(fmt.Sprintf("op-%d", i), false)
	}
	if got := testutil.ToFloat64(c.evaluationMetrics.groundedCallsTotal.WithLabelValues("other", "success")); got != 10 {
		t.Errorf("other = %v, want 10", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	c.RecordEvaluation(interpreter.OutcomeComplete, 1, 1, time.Millisecond)
	c.RecordGroundedCall("+", false)
	c.RecordSnapshot("kb", 3, time.Millisecond, nil)
	c.RecordReload(2, nil)
	stop := c.ObserveSpace("self", space.NewGroundingSpace(nil))
	stop()

	if got := testutil.CollectAndCount(c.evaluationMetrics.evaluationsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d evaluation series", got)
	}
	if got := testutil.CollectAndCount(c.snapshotMetrics.snapshotsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d snapshot series", got)
	}
}

func TestCollector_ObserveSpace(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	sp := space.FromAtoms(nil, atom.Sym("a"))

	stop := c.ObserveSpace("self", sp)
	atoms := c.spaceMetrics.atoms.WithLabelValues("self")
	if got := testutil.ToFloat64(atoms); got != 1 {
		t.Errorf("initial atoms = %v, want 1", got)
	}

	sp.Add(atom.Sym("b"))
	sp.Add(atom.Sym("c"))
	sp.Remove(atom.Sym("a"))
	sp.Replace(atom.Sym("b"), atom.Sym("d"))

	if got := testutil.ToFloat64(atoms); got != 2 {
		t.Errorf("atoms = %v, want 2", got)
	}
	mods := c.spaceMetrics.modifications
	if got := testutil.ToFloat64(mods.WithLabelValues("self", string(space.EventAdd))); got != 2 {
		t.Errorf("add modifications = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mods.WithLabelValues("self", string(space.EventReplace))); got != 1 {
		t.Errorf("replace modifications = %v, want 1", got)
	}

	stop()
	sp.Add(atom.Sym("e"))
	if got := testutil.ToFloat64(atoms); got != 2 {
		t.Errorf("atoms after stop = %v, want 2", got)
	}
}

func TestCollector_RecordSnapshotAndReload(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordSnapshot("kb", 12, 10*time.Millisecond, nil)
	c.RecordSnapshot("kb", 0, time.Millisecond, errors.New("disk full"))
	c.RecordReload(3, nil)
	c.RecordReload(0, errors.New("parse error"))

	sm := c.snapshotMetrics
	if got := testutil.ToFloat64(sm.snapshotsTotal.WithLabelValues("kb", "success")); got != 1 {
		t.Errorf("successful snapshots = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.snapshotsTotal.WithLabelValues("kb", "error")); got != 1 {
		t.Errorf("failed snapshots = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.snapshotAtoms.WithLabelValues("kb")); got != 12 {
		t.Errorf("snapshot atoms = %v, want 12", got)
	}
	if got := testutil.ToFloat64(sm.reloadedFiles); got != 3 {
		t.Errorf("reloaded files = %v, want 3", got)
	}
	if got := testutil.ToFloat64(sm.reloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}

func TestCollector_AsInterpreterRecorder(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	in, err := interpreter.New(nil, nil, interpreter.WithRecorder(c))
	if err != nil {
		t.Fatal(err)
	}

	plus := atom.NewOperation("+", nil, func(_ context.Context, args []atom.Atom) ([]atom.Atom, error) {
		return []atom.Atom{atom.Int(3)}, nil
	})
	if _, err := in.Collect(context.Background(), space.NewGroundingSpace(nil),
		atom.Expr(plus, atom.Int(1), atom.Int(2)), 0); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(c.evaluationMetrics.evaluationsTotal.WithLabelValues(interpreter.OutcomeComplete)); got != 1 {
		t.Errorf("complete evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.evaluationMetrics.groundedCallsTotal.WithLabelValues("+", "success")); got != 1 {
		t.Errorf("grounded calls = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordGroundedCall("println!", false)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "test_metta_grounded_calls_total") {
		t.Errorf("body does not expose grounded calls:\n%s", body)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)
	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("limiter rejected values under the limit")
	}
	if !cl.Allow("a") {
		t.Error("limiter rejected a known value")
	}
	if cl.Allow("c") {
		t.Error("limiter accepted a value over the limit")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
