package metrics

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hive/core/registry"
	"github.com/kilianp07/hive/internal/eventbus"
)

func TestPromRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorder(reg)
	require.NoError(t, err)

	require.NoError(t, rec.RecordResolution(registry.Event{Family: "env", Variant: "ChainEnv", Duration: time.Millisecond}))
	require.NoError(t, rec.RecordResolution(registry.Event{Family: "env", Variant: "Atari", Err: fmt.Errorf("x: %w", registry.ErrUnknownVariant)}))
	require.NoError(t, rec.RecordVariants("env", 2))

	expected := `
# HELP hive_resolutions_total Total number of fragment resolutions by family, variant and outcome
# TYPE hive_resolutions_total counter
hive_resolutions_total{family="env",outcome="ok",variant="ChainEnv"} 1
hive_resolutions_total{family="env",outcome="unknown_variant",variant="Atari"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(rec.resolutions, strings.NewReader(expected)))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.duration))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.variants.WithLabelValues("env")))
}

func TestNewPromRecorder_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorder(reg)
	require.NoError(t, err)
	second, err := NewPromRecorder(reg)
	require.NoError(t, err)
	assert.Same(t, first.resolutions, second.resolutions)
}

func TestStartEventCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorder(reg)
	require.NoError(t, err)
	bus := eventbus.New[registry.Event]()

	done := StartEventCollector(context.Background(), bus, rec)
	require.Eventually(t, func() bool {
		return bus.Publish(registry.Event{Family: "agent", Variant: "DQNAgent"}) == 1
	}, time.Second, time.Millisecond)
	bus.Close()
	<-done

	assert.GreaterOrEqual(t, testutil.ToFloat64(rec.resolutions.WithLabelValues("agent", "DQNAgent", "ok")), 1.0)

	closed := StartEventCollector(context.Background(), nil, rec)
	_, ok := <-closed
	assert.False(t, ok)
}

func TestHandlerAndTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPromRecorder(reg)
	require.NoError(t, err)
	require.NoError(t, rec.RecordVariants("schedule", 5))

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, w.Body.String(), `hive_registered_variants{family="schedule"} 5`)

	path := filepath.Join(t.TempDir(), "hive.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hive_registered_variants{family="schedule"} 5`)
}

func TestStartPromServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- StartPromServer(ctx, "127.0.0.1:0", prometheus.NewRegistry()) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

type node struct{ child *node }

// chain registers three families a -> b -> c, each holding the next one.
func chain(t *testing.T, observe func(registry.Event)) (*registry.Registry, registry.Family[*node]) {
	t.Helper()
	r := registry.New(registry.WithObserver(observe))
	c := registry.NewFamily[*node]("c")
	b := registry.NewFamily[*node]("b")
	a := registry.NewFamily[*node]("a")
	build := func(_ context.Context, kw registry.Kwargs) (*node, error) {
		child, err := registry.Value[*node](kw, "child")
		return &node{child: child}, err
	}
	require.NoError(t, c.Register(r, "C", registry.Schema{}, build))
	require.NoError(t, b.Register(r, "B", registry.Schema{registry.Ref("child", c)}, build))
	require.NoError(t, a.Register(r, "A", registry.Schema{registry.Ref("child", b)}, build))
	return r, a
}

func TestPromRecorder_DeepFailureCountedOnce(t *testing.T) {
	rec, err := NewPromRecorder(prometheus.NewRegistry())
	require.NoError(t, err)
	r, a := chain(t, func(ev registry.Event) { require.NoError(t, rec.RecordResolution(ev)) })

	_, err = a.Get(context.Background(), r, map[string]any{"name": "A", "kwargs": map[string]any{
		"child": map[string]any{"name": "B", "kwargs": map[string]any{
			"child": map[string]any{"name": "Nope", "kwargs": map[string]any{}},
		}},
	}}, "")
	require.ErrorIs(t, err, registry.ErrUnknownVariant)

	expected := `
# HELP hive_resolutions_total Total number of fragment resolutions by family, variant and outcome
# TYPE hive_resolutions_total counter
hive_resolutions_total{family="a",outcome="nested_error",variant="A"} 1
hive_resolutions_total{family="b",outcome="nested_error",variant="B"} 1
hive_resolutions_total{family="c",outcome="unknown_variant",variant="Nope"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(rec.resolutions, strings.NewReader(expected)))
	assert.Zero(t, testutil.CollectAndCount(rec.duration))
}

func TestRegisterDroppedEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.New[registry.Event](eventbus.WithBuffer(1))
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	require.NoError(t, RegisterDroppedEvents(reg, bus.Dropped))

	bus.Publish(registry.Event{Family: "env"})
	bus.Publish(registry.Event{Family: "env"})

	expected := `
# HELP hive_dropped_events_total Registry events not delivered to a subscriber because its buffer was full
# TYPE hive_dropped_events_total counter
hive_dropped_events_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hive_dropped_events_total"))
}
