package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/observability"
	"github.com/couchcryptid/fire-detection-etl/internal/pipeline"
)

// --- mocks ---

// mockExtractor serves its events as one batch, then blocks until the context
// is cancelled to simulate waiting for messages.
type mockExtractor struct {
	events []domain.RawEvent
	served atomic.Bool
	err    error
	calls  atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if m.served.CompareAndSwap(false, true) {
		if len(m.events) > batchSize {
			return m.events[:batchSize], nil
		}
		return m.events, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Detection, error) {
	if m.err != nil {
		return domain.Detection{}, m.err
	}
	return domain.Detection{ID: string(raw.Key), RawPayload: raw.Value}, nil
}

type mockLoader struct {
	loaded []domain.Detection
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, detections []domain.Detection) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, detections...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raws := []domain.RawEvent{
		makeRawEvent(t, "det-1"),
		makeRawEvent(t, "det-2"),
	}

	ext := &mockExtractor{events: raws}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, "det-1", ldr.loaded[0].ID)
	assert.Equal(t, "det-2", ldr.loaded[1].ID)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no events, will block
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	require.NoError(t, p.Run(ctx))
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	var committed atomic.Int64
	raw := makeRawEvent(t, "det-3")
	raw.Commit = func(_ context.Context) error {
		committed.Add(1)
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	tfm := &mockTransformer{err: errors.New("bad data")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	// Poison messages are committed so they are not re-read forever.
	assert.Equal(t, int64(1), committed.Load())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var committed atomic.Int64
	raw := makeRawEvent(t, "det-4")
	raw.Topic = "raw-fire-detections"
	raw.Commit = func(_ context.Context) error {
		committed.Add(1)
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, int64(1), committed.Load())
}

func TestPipeline_Run_LoadErrorRetriesWithBackoff(t *testing.T) {
	var committed atomic.Int64
	raw := makeRawEvent(t, "det-5")
	raw.Commit = func(_ context.Context) error {
		committed.Add(1)
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{err: errors.New("sink down")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	// Offsets stay uncommitted so the batch is re-read after restart.
	assert.Equal(t, int64(0), committed.Load())
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{err: errors.New("broker unreachable")}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, quietLogger(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 450*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	// 200ms + 400ms of backoff fit at most twice in 450ms; without backoff
	// the extractor would be hammered thousands of times.
	assert.Less(t, ext.calls.Load(), int64(10))
}

func TestPipeline_RespectsBatchSize(t *testing.T) {
	raws := make([]domain.RawEvent, 5)
	for i := range raws {
		raws[i] = makeRawEvent(t, "det-"+string(rune('a'+i)))
	}

	ext := &mockExtractor{events: raws}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, quietLogger(), newTestMetrics(), 3)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.loaded, 3)
}

func TestMultiLoader(t *testing.T) {
	dets := []domain.Detection{{ID: "det-1"}, {ID: "det-2"}}

	t.Run("fans out to every loader", func(t *testing.T) {
		first := &mockLoader{}
		second := &mockLoader{}
		m := pipeline.NewMultiLoader(first, nil, second)

		require.NoError(t, m.LoadBatch(context.Background(), dets))
		assert.Len(t, first.loaded, 2)
		assert.Len(t, second.loaded, 2)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		failing := &mockLoader{err: errors.New("db down")}
		second := &mockLoader{}
		m := pipeline.NewMultiLoader(failing, second)

		err := m.LoadBatch(context.Background(), dets)
		require.Error(t, err)
		assert.Empty(t, second.loaded)
	})
}

// --- helpers ---

func makeRawEvent(t *testing.T, key string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.RawDetectionRecord{
		Lat:    "40.1997",
		Long:   "-121.5075",
		Date:   "2013-08-17",
		GMT:    "1830",
		Temp:   "330.1",
		SatSrc: "T",
		Conf:   "85",
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(key),
		Value: data,
	}
}
