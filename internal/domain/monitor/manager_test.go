package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/uicapture/internal/codec"
	"github.com/GriffinCanCode/uicapture/internal/domain/schedule"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/providers/uitree"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

type fakeUploader struct {
	starts atomic.Int32
	runs   atomic.Int32
}

func (f *fakeUploader) Start(context.Context) bool {
	f.starts.Add(1)
	return true
}

func (f *fakeUploader) Run(ctx context.Context) error {
	f.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

type failingStore struct{}

func (failingStore) Save(*types.CaptureRecord) (store.Entry, error) {
	return store.Entry{}, errors.New("disk full")
}

type countingStore struct {
	mu    sync.Mutex
	saved []*types.CaptureRecord
}

func (c *countingStore) Save(rec *types.CaptureRecord) (store.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, rec)
	return store.Entry{Name: "event_x.pb", Size: 10}, nil
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saved)
}

func screen(text string) *uitree.Node {
	return &uitree.Node{
		ClassName:   "android.widget.FrameLayout",
		PackageName: "com.example.mail",
		WindowID:    3,
		Children: []*uitree.Node{
			{Text: uitree.String(text), ClassName: "android.widget.TextView"},
			{Text: uitree.String("Send"), ClassName: "android.widget.Button", Clickable: true},
		},
	}
}

func manualConfig() Config {
	cfg := DefaultConfig()
	cfg.AdaptiveEnabled = false
	cfg.CadenceEnabled = false
	return cfg
}

func newDiskStore(t *testing.T) *store.Store {
	t.Helper()
	c, err := codec.New("lz4")
	require.NoError(t, err)
	st, err := store.New(store.Options{Dir: t.TempDir(), Codec: c})
	require.NoError(t, err)
	return st
}

func TestOnFrameFillsSlot(t *testing.T) {
	m := NewManager(manualConfig(), &countingStore{}, nil, nil)

	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	rec := m.Slot().Peek()
	require.NotNil(t, rec)
	assert.Equal(t, "com.example.mail", rec.PackageName)
	assert.Len(t, rec.TextFocusedData.TextData, 2)
	assert.NotZero(t, m.Slot().Fingerprint())
}

func TestOnFrameLastWriteWins(t *testing.T) {
	m := NewManager(manualConfig(), &countingStore{}, nil, nil)

	m.OnFrame(screen("Inbox"), types.EventContentChanged)
	first := m.Slot().Fingerprint()
	m.OnFrame(screen("Drafts"), types.EventContentChanged)

	assert.NotEqual(t, first, m.Slot().Fingerprint())
	assert.Equal(t, "Drafts", m.Slot().Peek().TextFocusedData.TextData[0].Text)
}

func TestOnFrameSkipsUnreadableRoot(t *testing.T) {
	metrics := monitoring.NewMetrics()
	m := NewManager(manualConfig(), &countingStore{}, nil, nil).WithMetrics(metrics)

	m.OnFrame(&uitree.Node{Unreadable: true}, types.EventContentChanged)
	m.OnFrame(nil, types.EventContentChanged)

	assert.Nil(t, m.Slot().Peek())
	assert.Equal(t, int64(2), metrics.Snapshot().Frames)
}

func TestImportantEventSavesWithoutScheduler(t *testing.T) {
	st := &countingStore{}
	up := &fakeUploader{}
	m := NewManager(manualConfig(), st, up, nil)

	m.OnFrame(screen("Inbox"), types.EventViewClicked)

	assert.Equal(t, 1, st.count())
	assert.Nil(t, m.Slot().Peek())
	assert.Equal(t, int32(1), up.starts.Load())
}

func TestOrdinaryEventDoesNotSave(t *testing.T) {
	st := &countingStore{}
	m := NewManager(manualConfig(), st, nil, nil)

	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	assert.Zero(t, st.count())
}

func TestSaveLatestEmptySlotIsNoop(t *testing.T) {
	st := &countingStore{}
	up := &fakeUploader{}
	metrics := monitoring.NewMetrics()
	m := NewManager(manualConfig(), st, up, nil).WithMetrics(metrics)

	m.SaveLatest(context.Background(), schedule.TriggerStale)

	assert.Zero(t, st.count())
	assert.Zero(t, up.starts.Load())
	assert.Zero(t, metrics.Snapshot().Saves)
}

func TestSaveLatestTakesOnce(t *testing.T) {
	st := &countingStore{}
	m := NewManager(manualConfig(), st, nil, nil)
	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	m.SaveLatest(context.Background(), schedule.TriggerChanged)
	m.SaveLatest(context.Background(), schedule.TriggerCadence)

	assert.Equal(t, 1, st.count())
}

func TestSaveLatestFailureDropsRecord(t *testing.T) {
	up := &fakeUploader{}
	metrics := monitoring.NewMetrics()
	m := NewManager(manualConfig(), failingStore{}, up, nil).WithMetrics(metrics)
	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	m.SaveLatest(context.Background(), schedule.TriggerStale)

	assert.Nil(t, m.Slot().Peek())
	assert.Zero(t, up.starts.Load())
	assert.Equal(t, int64(1), metrics.Snapshot().SaveFailures)
	assert.Empty(t, m.Status().LastSaved)
}

func TestSaveLatestWritesEventFile(t *testing.T) {
	st := newDiskStore(t)
	m := NewManager(manualConfig(), st, nil, nil)
	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	m.SaveLatest(context.Background(), schedule.TriggerStale)

	entries, err := st.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entries[0].Name, m.Status().LastSaved)

	rec, err := st.Load(entries[0].Name)
	require.NoError(t, err)
	assert.Equal(t, "com.example.mail", rec.PackageName)
	assert.Equal(t, "Inbox", rec.TextFocusedData.TextData[0].Text)
}

func TestCaptureNowStartsUploaderEvenWhenEmpty(t *testing.T) {
	st := &countingStore{}
	up := &fakeUploader{}
	m := NewManager(manualConfig(), st, up, nil)

	m.CaptureNow(context.Background())

	assert.Zero(t, st.count())
	assert.Equal(t, int32(1), up.starts.Load())
}

func TestStatus(t *testing.T) {
	m := NewManager(manualConfig(), &countingStore{}, nil, nil)

	s := m.Status()
	assert.False(t, s.Running)
	assert.False(t, s.Pending)

	m.OnFrame(screen("Inbox"), types.EventContentChanged)
	s = m.Status()
	assert.True(t, s.Pending)
	require.NotNil(t, s.Latest)
	assert.Equal(t, m.Slot().Fingerprint(), s.Fingerprint)
}

func TestRunStartsLoopsAndStopsCleanly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cadence = 20 * time.Millisecond
	st := &countingStore{}
	up := &fakeUploader{}
	m := NewManager(cfg, st, up, nil)
	m.OnFrame(screen("Inbox"), types.EventContentChanged)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// The adaptive scheduler captures on its first tick.
	require.Eventually(t, func() bool { return st.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), up.runs.Load())
	assert.True(t, m.Status().Running)

	// Important events go through the running scheduler.
	m.OnFrame(screen("Drafts"), types.EventViewFocused)
	require.Eventually(t, func() bool { return st.count() == 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.False(t, m.Status().Running)
}
