package testutil

import (
	"context"
	"storyplayer/internal/models"
	"storyplayer/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                 sync.Mutex
	Requests           int
	CacheHits          int
	CacheMisses        int
	Persisted          int
	Transitions        map[string]int
	Preloads           map[string]int
	MarkViewedFailures int
	DeleteFailures     int
	SessionsActive     int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Transitions: make(map[string]int),
		Preloads:    make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_, _ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) IncTransitions(cause string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions[cause]++
}

func (m *MockMetrics) IncPreload(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Preloads[result]++
}

func (m *MockMetrics) IncMarkViewedFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkViewedFailures++
}

func (m *MockMetrics) IncDeleteFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteFailures++
}

func (m *MockMetrics) SetSessionsActive(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsActive = count
}

func (m *MockMetrics) TransitionCount(cause string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Transitions[cause]
}

func (m *MockMetrics) PreloadCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Preloads[result]
}

func (m *MockMetrics) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SessionsActive
}

func (m *MockMetrics) FailureCounts() (markViewed, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MarkViewedFailures, m.DeleteFailures
}

// MockStoryAPI is an in-memory story data layer with injectable failures.
// ListGroupedStories hands out deep copies so a session never shares
// stories with the test.
type MockStoryAPI struct {
	mu        sync.Mutex
	Groups    []*models.StoryGroup
	ListErr   error
	MarkErr   error
	DeleteErr error
	Marked    []int64
	Deleted   []int64
	Created   []*models.NewStory
	nextID    int64
}

func (m *MockStoryAPI) ListGroupedStories(_ context.Context) ([]*models.StoryGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*models.StoryGroup, 0, len(m.Groups))
	for _, g := range m.Groups {
		cp := &models.StoryGroup{Author: g.Author, Stories: make([]*models.Story, 0, len(g.Stories))}
		for _, s := range g.Stories {
			story := *s
			cp.Stories = append(cp.Stories, &story)
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MockStoryAPI) MarkStoryViewed(_ context.Context, storyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Marked = append(m.Marked, storyID)
	return m.MarkErr
}

func (m *MockStoryAPI) DeleteStory(_ context.Context, storyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, storyID)
	for _, g := range m.Groups {
		g.Remove(storyID)
	}
	return nil
}

func (m *MockStoryAPI) CreateStory(_ context.Context, in *models.NewStory) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, in)
	m.nextID++
	return &models.Story{ID: 1000 + m.nextID, MediaURL: in.MediaURL, MediaKind: models.MediaKind(in.MediaKind)}, nil
}

func (m *MockStoryAPI) MarkedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.Marked...)
}

func (m *MockStoryAPI) DeletedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.Deleted...)
}

// MockWarmer records warm requests. Fail makes Warm return an error for the
// listed URLs; Block, when set, holds every call until it is closed.
type MockWarmer struct {
	mu    sync.Mutex
	Calls []string
	Fail  map[string]error
	Block chan struct{}
}

func (m *MockWarmer) Warm(ctx context.Context, url string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, url)
	err := m.Fail[url]
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockWarmer) Requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	return true
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
