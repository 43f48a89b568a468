package services

import (
	"context"
	"storyplayer/internal/playback"
	"storyplayer/internal/testutil"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewerService(t *testing.T) (*ViewerService, *StoryService, *clockwork.FakeClock, *testutil.MockMetrics) {
	t.Helper()
	stories, clock := newTestStoryService()
	mustCreate(t, stories, "alice", "https://cdn.example.com/alice/1.jpg")
	mustCreate(t, stories, "alice", "https://cdn.example.com/alice/2.jpg")
	mustCreate(t, stories, "bob", "https://cdn.example.com/bob/1.jpg")

	metrics := testutil.NewMockMetrics()
	viewers := NewViewerService(testConfig(), stories, &testutil.MockWarmer{}, &testutil.MockLogger{}, metrics, clock).(*ViewerService)
	t.Cleanup(viewers.CloseAll)
	return viewers, stories, clock, metrics
}

func TestViewerService_OpenAndGet(t *testing.T) {
	viewers, stories, _, metrics := newTestViewerService(t)

	ctrl, err := viewers.Open(context.Background(), "carol", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, viewers.Count())
	assert.Equal(t, 1, metrics.ActiveSessions())

	got, err := viewers.Get(ctrl.ID())
	require.NoError(t, err)
	assert.Same(t, ctrl, got)
	assert.Equal(t, "carol", got.ViewerID())

	snap, err := ctrl.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", snap.ActiveAuthor.ID)

	assert.Eventually(t, func() bool {
		groups, _ := stories.ListGroupedStories(context.Background(), "carol")
		return groups[1].Stories[0].Viewed
	}, time.Second, 5*time.Millisecond)
}

func TestViewerService_OpenFailureIsNotRegistered(t *testing.T) {
	viewers, _, _, _ := newTestViewerService(t)

	_, err := viewers.Open(context.Background(), "carol", 5)
	assert.ErrorIs(t, err, playback.ErrAuthorOutOfRange)
	assert.Equal(t, 0, viewers.Count())
}

func TestViewerService_Close(t *testing.T) {
	viewers, _, _, metrics := newTestViewerService(t)

	ctrl, err := viewers.Open(context.Background(), "carol", 0)
	require.NoError(t, err)

	require.NoError(t, viewers.Close(ctrl.ID()))
	assert.Equal(t, 0, viewers.Count())
	assert.Equal(t, 0, metrics.ActiveSessions())

	_, err = viewers.Get(ctrl.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, viewers.Close(ctrl.ID()), ErrSessionNotFound)
}

func TestViewerService_SessionEndingUnregisters(t *testing.T) {
	viewers, _, _, _ := newTestViewerService(t)

	ctrl, err := viewers.Open(context.Background(), "carol", 1)
	require.NoError(t, err)
	require.NoError(t, ctrl.OnTap(playback.Vec{X: 10, Y: 10}))

	assert.Eventually(t, func() bool {
		return viewers.Count() == 0
	}, time.Second, 5*time.Millisecond)
	assert.True(t, ctrl.Closed())
}

func TestViewerService_ReapIdle(t *testing.T) {
	viewers, _, clock, _ := newTestViewerService(t)

	// holding keeps the sessions from playing to the end while time moves
	hold := func(ctrl *playback.Controller) {
		require.NoError(t, ctrl.OnHoldStart())
		_, err := ctrl.Snapshot(context.Background())
		require.NoError(t, err)
	}

	idle, err := viewers.Open(context.Background(), "carol", 0)
	require.NoError(t, err)
	hold(idle)
	clock.Advance(4 * time.Minute)
	active, err := viewers.Open(context.Background(), "dave", 0)
	require.NoError(t, err)
	hold(active)
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, viewers.ReapIdle(5*time.Minute))
	_, err = viewers.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = viewers.Get(active.ID())
	assert.NoError(t, err)
}
