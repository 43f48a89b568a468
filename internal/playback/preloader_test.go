package playback

import (
	"context"
	"errors"
	"storyplayer/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookahead_CurrentAndNextAuthor(t *testing.T) {
	groups := testGroups(5, 3)

	urls := Lookahead(groups, Cursor{Author: 0, Story: 0}, 3, 2)
	assert.Equal(t, []string{
		"https://cdn.test/0/1.jpg",
		"https://cdn.test/0/2.jpg",
		"https://cdn.test/0/3.jpg",
		"https://cdn.test/1/0.jpg",
		"https://cdn.test/1/1.jpg",
	}, urls)
}

func TestLookahead_NearEndOfAuthor(t *testing.T) {
	groups := testGroups(5, 3)

	urls := Lookahead(groups, Cursor{Author: 0, Story: 3}, 3, 2)
	assert.Equal(t, []string{
		"https://cdn.test/0/4.jpg",
		"https://cdn.test/1/0.jpg",
		"https://cdn.test/1/1.jpg",
	}, urls)
}

func TestLookahead_SkipsEmptyAuthorAndStopsAtEnd(t *testing.T) {
	groups := testGroups(1, 0, 1)

	assert.Equal(t, []string{"https://cdn.test/2/0.jpg"}, Lookahead(groups, Cursor{Author: 0, Story: 0}, 3, 2))
	assert.Empty(t, Lookahead(groups, Cursor{Author: 2, Story: 0}, 3, 2))
}

func TestLookahead_DeduplicatesAndDropsEmptyURLs(t *testing.T) {
	groups := testGroups(4)
	groups[0].Stories[2].MediaURL = groups[0].Stories[1].MediaURL
	groups[0].Stories[3].MediaURL = ""

	assert.Equal(t, []string{"https://cdn.test/0/1.jpg"}, Lookahead(groups, Cursor{Author: 0, Story: 0}, 3, 2))
}

func newTestPreloader(warmer Warmer) (*Preloader, chan func(), *testutil.MockLogger, *testutil.MockMetrics) {
	tasks := make(chan func(), 16)
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	p := NewPreloader(warmer, func(task func()) bool {
		tasks <- task
		return true
	}, logger, metrics, 3, 2)
	return p, tasks, logger, metrics
}

func drain(t *testing.T, tasks <-chan func(), n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case task := <-tasks:
			task()
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d results dispatched", i, n)
		}
	}
}

func TestPreloader_IssuesEachURLOnce(t *testing.T) {
	warmer := &testutil.MockWarmer{}
	p, tasks, _, metrics := newTestPreloader(warmer)
	groups := testGroups(3, 1)

	assert.Equal(t, 3, p.Preload(context.Background(), groups, Cursor{Author: 0, Story: 0}))
	assert.Equal(t, 0, p.Preload(context.Background(), groups, Cursor{Author: 0, Story: 0}))
	assert.True(t, p.Requested("https://cdn.test/1/0.jpg"))

	drain(t, tasks, 3)
	assert.True(t, p.Cached("https://cdn.test/0/1.jpg"))
	assert.True(t, p.Cached("https://cdn.test/1/0.jpg"))
	assert.Equal(t, 3, metrics.PreloadCount("ok"))

	assert.Equal(t, 0, p.Preload(context.Background(), groups, Cursor{Author: 0, Story: 1}))
	assert.Len(t, warmer.Requested(), 3)
}

func TestPreloader_FailureIsLoggedAndNotRetried(t *testing.T) {
	failing := "https://cdn.test/0/1.jpg"
	warmer := &testutil.MockWarmer{Fail: map[string]error{failing: errors.New("404")}}
	p, tasks, logger, metrics := newTestPreloader(warmer)
	groups := testGroups(2)

	require.Equal(t, 1, p.Preload(context.Background(), groups, Cursor{Author: 0, Story: 0}))
	drain(t, tasks, 1)

	assert.False(t, p.Cached(failing))
	assert.True(t, p.Requested(failing))
	assert.Equal(t, 1, metrics.PreloadCount("error"))
	require.Len(t, logger.Logs, 1)
	assert.Equal(t, "warn", logger.Logs[0].Level)

	assert.Equal(t, 0, p.Preload(context.Background(), groups, Cursor{Author: 0, Story: 0}))
}
