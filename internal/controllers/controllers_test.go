package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"storyplayer/internal/models"
	"storyplayer/internal/services"
	"storyplayer/internal/structures"
	"storyplayer/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var controllerEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testStack struct {
	stories  services.StoryServiceInterface
	sessions services.ViewerServiceInterface
	clock    *clockwork.FakeClock
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	conf := &structures.Config{
		Stories: structures.StoriesConfig{TTL: 24 * time.Hour},
		Gesture: structures.GestureConfig{
			HoldThreshold:  100 * time.Millisecond,
			SlopRadius:     10,
			CloseDistance:  120,
			CloseVelocity:  800,
			SwitchDistance: 60,
			SwitchVelocity: 500,
			RetreatZone:    1.0 / 3.0,
		},
	}
	clock := clockwork.NewFakeClockAt(controllerEpoch)
	stories := services.NewStoryService(conf, clock)
	sessions := services.NewViewerService(conf, stories, &testutil.MockWarmer{}, &testutil.MockLogger{}, testutil.NewMockMetrics(), clock)
	t.Cleanup(sessions.CloseAll)

	for _, s := range []struct{ author, url string }{
		{"alice", "https://cdn.example.com/alice/1.jpg"},
		{"alice", "https://cdn.example.com/alice/2.jpg"},
		{"bob", "https://cdn.example.com/bob/1.jpg"},
	} {
		_, err := stories.CreateStory(context.Background(), s.author, &models.NewStory{MediaURL: s.url, MediaKind: "image"})
		require.NoError(t, err)
	}
	return &testStack{stories: stories, sessions: sessions, clock: clock}
}

func do(t *testing.T, handler http.HandlerFunc, method, target, viewer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if viewer != "" {
		req.Header.Set(viewerHeader, viewer)
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
