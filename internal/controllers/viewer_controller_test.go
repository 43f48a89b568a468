package controllers

import (
	"net/http"
	"storyplayer/internal/playback"
	"storyplayer/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(t *testing.T, vc *ViewerController, viewer, author string) openResponse {
	t.Helper()
	rr := do(t, vc.Open, http.MethodPost, "/viewer/open?author="+author, viewer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[openResponse](t, rr)
}

func TestViewerController_Open(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)

	resp := openSession(t, vc, "carol", "1")
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, resp.Snapshot.SessionID)
	assert.Equal(t, playback.Cursor{Author: 1, Story: 0}, resp.Snapshot.Cursor)
	assert.Equal(t, "bob", resp.Snapshot.ActiveAuthor.ID)
	assert.Equal(t, playback.StatePlaying, resp.Snapshot.State)
}

func TestViewerController_OpenErrors(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)

	assert.Equal(t, http.StatusBadRequest, do(t, vc.Open, http.MethodPost, "/viewer/open", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Open, http.MethodPost, "/viewer/open?author=x", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Open, http.MethodPost, "/viewer/open?author=7", "carol").Code)
}

func TestViewerController_TapHoldPan(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	rr := do(t, vc.Tap, http.MethodPost, "/viewer/tap?s="+s+"&x=250&y=300&w=300&h=600", "carol")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, playback.Cursor{Author: 0, Story: 1}, decode[playback.Snapshot](t, rr).Cursor)

	rr = do(t, vc.Tap, http.MethodPost, "/viewer/tap?s="+s+"&x=10&y=300", "carol")
	assert.Equal(t, playback.Cursor{Author: 0, Story: 0}, decode[playback.Snapshot](t, rr).Cursor)

	rr = do(t, vc.Hold, http.MethodPost, "/viewer/hold?s="+s+"&phase=start", "carol")
	assert.Equal(t, playback.StatePaused, decode[playback.Snapshot](t, rr).State)
	rr = do(t, vc.Hold, http.MethodPost, "/viewer/hold?s="+s+"&phase=end", "carol")
	assert.Equal(t, playback.StatePlaying, decode[playback.Snapshot](t, rr).State)

	rr = do(t, vc.Pan, http.MethodPost, "/viewer/pan?s="+s+"&phase=update&dx=0&dy=30", "carol")
	snap := decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.StateTransitioning, snap.State)
	assert.Equal(t, playback.Vec{X: 0, Y: 30}, snap.DragOffset)

	rr = do(t, vc.Pan, http.MethodPost, "/viewer/pan?s="+s+"&phase=end&dx=-90&dy=0&vx=-200", "carol")
	snap = decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.Cursor{Author: 1, Story: 0}, snap.Cursor)
	assert.Equal(t, playback.StatePlaying, snap.State)

	rr = do(t, vc.Snapshot, http.MethodGet, "/viewer/snapshot?s="+s, "carol")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestViewerController_Pointer(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	rr := do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=down&x=250&y=300&w=300&h=600", "carol")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=up", "carol")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, playback.Cursor{Author: 0, Story: 1}, decode[playback.Snapshot](t, rr).Cursor)

	do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=down&x=150&y=300", "carol")
	rr = do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=move&dx=0&dy=40", "carol")
	snap := decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.StateTransitioning, snap.State)
	assert.Equal(t, playback.Vec{X: 0, Y: 40}, snap.DragOffset)
	rr = do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=up&dx=0&dy=40", "carol")
	snap = decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.Cursor{Author: 0, Story: 1}, snap.Cursor)
	assert.Equal(t, playback.StatePlaying, snap.State)

	do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=down&x=250&y=300", "carol")
	rr = do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=up&dx=-200&vx=-900", "carol")
	assert.Equal(t, playback.Cursor{Author: 1, Story: 0}, decode[playback.Snapshot](t, rr).Cursor)

	assert.Equal(t, http.StatusBadRequest, do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=hover", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=down&x=left", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=up&vy=fast", "carol").Code)
}

func TestViewerController_SessionBoundToViewer(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	for _, viewer := range []string{"mallory", ""} {
		assert.Equal(t, http.StatusNotFound, do(t, vc.Snapshot, http.MethodGet, "/viewer/snapshot?s="+s, viewer).Code)
		assert.Equal(t, http.StatusNotFound, do(t, vc.Tap, http.MethodPost, "/viewer/tap?s="+s+"&x=250&y=300", viewer).Code)
		assert.Equal(t, http.StatusNotFound, do(t, vc.Pointer, http.MethodPost, "/viewer/pointer?s="+s+"&phase=down", viewer).Code)
		assert.Equal(t, http.StatusNotFound, do(t, vc.Delete, http.MethodPost, "/viewer/delete?s="+s, viewer).Code)
		assert.Equal(t, http.StatusNotFound, do(t, vc.Close, http.MethodPost, "/viewer/close?s="+s, viewer).Code)
	}

	rr := do(t, vc.Snapshot, http.MethodGet, "/viewer/snapshot?s="+s, "carol")
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.Cursor{Author: 0, Story: 0}, snap.Cursor)
	assert.False(t, snap.Closed)
}

func TestViewerController_BadInput(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	assert.Equal(t, http.StatusNotFound, do(t, vc.Snapshot, http.MethodGet, "/viewer/snapshot?s=nope", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Tap, http.MethodPost, "/viewer/tap?s="+s+"&x=left", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Hold, http.MethodPost, "/viewer/hold?s="+s+"&phase=maybe", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Pan, http.MethodPost, "/viewer/pan?s="+s+"&phase=update&dy=down", "carol").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, vc.Pan, http.MethodPost, "/viewer/pan?s="+s, "carol").Code)
}

func TestViewerController_DeleteRefusedIsRetryable(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	rr := do(t, vc.Delete, http.MethodPost, "/viewer/delete?s="+s, "carol")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	resp := decode[errorResponse](t, rr)
	assert.True(t, resp.Retryable)

	rr = do(t, vc.Snapshot, http.MethodGet, "/viewer/snapshot?s="+s, "carol")
	assert.Equal(t, playback.Cursor{Author: 0, Story: 0}, decode[playback.Snapshot](t, rr).Cursor)
}

func TestViewerController_DeleteOwnStory(t *testing.T) {
	stack := newTestStack(t)
	vc := NewViewerController(&testutil.MockLogger{}, stack.sessions)
	s := openSession(t, vc, "alice", "0").SessionID

	rr := do(t, vc.Delete, http.MethodPost, "/viewer/delete?s="+s, "alice")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	snap := decode[playback.Snapshot](t, rr)
	assert.Equal(t, playback.Cursor{Author: 0, Story: 0}, snap.Cursor)
	assert.Equal(t, int64(2), snap.ActiveStory.ID)
	assert.Equal(t, 2, stack.stories.Count())
}

func TestViewerController_Close(t *testing.T) {
	vc := NewViewerController(&testutil.MockLogger{}, newTestStack(t).sessions)
	s := openSession(t, vc, "carol", "0").SessionID

	assert.Equal(t, http.StatusNoContent, do(t, vc.Close, http.MethodPost, "/viewer/close?s="+s, "carol").Code)
	assert.Equal(t, http.StatusNotFound, do(t, vc.Close, http.MethodPost, "/viewer/close?s="+s, "carol").Code)
	assert.Equal(t, http.StatusNotFound, do(t, vc.Tap, http.MethodPost, "/viewer/tap?s="+s, "carol").Code)
}
