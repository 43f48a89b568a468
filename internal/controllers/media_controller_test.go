package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"storyplayer/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubMedia struct {
	cached  map[string][]byte
	fetched map[string][]byte
	calls   int
}

func (m *stubMedia) Cached(url string) ([]byte, bool) {
	b, ok := m.cached[url]
	return b, ok
}

func (m *stubMedia) Fetch(_ context.Context, url string) ([]byte, error) {
	m.calls++
	if b, ok := m.fetched[url]; ok {
		return b, nil
	}
	return nil, errors.New("connection refused")
}

func mediaTarget(u string) string {
	return "/media?url=" + url.QueryEscape(u)
}

func TestMediaController_ServesWarmedMedia(t *testing.T) {
	media := &stubMedia{cached: map[string][]byte{
		"https://cdn.example.com/alice/1.jpg": []byte("\xff\xd8\xff\xe0jpeg"),
	}}
	mc := NewMediaController(&testutil.MockLogger{}, newTestStack(t).stories, media)

	rr := do(t, mc.Media, http.MethodGet, mediaTarget("https://cdn.example.com/alice/1.jpg"), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, 0, media.calls)
}

func TestMediaController_LoadsDirectlyOnMiss(t *testing.T) {
	media := &stubMedia{fetched: map[string][]byte{
		"https://cdn.example.com/bob/1.jpg": []byte("plain"),
	}}
	mc := NewMediaController(&testutil.MockLogger{}, newTestStack(t).stories, media)

	rr := do(t, mc.Media, http.MethodGet, mediaTarget("https://cdn.example.com/bob/1.jpg"), "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(t, "plain", rr.Body.String())
}

func TestMediaController_RejectsUnknownMedia(t *testing.T) {
	media := &stubMedia{}
	mc := NewMediaController(&testutil.MockLogger{}, newTestStack(t).stories, media)

	assert.Equal(t, http.StatusNotFound, do(t, mc.Media, http.MethodGet, mediaTarget("http://169.254.169.254/"), "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mc.Media, http.MethodGet, "/media", "").Code)
	assert.Equal(t, 0, media.calls)
}

func TestMediaController_FetchFailure(t *testing.T) {
	mc := NewMediaController(&testutil.MockLogger{}, newTestStack(t).stories, &stubMedia{})

	rr := do(t, mc.Media, http.MethodGet, mediaTarget("https://cdn.example.com/alice/2.jpg"), "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
