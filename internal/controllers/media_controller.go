package controllers

import (
	"context"
	"net/http"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"
	"strconv"
)

// MediaSource serves warmed media and falls back to a direct load.
type MediaSource interface {
	Cached(url string) ([]byte, bool)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type MediaController struct {
	logger  providers.Logger
	stories services.StoryServiceInterface
	media   MediaSource
}

func NewMediaController(logger providers.Logger, stories services.StoryServiceInterface, media MediaSource) *MediaController {
	return &MediaController{
		logger:  logger,
		stories: stories,
		media:   media,
	}
}

// Media proxies ?url= for media that belongs to a known story. Warmed media
// comes from the cache; anything else is loaded directly and not cached.
func (mc *MediaController) Media(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" || !mc.stories.HasMedia(url) {
		writeError(w, http.StatusNotFound, "unknown media")
		return
	}

	body, ok := mc.media.Cached(url)
	cacheStatus := "HIT"
	if !ok {
		var err error
		body, err = mc.media.Fetch(r.Context(), url)
		if err != nil {
			mc.logger.Warnf(providers.TypeGet, "Direct media load failed: %s", err)
			writeError(w, http.StatusBadGateway, "media unavailable")
			return
		}
		cacheStatus = "MISS"
	}

	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
