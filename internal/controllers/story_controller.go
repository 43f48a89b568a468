package controllers

import (
	"errors"
	"net/http"
	"storyplayer/internal/models"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"

	json "github.com/goccy/go-json"
)

type StoryController struct {
	logger  providers.Logger
	service services.StoryServiceInterface
}

func NewStoryController(logger providers.Logger, service services.StoryServiceInterface) *StoryController {
	return &StoryController{
		logger:  logger,
		service: service,
	}
}

// List returns the grouped stories as the viewer in X-Viewer-ID sees them.
func (sc *StoryController) List(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "missing "+viewerHeader)
		return
	}

	groups, err := sc.service.ListGroupedStories(r.Context(), viewer)
	if err != nil {
		sc.logger.Errorf(providers.TypeGet, "List stories for %s: %s", viewer, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (sc *StoryController) Create(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "missing "+viewerHeader)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.NewStory
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	story, err := sc.service.CreateStory(r.Context(), viewer, &payload)
	switch {
	case errors.Is(err, services.ErrInvalidStory):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		sc.logger.Errorf(providers.TypePost, "Create story for %s: %s", viewer, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		sc.logger.Infof(providers.TypePost, "Story %d created by %s", story.ID, viewer)
		writeJSON(w, http.StatusCreated, story)
	}
}
