package controllers

import (
	"errors"
	"net/http"
	"storyplayer/internal/playback"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"
)

type ViewerController struct {
	logger   providers.Logger
	sessions services.ViewerServiceInterface
}

type openResponse struct {
	SessionID string            `json:"sessionId"`
	Snapshot  playback.Snapshot `json:"snapshot"`
}

func NewViewerController(logger providers.Logger, sessions services.ViewerServiceInterface) *ViewerController {
	return &ViewerController{
		logger:   logger,
		sessions: sessions,
	}
}

// Open starts a session at ?author=N of the viewer's story groups.
func (vc *ViewerController) Open(w http.ResponseWriter, r *http.Request) {
	viewer := viewerID(r)
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "missing "+viewerHeader)
		return
	}
	author, err := queryInt(r.URL.Query(), "author")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl, err := vc.sessions.Open(r.Context(), viewer, author)
	switch {
	case errors.Is(err, playback.ErrNoStories):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, playback.ErrAuthorOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		vc.logger.Errorf(providers.TypePost, "Open viewer for %s: %s", viewer, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	snap, err := ctrl.Snapshot(r.Context())
	if err != nil {
		vc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, openResponse{SessionID: ctrl.ID(), Snapshot: snap})
}

func (vc *ViewerController) Snapshot(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	vc.respond(w, r, ctrl)
}

// Tap forwards ?x=&y=. Optional ?w=&h= report the surface size first.
func (vc *ViewerController) Tap(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	v, err := queryFloats(r.URL.Query(), "x", "y", "w", "h")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v[2] > 0 && v[3] > 0 {
		if err := ctrl.SetSurface(playback.Vec{X: v[2], Y: v[3]}); err != nil {
			vc.fail(w, r, err)
			return
		}
	}
	if err := ctrl.OnTap(playback.Vec{X: v[0], Y: v[1]}); err != nil {
		vc.fail(w, r, err)
		return
	}
	vc.respond(w, r, ctrl)
}

func (vc *ViewerController) Hold(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	var err error
	switch r.URL.Query().Get("phase") {
	case "start":
		err = ctrl.OnHoldStart()
	case "end":
		err = ctrl.OnHoldEnd()
	default:
		writeError(w, http.StatusBadRequest, "phase must be start or end")
		return
	}
	if err != nil {
		vc.fail(w, r, err)
		return
	}
	vc.respond(w, r, ctrl)
}

// Pan forwards drag offsets ?dx=&dy= and velocities ?vx=&vy=.
func (vc *ViewerController) Pan(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v, err := queryFloats(q, "dx", "dy", "vx", "vy")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset := playback.Vec{X: v[0], Y: v[1]}
	velocity := playback.Vec{X: v[2], Y: v[3]}

	switch q.Get("phase") {
	case "update":
		err = ctrl.OnPanUpdate(offset, velocity)
	case "end":
		err = ctrl.OnPanEnd(offset, velocity)
	default:
		writeError(w, http.StatusBadRequest, "phase must be update or end")
		return
	}
	if err != nil {
		vc.fail(w, r, err)
		return
	}
	vc.respond(w, r, ctrl)
}

// Pointer feeds raw touch input through the gesture interpreter. Phase down
// takes ?x=&y= (and optional ?w=&h=), move and up take ?dx=&dy=&vx=&vy=.
func (vc *ViewerController) Pointer(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	phase := q.Get("phase")

	var err error
	switch phase {
	case "down":
		var v []float64
		if v, err = queryFloats(q, "x", "y", "w", "h"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if v[2] > 0 && v[3] > 0 {
			if err = ctrl.SetSurface(playback.Vec{X: v[2], Y: v[3]}); err != nil {
				break
			}
		}
		err = ctrl.PointerDown(playback.Vec{X: v[0], Y: v[1]})
	case "move", "up":
		var v []float64
		if v, err = queryFloats(q, "dx", "dy", "vx", "vy"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset := playback.Vec{X: v[0], Y: v[1]}
		velocity := playback.Vec{X: v[2], Y: v[3]}
		if phase == "move" {
			err = ctrl.PointerMove(offset, velocity)
		} else {
			err = ctrl.PointerUp(offset, velocity)
		}
	default:
		writeError(w, http.StatusBadRequest, "phase must be down, move or up")
		return
	}
	if err != nil {
		vc.fail(w, r, err)
		return
	}
	vc.respond(w, r, ctrl)
}

// Delete removes the active story. A refused deletion answers 502 with
// retryable set so the viewer can offer a retry.
func (vc *ViewerController) Delete(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	if err := ctrl.DeleteActive(r.Context()); err != nil {
		if playback.IsRetryable(err) {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Retryable: true})
			return
		}
		vc.fail(w, r, err)
		return
	}
	vc.respond(w, r, ctrl)
}

func (vc *ViewerController) Close(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := vc.session(w, r)
	if !ok {
		return
	}
	if err := vc.sessions.Close(ctrl.ID()); errors.Is(err, services.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves ?s= for the calling viewer. A session owned by someone
// else answers exactly like an unknown one.
func (vc *ViewerController) session(w http.ResponseWriter, r *http.Request) (*playback.Controller, bool) {
	ctrl, err := vc.sessions.Get(r.URL.Query().Get("s"))
	if err == nil && ctrl.ViewerID() != viewerID(r) {
		err = services.ErrSessionNotFound
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return ctrl, true
}

func (vc *ViewerController) respond(w http.ResponseWriter, r *http.Request, ctrl *playback.Controller) {
	snap, err := ctrl.Snapshot(r.Context())
	if err != nil {
		vc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (vc *ViewerController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, playback.ErrSessionClosed) {
		writeError(w, http.StatusGone, err.Error())
		return
	}
	vc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "Viewer request %s failed: %s", r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
