package playback

import (
	"fmt"
	"storyplayer/internal/models"
)

// State is the coarse playback state shown to the host.
type State int

const (
	StatePlaying State = iota
	StatePaused
	StateTransitioning
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateTransitioning:
		return "transitioning"
	default:
		return "playing"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = StatePlaying
	case "paused":
		*s = StatePaused
	case "transitioning":
		*s = StateTransitioning
	default:
		return fmt.Errorf("unknown playback state %q", text)
	}
	return nil
}

type CloseReason string

const (
	CloseEndOfCollection CloseReason = "end_of_collection"
	CloseDismissed       CloseReason = "dismissed"
	CloseExternal        CloseReason = "external"
	CloseAborted         CloseReason = "aborted"
)

// Snapshot is everything the host needs to render the viewer. Progress has
// one entry per story of the active author: 1 for stories already passed,
// the live fraction for the active one and 0 for the rest.
type Snapshot struct {
	SessionID    string         `json:"sessionId"`
	ActiveAuthor *models.Author `json:"activeAuthor,omitempty"`
	ActiveStory  *models.Story  `json:"activeStory,omitempty"`
	Progress     []float64      `json:"progress"`
	State        State          `json:"state"`
	Cursor       Cursor         `json:"cursor"`
	DragOffset   Vec            `json:"dragOffset"`
	Expired      bool           `json:"expired"`
	MediaCached  bool           `json:"mediaCached"`
	Closed       bool           `json:"closed"`
	CloseReason  CloseReason    `json:"closeReason,omitempty"`
}
