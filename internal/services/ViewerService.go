package services

import (
	"context"
	"errors"
	"storyplayer/internal/playback"
	"storyplayer/internal/providers"
	"storyplayer/internal/structures"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrSessionNotFound = errors.New("viewer session not found")

type ViewerServiceInterface interface {
	Open(ctx context.Context, viewerID string, authorIndex int) (*playback.Controller, error)
	Get(sessionID string) (*playback.Controller, error)
	Close(sessionID string) error
	ReapIdle(maxIdle time.Duration) int
	CloseAll()
	Count() int
}

type ViewerService struct {
	mu       sync.RWMutex
	conf     *structures.Config
	stories  StoryServiceInterface
	warmer   playback.Warmer
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	clock    clockwork.Clock
	sessions map[string]*playback.Controller
}

func NewViewerService(conf *structures.Config, stories StoryServiceInterface, warmer playback.Warmer, logger providers.Logger, metrics providers.MetricsProviderInterface, clock clockwork.Clock) ViewerServiceInterface {
	return &ViewerService{
		conf:     conf,
		stories:  stories,
		warmer:   warmer,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		sessions: make(map[string]*playback.Controller),
	}
}

// PlaybackConfig maps the service configuration onto the engine's.
func PlaybackConfig(conf *structures.Config) playback.Config {
	g := conf.Gesture
	return playback.Config{
		ImageDuration:     conf.Playback.ImageDuration,
		VideoDuration:     conf.Playback.VideoDuration,
		StoriesAhead:      conf.Preload.StoriesAhead,
		NextAuthorStories: conf.Preload.NextAuthorStories,
		Gesture: playback.GestureConfig{
			HoldThreshold:  g.HoldThreshold,
			SlopRadius:     g.SlopRadius,
			CloseDistance:  g.CloseDistance,
			CloseVelocity:  g.CloseVelocity,
			SwitchDistance: g.SwitchDistance,
			SwitchVelocity: g.SwitchVelocity,
			RetreatZone:    g.RetreatZone,
		},
		Surface: playback.Vec{X: g.SurfaceWidth, Y: g.SurfaceHeight},
	}
}

// Open starts a playback session for viewerID at authorIndex of the
// viewer's grouped stories. The session unregisters itself when it closes.
func (s *ViewerService) Open(ctx context.Context, viewerID string, authorIndex int) (*playback.Controller, error) {
	id := uuid.NewString()
	ctrl := playback.NewController(s.stories.ForViewer(viewerID), s.warmer, s.logger, s.metrics, PlaybackConfig(s.conf),
		playback.WithClock(s.clock),
		playback.WithSessionID(id),
		playback.WithViewerID(viewerID),
		playback.WithOnRequestClose(func(reason playback.CloseReason) {
			s.logger.Infof(providers.TypePlayback, "Session %s of viewer %s closed: %s", id, viewerID, reason)
			s.remove(id)
		}),
	)

	s.mu.Lock()
	s.sessions[id] = ctrl
	s.metrics.SetSessionsActive(len(s.sessions))
	s.mu.Unlock()

	if err := ctrl.Open(ctx, authorIndex); err != nil {
		s.remove(id)
		ctrl.Close()
		return nil, err
	}
	s.logger.Infof(providers.TypePlayback, "Session %s opened for viewer %s at author %d", id, viewerID, authorIndex)
	return ctrl, nil
}

func (s *ViewerService) Get(sessionID string) (*playback.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctrl, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

func (s *ViewerService) Close(sessionID string) error {
	ctrl, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	ctrl.Close()
	s.remove(sessionID)
	return nil
}

// ReapIdle closes sessions without host input for longer than maxIdle.
func (s *ViewerService) ReapIdle(maxIdle time.Duration) int {
	s.mu.RLock()
	idle := make([]string, 0)
	for id, ctrl := range s.sessions {
		if s.clock.Since(ctrl.LastActivity()) > maxIdle {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()

	reaped := 0
	for _, id := range idle {
		if s.Close(id) == nil {
			reaped++
		}
	}
	return reaped
}

func (s *ViewerService) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		_ = s.Close(id)
	}
}

func (s *ViewerService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ViewerService) remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return
	}
	delete(s.sessions, sessionID)
	s.metrics.SetSessionsActive(len(s.sessions))
}
