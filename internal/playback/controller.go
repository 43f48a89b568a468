package playback

import (
	"context"
	"errors"
	"fmt"
	"storyplayer/internal/models"
	"storyplayer/internal/providers"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var errAlreadyOpen = errors.New("viewer session already opened")

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithViewerID binds the session to the viewer it was opened for.
func WithViewerID(viewerID string) Option {
	return func(c *Controller) {
		c.viewerID = viewerID
	}
}

// WithOnRequestClose sets the callback invoked once when the viewer should
// close.
func WithOnRequestClose(fn func(reason CloseReason)) Option {
	return func(c *Controller) {
		c.onClose = fn
	}
}

// Controller drives one open viewer. Every exported method may be called
// from any goroutine; the work itself happens on the session loop.
type Controller struct {
	id       string
	viewerID string
	cfg      Config
	api      StoryAPI
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	clock    clockwork.Clock
	loop     *Loop
	ctx      context.Context
	cancel   context.CancelFunc
	onClose  func(reason CloseReason)
	opened   atomic.Bool
	isClosed atomic.Bool
	lastSeen atomic.Int64
	once     sync.Once

	// owned by the loop
	timer         *ProgressTimer
	gestures      *GestureInterpreter
	preloader     *Preloader
	groups        []*models.StoryGroup
	cursor        Cursor
	transitioning bool
	dragging      bool
	held          bool
	dragPaused    bool
	dragOffset    Vec
	closed        bool
	closeReason   CloseReason
}

func NewController(api StoryAPI, warmer Warmer, logger providers.Logger, metrics providers.MetricsProviderInterface, cfg Config, opts ...Option) *Controller {
	defaults := DefaultConfig()
	if cfg.ImageDuration <= 0 {
		cfg.ImageDuration = defaults.ImageDuration
	}
	if cfg.VideoDuration <= 0 {
		cfg.VideoDuration = defaults.VideoDuration
	}

	c := &Controller{
		id:      uuid.NewString(),
		cfg:     cfg,
		api:     api,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
		loop:    NewLoop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.timer = NewProgressTimer(c.clock, func(generation uint64) {
		c.loop.Post(func() {
			c.onTimerFired(generation)
		})
	})
	c.gestures = NewGestureInterpreter(cfg.Gesture, cfg.Surface)
	c.preloader = NewPreloader(warmer, c.loop.Post, logger, metrics, cfg.StoriesAhead, cfg.NextAuthorStories)
	c.touch()
	return c
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) ViewerID() string {
	return c.viewerID
}

// LastActivity is the time of the most recent host call.
func (c *Controller) LastActivity() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Controller) Closed() bool {
	return c.isClosed.Load()
}

// Open loads the grouped stories and starts playback at authorIndex.
func (c *Controller) Open(ctx context.Context, authorIndex int) error {
	groups, err := c.api.ListGroupedStories(ctx)
	if err != nil {
		return fmt.Errorf("list stories: %w", err)
	}
	return c.OpenWith(ctx, groups, authorIndex)
}

// OpenWith starts playback on groups the host already holds.
func (c *Controller) OpenWith(ctx context.Context, groups []*models.StoryGroup, authorIndex int) error {
	if len(groups) == 0 {
		return ErrNoStories
	}
	if authorIndex < 0 || authorIndex >= len(groups) {
		return fmt.Errorf("%w: %d of %d", ErrAuthorOutOfRange, authorIndex, len(groups))
	}
	if !c.opened.CompareAndSwap(false, true) {
		return errAlreadyOpen
	}

	go c.run()

	return c.loop.Do(ctx, func() {
		c.groups = groups
		cur, ok := JumpToAuthor(groups, authorIndex)
		if !ok {
			c.requestClose(CloseEndOfCollection)
			return
		}
		c.cursor = cur
		c.metrics.IncTransitions("open")
		c.enter()
	})
}

func (c *Controller) run() {
	err := c.loop.Run(c.ctx)
	c.cancel()

	var inv *InvariantError
	if errors.As(err, &inv) {
		c.logger.Errorf(providers.TypePlayback, "Session %s aborted: %s", c.id, inv)
		c.fireClose(CloseAborted)
	}
}

func (c *Controller) OnTap(pos Vec) error {
	return c.post(func() {
		c.apply(c.gestures.ClassifyTap(pos))
	})
}

func (c *Controller) OnHoldStart() error {
	return c.post(func() {
		c.apply(Intent{Kind: IntentPause})
	})
}

func (c *Controller) OnHoldEnd() error {
	return c.post(func() {
		c.apply(Intent{Kind: IntentResume})
	})
}

func (c *Controller) OnPanUpdate(offset, _ Vec) error {
	return c.post(func() {
		c.apply(Intent{Kind: IntentDragUpdate, Offset: offset})
	})
}

func (c *Controller) OnPanEnd(offset, velocity Vec) error {
	return c.post(func() {
		c.apply(c.gestures.ClassifyPanEnd(offset, velocity))
	})
}

// PointerDown, PointerMove and PointerUp feed raw touch input through the
// gesture interpreter instead of pre-classified callbacks.
func (c *Controller) PointerDown(pos Vec) error {
	return c.post(func() {
		c.apply(c.gestures.Press(pos, c.clock.Now())...)
		c.clock.AfterFunc(c.cfg.Gesture.HoldThreshold, func() {
			c.loop.Post(func() {
				if !c.closed {
					c.apply(c.gestures.Tick(c.clock.Now())...)
				}
			})
		})
	})
}

func (c *Controller) PointerMove(offset, velocity Vec) error {
	return c.post(func() {
		c.apply(c.gestures.Move(offset, velocity, c.clock.Now())...)
	})
}

func (c *Controller) PointerUp(offset, velocity Vec) error {
	return c.post(func() {
		c.apply(c.gestures.Release(offset, velocity, c.clock.Now())...)
	})
}

func (c *Controller) SetSurface(size Vec) error {
	return c.post(func() {
		c.gestures.SetSurface(size)
	})
}

// Close is an external close request. Closing an already closed session is
// not an error.
func (c *Controller) Close() {
	if c.opened.CompareAndSwap(false, true) {
		go c.run()
	}
	_ = c.post(func() {
		c.requestClose(CloseExternal)
	})
}

// DeleteActive deletes the story currently on screen.
func (c *Controller) DeleteActive(ctx context.Context) error {
	var storyID int64
	found := false
	err := c.loop.Do(ctx, func() {
		if c.closed || !Valid(c.groups, c.cursor) {
			return
		}
		_, s := Resolve(c.groups, c.cursor)
		storyID, found = s.ID, true
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrSessionClosed
	}
	return c.DeleteStory(ctx, storyID)
}

// DeleteStory removes a story through the data layer and reconciles the
// cursor once it is gone. A refused deletion leaves the session as it was
// and comes back as a retryable *DeleteError.
func (c *Controller) DeleteStory(ctx context.Context, storyID int64) error {
	c.touch()
	if err := c.api.DeleteStory(ctx, storyID); err != nil {
		c.metrics.IncDeleteFailures()
		c.logger.Warnf(providers.TypePlayback, "Session %s: delete story %d failed: %s", c.id, storyID, err)
		return &DeleteError{StoryID: storyID, Err: err}
	}

	err := c.loop.Do(ctx, func() {
		if !c.closed {
			c.removeStory(storyID)
		}
	})
	if isClosed(err) {
		return nil
	}
	return err
}

func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.loop.Do(ctx, func() {
		snap = c.snapshot()
	})
	if isClosed(err) {
		select {
		case <-c.loop.Done():
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
		snap = Snapshot{
			SessionID:   c.id,
			Progress:    []float64{},
			Cursor:      c.cursor,
			Closed:      true,
			CloseReason: c.closeReason,
		}
		if snap.CloseReason == "" {
			snap.CloseReason = CloseAborted
		}
		return snap, nil
	}
	return snap, err
}

func (c *Controller) touch() {
	c.lastSeen.Store(c.clock.Now().UnixNano())
}

func (c *Controller) post(fn func()) error {
	c.touch()
	if !c.loop.Post(func() {
		if !c.closed {
			fn()
		}
	}) {
		return ErrSessionClosed
	}
	return nil
}

func (c *Controller) apply(intents ...Intent) {
	for _, in := range intents {
		if c.closed {
			return
		}
		switch in.Kind {
		case IntentAdvance:
			c.transition("advance", func() (Cursor, bool) {
				return Advance(c.groups, c.cursor)
			})
		case IntentRetreat:
			// nothing precedes the first story; keep it and its progress
			if Retreat(c.groups, c.cursor) == c.cursor {
				continue
			}
			c.transition("retreat", func() (Cursor, bool) {
				return Retreat(c.groups, c.cursor), true
			})
		case IntentNextAuthor:
			c.transition("next_author", func() (Cursor, bool) {
				return NextAuthor(c.groups, c.cursor)
			})
		case IntentPreviousAuthor:
			c.transition("previous_author", func() (Cursor, bool) {
				return PreviousAuthor(c.groups, c.cursor), true
			})
		case IntentClose:
			c.requestClose(CloseDismissed)
		case IntentPause:
			c.held = true
			c.timer.Pause()
		case IntentResume:
			c.held = false
			// a drag in progress owns the pause; resume once it springs back
			if c.dragging {
				c.dragPaused = true
			} else {
				c.timer.Resume()
			}
		case IntentDragUpdate:
			c.dragOffset = in.Offset
			if !c.dragging {
				c.dragging = true
				if c.timer.State() == TimerRunning {
					c.timer.Pause()
					c.dragPaused = true
				}
			}
		case IntentSpringBack:
			c.endDrag()
		}
	}
}

func (c *Controller) endDrag() {
	c.dragging = false
	c.dragOffset = Vec{}
	if c.dragPaused {
		c.dragPaused = false
		c.timer.Resume()
	}
}

// transition runs the fixed sequence: reset the timer, move the cursor,
// close if the collection is exhausted, otherwise enter the new story.
func (c *Controller) transition(cause string, next func() (Cursor, bool)) {
	c.transitioning = true
	defer func() { c.transitioning = false }()

	c.timer.Reset()
	cur, ok := next()
	if !ok {
		c.requestClose(CloseEndOfCollection)
		return
	}
	c.cursor = cur
	c.metrics.IncTransitions(cause)
	c.enter()
}

func (c *Controller) enter() {
	c.dragging = false
	c.dragPaused = false
	c.dragOffset = Vec{}

	_, story := Resolve(c.groups, c.cursor)
	c.markViewed(story)
	c.timer.Start(c.durationFor(story))
	if c.held {
		c.timer.Pause()
	}
	c.preloader.Preload(c.ctx, c.groups, c.cursor)
}

func (c *Controller) markViewed(story *models.Story) {
	if story.Viewed {
		return
	}
	story.Viewed = true
	id := story.ID
	go func() {
		err := c.api.MarkStoryViewed(c.ctx, id)
		if err != nil && c.ctx.Err() == nil {
			c.metrics.IncMarkViewedFailures()
			c.logger.Warnf(providers.TypePlayback, "Session %s: mark story %d viewed failed: %s", c.id, id, err)
		}
	}()
}

func (c *Controller) durationFor(story *models.Story) time.Duration {
	if story.IsVideo() {
		if story.DurationMs > 0 {
			return time.Duration(story.DurationMs) * time.Millisecond
		}
		return c.cfg.VideoDuration
	}
	return c.cfg.ImageDuration
}

func (c *Controller) onTimerFired(generation uint64) {
	if c.closed {
		return
	}
	if c.timer.Complete(generation) {
		c.transition("auto", func() (Cursor, bool) {
			return Advance(c.groups, c.cursor)
		})
	}
}

func (c *Controller) removeStory(storyID int64) {
	for ai, g := range c.groups {
		idx := g.Remove(storyID)
		if idx < 0 {
			continue
		}
		switch {
		case ai == c.cursor.Author && idx == c.cursor.Story:
			c.transition("delete", func() (Cursor, bool) {
				return Reconcile(c.groups, c.cursor)
			})
		case ai == c.cursor.Author && idx < c.cursor.Story:
			c.cursor.Story--
		}
		return
	}
}

func (c *Controller) requestClose(reason CloseReason) {
	if c.closed {
		return
	}
	c.closed = true
	c.closeReason = reason
	c.dragging = false
	c.timer.Reset()
	c.metrics.IncTransitions("close")
	c.logger.Infof(providers.TypePlayback, "Session %s closing: %s", c.id, reason)
	c.cancel()
	c.loop.Stop()
	c.fireClose(reason)
}

func (c *Controller) fireClose(reason CloseReason) {
	c.once.Do(func() {
		c.isClosed.Store(true)
		if c.onClose != nil {
			c.onClose(reason)
		}
	})
}

func (c *Controller) playbackState() State {
	switch {
	case c.transitioning || c.dragging:
		return StateTransitioning
	case c.timer.State() == TimerPaused:
		return StatePaused
	default:
		return StatePlaying
	}
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   c.id,
		Progress:    []float64{},
		State:       c.playbackState(),
		Cursor:      c.cursor,
		DragOffset:  c.dragOffset,
		Closed:      c.closed,
		CloseReason: c.closeReason,
	}
	if c.closed || !Valid(c.groups, c.cursor) {
		return snap
	}

	g, s := Resolve(c.groups, c.cursor)
	author := g.Author
	story := *s
	snap.ActiveAuthor = &author
	snap.ActiveStory = &story
	snap.Expired = s.Expired(c.clock.Now())
	snap.MediaCached = c.preloader.Cached(s.MediaURL)
	snap.Progress = make([]float64, len(g.Stories))
	for i := range g.Stories {
		switch {
		case i < c.cursor.Story:
			snap.Progress[i] = 1
		case i == c.cursor.Story:
			snap.Progress[i] = c.timer.Fraction()
		}
	}
	return snap
}
