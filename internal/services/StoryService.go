package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"storyplayer/internal/models"
	"storyplayer/internal/playback"
	"storyplayer/internal/structures"
	"sync"
	"time"

	"github.com/gookit/validate"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
)

var (
	ErrNotFound     = errors.New("story not found")
	ErrForbidden    = errors.New("story belongs to another author")
	ErrInvalidStory = errors.New("invalid story")
)

type StoryServiceInterface interface {
	ListGroupedStories(ctx context.Context, viewerID string) ([]*models.StoryGroup, error)
	MarkStoryViewed(ctx context.Context, viewerID string, storyID int64) error
	DeleteStory(ctx context.Context, viewerID string, storyID int64) error
	CreateStory(ctx context.Context, authorID string, in *models.NewStory) (*models.Story, error)
	UpsertAuthor(author models.Author)
	ForViewer(viewerID string) playback.StoryAPI
	Count() int
	HasMedia(url string) bool
	GetSnapshot() *models.Storage
	PutSnapshot(storage *models.Storage) int
	LoadFixture(fixture *models.Fixture) error
	PurgeExpired(retention time.Duration) int
}

type StoryService struct {
	mu      sync.RWMutex
	conf    *structures.Config
	clock   clockwork.Clock
	nextID  int64
	authors map[string]models.Author
	stories map[int64]*models.Story
	media   map[string]int
	viewed  *models.ViewedSet
}

func NewStoryService(conf *structures.Config, clock clockwork.Clock) StoryServiceInterface {
	return &StoryService{
		conf:    conf,
		clock:   clock,
		nextID:  1,
		authors: make(map[string]models.Author),
		stories: make(map[int64]*models.Story),
		media:   make(map[string]int),
		viewed:  models.NewViewedSet(),
	}
}

// ListGroupedStories returns copies of every story grouped by author, with
// Viewed resolved for viewerID. Groups are ordered by their oldest story and
// stories inside a group oldest first.
func (s *StoryService) ListGroupedStories(ctx context.Context, viewerID string) ([]*models.StoryGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	copies := make([]*models.Story, 0, len(s.stories))
	for _, story := range s.stories {
		cp := *story
		if story.Overlay != nil {
			overlay := *story.Overlay
			cp.Overlay = &overlay
		}
		cp.Viewed = s.viewed.Has(viewerID, story.ID)
		copies = append(copies, &cp)
	}
	authors := make(map[string]models.Author, len(s.authors))
	for id, a := range s.authors {
		authors[id] = a
	}
	s.mu.RUnlock()

	byAuthor := lo.GroupBy(copies, func(story *models.Story) string {
		return story.AuthorID
	})

	groups := make([]*models.StoryGroup, 0, len(byAuthor))
	for authorID, stories := range byAuthor {
		sort.Slice(stories, func(i, j int) bool {
			return olderThan(stories[i], stories[j])
		})
		author, ok := authors[authorID]
		if !ok {
			author = models.Author{ID: authorID, DisplayName: authorID}
		}
		groups = append(groups, &models.StoryGroup{Author: author, Stories: stories})
	}
	sort.Slice(groups, func(i, j int) bool {
		return olderThan(groups[i].Stories[0], groups[j].Stories[0])
	})
	return groups, nil
}

func olderThan(a, b *models.Story) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// MarkStoryViewed records the view for viewerID. Only the first view of a
// viewer bumps the story's view count.
func (s *StoryService) MarkStoryViewed(ctx context.Context, viewerID string, storyID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.stories[storyID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, storyID)
	}
	if s.viewed.Mark(viewerID, storyID) {
		story.ViewCount++
	}
	return nil
}

// DeleteStory removes a story owned by viewerID.
func (s *StoryService) DeleteStory(ctx context.Context, viewerID string, storyID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.stories[storyID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, storyID)
	}
	if story.AuthorID != viewerID {
		return fmt.Errorf("%w: %d", ErrForbidden, storyID)
	}
	s.remove(story)
	return nil
}

func (s *StoryService) CreateStory(ctx context.Context, authorID string, in *models.NewStory) (*models.Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if authorID == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidStory)
	}
	if in == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidStory)
	}
	if v := validate.Struct(in); !v.Validate() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStory, v.Errors.One())
	}
	if in.Overlay != nil {
		if v := validate.Struct(in.Overlay); !v.Validate() {
			return nil, fmt.Errorf("%w: overlay: %s", ErrInvalidStory, v.Errors.One())
		}
	}

	now := s.clock.Now().UTC()
	story := &models.Story{
		AuthorID:   authorID,
		MediaURL:   in.MediaURL,
		MediaKind:  models.MediaKind(in.MediaKind),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.conf.Stories.TTL),
		DurationMs: in.DurationMs,
	}
	if in.Overlay != nil {
		overlay := *in.Overlay
		story.Overlay = &overlay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[authorID]; !ok {
		s.authors[authorID] = models.Author{ID: authorID, DisplayName: authorID}
	}
	story.ID = s.nextID
	s.nextID++
	s.add(story)

	cp := *story
	return &cp, nil
}

func (s *StoryService) UpsertAuthor(author models.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authors[author.ID] = author
}

func (s *StoryService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stories)
}

// HasMedia reports whether url belongs to a known story.
func (s *StoryService) HasMedia(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.media[url] > 0
}

// PurgeExpired drops stories that expired more than retention ago and
// returns how many were removed.
func (s *StoryService) PurgeExpired(retention time.Duration) int {
	cutoff := s.clock.Now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for _, story := range s.stories {
		if story.ExpiresAt.Before(cutoff) {
			s.remove(story)
			purged++
		}
	}
	return purged
}

func (s *StoryService) GetSnapshot() *models.Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storage := &models.Storage{
		NextID:  s.nextID,
		Authors: lo.Values(s.authors),
		Stories: make([]models.Story, 0, len(s.stories)),
		Viewed:  s.viewed.Export(),
	}
	for _, story := range s.stories {
		storage.Stories = append(storage.Stories, *story)
	}
	sort.Slice(storage.Authors, func(i, j int) bool {
		return storage.Authors[i].ID < storage.Authors[j].ID
	})
	sort.Slice(storage.Stories, func(i, j int) bool {
		return storage.Stories[i].ID < storage.Stories[j].ID
	})
	return storage
}

// PutSnapshot replaces the whole store with storage. Stories that do not
// expire after their creation are dropped; the count of dropped stories is
// returned.
func (s *StoryService) PutSnapshot(storage *models.Storage) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authors = make(map[string]models.Author, len(storage.Authors))
	s.stories = make(map[int64]*models.Story, len(storage.Stories))
	s.media = make(map[string]int, len(storage.Stories))
	s.nextID = max(storage.NextID, 1)

	for _, a := range storage.Authors {
		s.authors[a.ID] = a
	}
	var dropped []int64
	for i := range storage.Stories {
		story := storage.Stories[i]
		if !story.ValidLifetime() {
			dropped = append(dropped, story.ID)
			continue
		}
		story.Viewed = false
		s.add(&story)
		s.nextID = max(s.nextID, story.ID+1)
	}
	s.viewed.Import(storage.Viewed)
	for _, id := range dropped {
		s.viewed.Forget(id)
	}
	return len(dropped)
}

// LoadFixture merges seed authors and stories into the store. Stories without
// an id get the next free one; missing timestamps default to now and the
// configured lifetime.
func (s *StoryService) LoadFixture(fixture *models.Fixture) error {
	now := s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range fixture.Authors {
		if a.ID == "" {
			return fmt.Errorf("%w: author without id", ErrInvalidStory)
		}
		s.authors[a.ID] = a
	}
	for i := range fixture.Stories {
		story := fixture.Stories[i]
		if story.AuthorID == "" || story.MediaURL == "" {
			return fmt.Errorf("%w: fixture story %d needs authorId and mediaUrl", ErrInvalidStory, i)
		}
		if story.MediaKind == "" {
			story.MediaKind = models.MediaImage
		}
		story.Viewed = false
		if story.CreatedAt.IsZero() {
			story.CreatedAt = now
		}
		if story.ExpiresAt.IsZero() {
			story.ExpiresAt = story.CreatedAt.Add(s.conf.Stories.TTL)
		}
		if !story.ValidLifetime() {
			return fmt.Errorf("%w: fixture story %d expires at or before its creation", ErrInvalidStory, i)
		}
		if story.ID == 0 {
			story.ID = s.nextID
		}
		if old, ok := s.stories[story.ID]; ok {
			s.remove(old)
		}
		if _, ok := s.authors[story.AuthorID]; !ok {
			s.authors[story.AuthorID] = models.Author{ID: story.AuthorID, DisplayName: story.AuthorID}
		}
		s.add(&story)
		s.nextID = max(s.nextID, story.ID+1)
	}
	return nil
}

func (s *StoryService) add(story *models.Story) {
	s.stories[story.ID] = story
	s.media[story.MediaURL]++
}

func (s *StoryService) remove(story *models.Story) {
	delete(s.stories, story.ID)
	if s.media[story.MediaURL]--; s.media[story.MediaURL] <= 0 {
		delete(s.media, story.MediaURL)
	}
	s.viewed.Forget(story.ID)
}

// ForViewer binds the store to one viewer for a playback session.
func (s *StoryService) ForViewer(viewerID string) playback.StoryAPI {
	return &viewerStories{service: s, viewerID: viewerID}
}

type viewerStories struct {
	service  *StoryService
	viewerID string
}

func (v *viewerStories) ListGroupedStories(ctx context.Context) ([]*models.StoryGroup, error) {
	return v.service.ListGroupedStories(ctx, v.viewerID)
}

func (v *viewerStories) MarkStoryViewed(ctx context.Context, storyID int64) error {
	return v.service.MarkStoryViewed(ctx, v.viewerID, storyID)
}

func (v *viewerStories) DeleteStory(ctx context.Context, storyID int64) error {
	return v.service.DeleteStory(ctx, v.viewerID, storyID)
}

func (v *viewerStories) CreateStory(ctx context.Context, in *models.NewStory) (*models.Story, error) {
	return v.service.CreateStory(ctx, v.viewerID, in)
}
