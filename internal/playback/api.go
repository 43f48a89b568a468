package playback

import (
	"context"
	"storyplayer/internal/models"
)

// StoryAPI is the data layer the engine consumes, already bound to the
// current viewer.
type StoryAPI interface {
	ListGroupedStories(ctx context.Context) ([]*models.StoryGroup, error)
	MarkStoryViewed(ctx context.Context, storyID int64) error
	DeleteStory(ctx context.Context, storyID int64) error
	CreateStory(ctx context.Context, in *models.NewStory) (*models.Story, error)
}

// Warmer resolves media ahead of playback.
type Warmer interface {
	Warm(ctx context.Context, url string) error
}
