package models

import (
	"time"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type TextOverlay struct {
	Text  string  `json:"text" yaml:"text" validate:"required|maxLen:250"`
	Color string  `json:"color" yaml:"color"`
	Size  float64 `json:"size" yaml:"size"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}

type Story struct {
	ID         int64        `json:"id" yaml:"id"`
	AuthorID   string       `json:"authorId" yaml:"authorId"`
	MediaURL   string       `json:"mediaUrl" yaml:"mediaUrl"`
	MediaKind  MediaKind    `json:"mediaKind" yaml:"mediaKind"`
	Overlay    *TextOverlay `json:"overlay,omitempty" yaml:"overlay,omitempty"`
	CreatedAt  time.Time    `json:"createdAt" yaml:"createdAt"`
	ExpiresAt  time.Time    `json:"expiresAt" yaml:"expiresAt"`
	Viewed     bool         `json:"viewed" yaml:"-"`
	ViewCount  int          `json:"viewCount" yaml:"viewCount"`
	DurationMs int          `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
}

// Expired reports whether the story is past its expiry. Expired stories stay
// playable; callers only use this to flag them.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ValidLifetime reports whether the story expires strictly after it was
// created.
func (s *Story) ValidLifetime() bool {
	return s.ExpiresAt.After(s.CreatedAt)
}

func (s *Story) IsVideo() bool {
	return s.MediaKind == MediaVideo
}

type Author struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

// StoryGroup is one author's stories, oldest first.
type StoryGroup struct {
	Author  Author   `json:"author"`
	Stories []*Story `json:"stories"`
}

func (g *StoryGroup) HasUnviewed() bool {
	for _, s := range g.Stories {
		if !s.Viewed {
			return true
		}
	}
	return false
}

func (g *StoryGroup) IndexOf(storyID int64) int {
	for i, s := range g.Stories {
		if s.ID == storyID {
			return i
		}
	}
	return -1
}

// Remove drops the story with the given id and returns its former index,
// or -1 when the group does not contain it.
func (g *StoryGroup) Remove(storyID int64) int {
	idx := g.IndexOf(storyID)
	if idx < 0 {
		return -1
	}
	g.Stories = append(g.Stories[:idx], g.Stories[idx+1:]...)
	return idx
}

// NewStory is the payload for creating a story.
type NewStory struct {
	MediaURL   string       `json:"mediaUrl" validate:"required|url"`
	MediaKind  string       `json:"mediaKind" validate:"required|in:image,video"`
	DurationMs int          `json:"durationMs" validate:"min:0"`
	Overlay    *TextOverlay `json:"overlay,omitempty"`
}
