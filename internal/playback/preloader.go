package playback

import (
	"context"
	"storyplayer/internal/models"
	"storyplayer/internal/providers"

	"github.com/samber/lo"
)

// Lookahead lists the media worth warming from c: up to ahead stories after
// the cursor within the current author, then the first nextAuthor stories of
// the next non-empty author.
func Lookahead(groups []*models.StoryGroup, c Cursor, ahead, nextAuthor int) []string {
	if !Valid(groups, c) {
		return nil
	}
	var urls []string
	stories := groups[c.Author].Stories
	for i := c.Story + 1; i < len(stories) && i <= c.Story+ahead; i++ {
		urls = append(urls, stories[i].MediaURL)
	}
	if next, ok := firstAfter(groups, c.Author); ok {
		for _, s := range lo.Slice(groups[next.Author].Stories, 0, nextAuthor) {
			urls = append(urls, s.MediaURL)
		}
	}
	return lo.Uniq(lo.Compact(urls))
}

// Preloader warms lookahead media for one session. Its sets are owned by the
// session loop: Preload runs on the loop and warm results are handed back to
// it through dispatch.
type Preloader struct {
	warmer     Warmer
	dispatch   func(func()) bool
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	ahead      int
	nextAuthor int
	requested  map[string]struct{}
	resolved   map[string]struct{}
}

func NewPreloader(warmer Warmer, dispatch func(func()) bool, logger providers.Logger, metrics providers.MetricsProviderInterface, ahead, nextAuthor int) *Preloader {
	return &Preloader{
		warmer:     warmer,
		dispatch:   dispatch,
		logger:     logger,
		metrics:    metrics,
		ahead:      ahead,
		nextAuthor: nextAuthor,
		requested:  make(map[string]struct{}),
		resolved:   make(map[string]struct{}),
	}
}

// Preload issues a warm request for every lookahead URL not requested
// before and returns how many were issued. It never blocks on the network.
func (p *Preloader) Preload(ctx context.Context, groups []*models.StoryGroup, c Cursor) int {
	issued := 0
	for _, url := range Lookahead(groups, c, p.ahead, p.nextAuthor) {
		if _, ok := p.requested[url]; ok {
			continue
		}
		p.requested[url] = struct{}{}
		issued++
		go p.warm(ctx, url)
	}
	return issued
}

func (p *Preloader) warm(ctx context.Context, url string) {
	err := p.warmer.Warm(ctx, url)
	p.dispatch(func() {
		p.settle(url, err)
	})
}

func (p *Preloader) settle(url string, err error) {
	if err != nil {
		p.metrics.IncPreload("error")
		p.logger.Warnf(providers.TypePlayback, "Preload of %s failed: %s", url, err)
		return
	}
	p.metrics.IncPreload("ok")
	p.resolved[url] = struct{}{}
}

// Cached reports whether url finished warming. A miss means the view loads
// the media directly.
func (p *Preloader) Cached(url string) bool {
	_, ok := p.resolved[url]
	return ok
}

func (p *Preloader) Requested(url string) bool {
	_, ok := p.requested[url]
	return ok
}
