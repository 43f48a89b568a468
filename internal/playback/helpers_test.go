package playback

import (
	"fmt"
	"storyplayer/internal/models"
	"time"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testGroups builds one group per count; story ids are author*100+story.
func testGroups(counts ...int) []*models.StoryGroup {
	groups := make([]*models.StoryGroup, 0, len(counts))
	for a, n := range counts {
		g := &models.StoryGroup{Author: models.Author{
			ID:          fmt.Sprintf("author-%d", a),
			DisplayName: fmt.Sprintf("Author %d", a),
		}}
		for s := 0; s < n; s++ {
			g.Stories = append(g.Stories, &models.Story{
				ID:        int64(a*100 + s),
				AuthorID:  g.Author.ID,
				MediaURL:  fmt.Sprintf("https://cdn.test/%d/%d.jpg", a, s),
				MediaKind: models.MediaImage,
				CreatedAt: testEpoch.Add(time.Duration(s) * time.Minute),
				ExpiresAt: testEpoch.Add(24 * time.Hour),
			})
		}
		groups = append(groups, g)
	}
	return groups
}
