package playback

import "time"

type Config struct {
	ImageDuration     time.Duration
	VideoDuration     time.Duration
	StoriesAhead      int
	NextAuthorStories int
	Gesture           GestureConfig
	Surface           Vec
}

func DefaultConfig() Config {
	return Config{
		ImageDuration:     5 * time.Second,
		VideoDuration:     15 * time.Second,
		StoriesAhead:      3,
		NextAuthorStories: 2,
		Gesture:           DefaultGestureConfig(),
	}
}
