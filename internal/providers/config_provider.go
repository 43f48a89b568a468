package providers

import (
	"fmt"
	"path/filepath"
	"storyplayer/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("playback.imageDuration", 5*time.Second)
	v.SetDefault("playback.videoDuration", 15*time.Second)
	v.SetDefault("preload.storiesAhead", 3)
	v.SetDefault("preload.nextAuthorStories", 2)
	v.SetDefault("preload.fetchTimeout", 30*time.Second)
	v.SetDefault("preload.maxMediaSize", 32<<20)
	v.SetDefault("preload.allowPrivateHosts", false)
	v.SetDefault("gesture.holdThreshold", 100*time.Millisecond)
	v.SetDefault("gesture.slopRadius", 10.0)
	v.SetDefault("gesture.closeDistance", 120.0)
	v.SetDefault("gesture.closeVelocity", 800.0)
	v.SetDefault("gesture.switchDistance", 60.0)
	v.SetDefault("gesture.switchVelocity", 500.0)
	v.SetDefault("gesture.retreatZone", 1.0/3.0)
	v.SetDefault("stories.ttl", 24*time.Hour)
	v.SetDefault("stories.retention", 7*24*time.Hour)
	v.SetDefault("viewer.maxIdle", 10*time.Minute)
	v.SetDefault("viewer.reapInterval", time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "STORYPLAYER_LOG_LEVEL")
	v.BindEnv("webServer.port", "STORYPLAYER_PORT")
	v.BindEnv("persistence.saveInterval", "STORYPLAYER_SAVE_INTERVAL")
	v.BindEnv("cache.enabled", "STORYPLAYER_CACHE_ENABLED")
	v.BindEnv("cache.size", "STORYPLAYER_CACHE_SIZE")
	v.BindEnv("metrics.enabled", "STORYPLAYER_METRICS_ENABLED")
	v.BindEnv("playback.imageDuration", "STORYPLAYER_IMAGE_DURATION")
	v.BindEnv("playback.videoDuration", "STORYPLAYER_VIDEO_DURATION")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "StoryPlayer"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
