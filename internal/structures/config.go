package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type PlaybackConfig struct {
	ImageDuration time.Duration `yaml:"imageDuration" validate:"required|min:1"`
	VideoDuration time.Duration `yaml:"videoDuration" validate:"required|min:1"`
}

type PreloadConfig struct {
	StoriesAhead      int           `yaml:"storiesAhead"`
	NextAuthorStories int           `yaml:"nextAuthorStories"`
	FetchTimeout      time.Duration `yaml:"fetchTimeout"`
	MaxMediaSize      int64         `yaml:"maxMediaSize"`
	AllowPrivateHosts bool          `yaml:"allowPrivateHosts"`
}

type GestureConfig struct {
	HoldThreshold  time.Duration `yaml:"holdThreshold"`
	SlopRadius     float64       `yaml:"slopRadius"`
	CloseDistance  float64       `yaml:"closeDistance"`
	CloseVelocity  float64       `yaml:"closeVelocity"`
	SwitchDistance float64       `yaml:"switchDistance"`
	SwitchVelocity float64       `yaml:"switchVelocity"`
	RetreatZone    float64       `yaml:"retreatZone"`
	SurfaceWidth   float64       `yaml:"surfaceWidth"`
	SurfaceHeight  float64       `yaml:"surfaceHeight"`
}

type StoriesConfig struct {
	TTL       time.Duration `yaml:"ttl" validate:"required|min:1"`
	Retention time.Duration `yaml:"retention"`
}

type ViewerConfig struct {
	MaxIdle      time.Duration `yaml:"maxIdle"`
	ReapInterval time.Duration `yaml:"reapInterval"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Playback    PlaybackConfig `yaml:"playback"`
	Preload     PreloadConfig  `yaml:"preload"`
	Gesture     GestureConfig  `yaml:"gesture"`
	Stories     StoriesConfig  `yaml:"stories"`
	Viewer      ViewerConfig   `yaml:"viewer"`
}
