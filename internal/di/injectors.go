//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"storyplayer/internal"
	"storyplayer/internal/controllers"
	"storyplayer/internal/persistence"
	"storyplayer/internal/playback"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"
	"storyplayer/internal/structures"
)

var storeSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewClock,
	services.NewStoryService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		storeSet,
		wire.Bind(new(providers.StoryCounter), new(services.StoryServiceInterface)),
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMediaWarmer,
		wire.Bind(new(playback.Warmer), new(*providers.MediaWarmer)),
		wire.Bind(new(controllers.MediaSource), new(*providers.MediaWarmer)),

		services.NewViewerService,
		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewStoryController,
		controllers.NewViewerController,
		controllers.NewMediaController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

// InitSeeder builds the pieces the seed command needs: a store backed by the
// configured snapshot file, without the HTTP surface.
func InitSeeder(cfg *structures.CliFlags) (*Seeder, error) {

	wire.Build(
		storeSet,
		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		wire.Struct(new(Seeder), "*"),
	)

	return nil, nil
}
