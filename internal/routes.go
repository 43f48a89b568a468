package internal

import (
	"net/http"
	"storyplayer/internal/controllers"
	"storyplayer/internal/providers"
)

func InitRoutes(storyController *controllers.StoryController, viewerController *controllers.ViewerController, mediaController *controllers.MediaController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/stories", http.HandlerFunc(storyController.List))
	routers.Post("/stories", http.HandlerFunc(storyController.Create))

	routers.Post("/viewer/open", http.HandlerFunc(viewerController.Open))
	routers.Get("/viewer/snapshot", http.HandlerFunc(viewerController.Snapshot))
	routers.Post("/viewer/tap", http.HandlerFunc(viewerController.Tap))
	routers.Post("/viewer/hold", http.HandlerFunc(viewerController.Hold))
	routers.Post("/viewer/pan", http.HandlerFunc(viewerController.Pan))
	routers.Post("/viewer/pointer", http.HandlerFunc(viewerController.Pointer))
	routers.Post("/viewer/delete", http.HandlerFunc(viewerController.Delete))
	routers.Post("/viewer/close", http.HandlerFunc(viewerController.Close))

	routers.Get("/media", http.HandlerFunc(mediaController.Media))
	return routers
}
