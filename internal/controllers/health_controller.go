package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"storyplayer/internal/services"
	"time"
)

type HealthController struct {
	stories   services.StoryServiceInterface
	sessions  services.ViewerServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Stories       int     `json:"stories"`
	Sessions      int     `json:"sessions"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Stories:       hc.stories.Count(),
		Sessions:      hc.sessions.Count(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(stories services.StoryServiceInterface, sessions services.ViewerServiceInterface) *HealthController {
	return &HealthController{
		stories:   stories,
		sessions:  sessions,
		startTime: time.Now(),
	}
}
