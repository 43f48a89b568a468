package persistence

import (
	"fmt"
	"storyplayer/internal/persistence/interfaces"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"
	"storyplayer/internal/structures"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	stories     services.StoryServiceInterface
	viewers     services.ViewerServiceInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	clock       clockwork.Clock
	cron        gocron.Scheduler
	opsMu       sync.Mutex
}

// Init starts the background jobs: periodic persistence, the idle session
// reaper and the expired story purge.
func (s *Scheduler) Init() error {
	cron, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	jobs := []struct {
		name     string
		interval time.Duration
		task     func()
	}{
		{"persist", s.config.Persistence.SaveInterval, func() { _ = s.Persist() }},
		{"reap-sessions", s.config.Viewer.ReapInterval, s.reapSessions},
		{"purge-expired", s.config.Viewer.ReapInterval, s.purgeExpired},
	}
	for _, job := range jobs {
		if job.interval <= 0 {
			s.logger.Infof(providers.TypeApp, "Job %s disabled", job.name)
			continue
		}
		_, err := cron.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(job.task),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = cron.Shutdown()
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}

	s.cron = cron
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		if err := s.cron.Shutdown(); err != nil {
			s.logger.Warnf(providers.TypeApp, "Scheduler shutdown: %s", err)
		}
	}
}

func (s *Scheduler) Restore() error {
	err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.logger.Debugf(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	return nil
}

func (s *Scheduler) reapSessions() {
	if n := s.viewers.ReapIdle(s.config.Viewer.MaxIdle); n > 0 {
		s.logger.Infof(providers.TypePlayback, "Reaped %d idle viewer sessions", n)
	}
}

func (s *Scheduler) purgeExpired() {
	if s.config.Stories.Retention <= 0 {
		return
	}
	if n := s.stories.PurgeExpired(s.config.Stories.Retention); n > 0 {
		s.logger.Infof(providers.TypeApp, "Purged %d expired stories", n)
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, stories services.StoryServiceInterface, viewers services.ViewerServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface, clock clockwork.Clock) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		stories:     stories,
		viewers:     viewers,
		fileManager: fileManager,
		metrics:     metrics,
		clock:       clock,
	}
}
