package di

import (
	"storyplayer/internal/persistence"
	"storyplayer/internal/providers"
	"storyplayer/internal/structures"
)

// Seeder loads fixtures into the persisted store outside of a running server.
type Seeder struct {
	Config *structures.Config
	Logger providers.Logger
	Files  *persistence.FileManager
}

// Seed merges the fixture at path into the configured snapshot file and
// returns the number of stories added.
func (s *Seeder) Seed(path string) (int, error) {
	defer s.Files.Close()

	if err := s.Files.LoadFromFile(s.Config.Persistence.FilePath); err != nil {
		return 0, err
	}
	n, err := s.Files.LoadFixture(path)
	if err != nil {
		return 0, err
	}
	if err := s.Files.SaveToFile(s.Config.Persistence.FilePath); err != nil {
		return 0, err
	}
	s.Logger.Infof(providers.TypeApp, "Seeded %d stories from %s", n, path)
	return n, nil
}
