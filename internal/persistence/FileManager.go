package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"storyplayer/internal/models"
	"storyplayer/internal/persistence/interfaces"
	"storyplayer/internal/providers"
	"storyplayer/internal/services"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type FileManager struct {
	service    services.StoryServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.StoryServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	storage := f.service.GetSnapshot()

	jsonData, err := json.Marshal(storage)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the store from a snapshot written by SaveToFile.
// A missing file is an empty store, not an error.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var storage models.Storage
	if err := json.Unmarshal(decompressedData, &storage); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", fileName, err)
	}
	if storage.Viewed == nil {
		storage.Viewed = make(map[string][]uint64)
	}
	if dropped := f.service.PutSnapshot(&storage); dropped > 0 {
		f.logger.Warnf(providers.TypeApp, "Dropped %d stories from %s that expire before they were created", dropped, fileName)
	}
	f.logger.Infof(providers.TypeApp, "Restored %d stories from %s", len(storage.Stories), fileName)
	return nil
}

// LoadFixture merges a seed file into the store. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON.
func (f *FileManager) LoadFixture(fileName string) (int, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return 0, err
	}

	var fixture models.Fixture
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fixture)
	default:
		err = json.Unmarshal(data, &fixture)
	}
	if err != nil {
		return 0, fmt.Errorf("decode fixture %s: %w", fileName, err)
	}

	if err := f.service.LoadFixture(&fixture); err != nil {
		return 0, err
	}
	f.logger.Infof(providers.TypeApp, "Seeded %d authors and %d stories from %s", len(fixture.Authors), len(fixture.Stories), fileName)
	return len(fixture.Stories), nil
}
