package models

// Storage is the persisted form of the story store.
type Storage struct {
	NextID  int64               `json:"nextId"`
	Authors []Author            `json:"authors"`
	Stories []Story             `json:"stories"`
	Viewed  map[string][]uint64 `json:"viewed"`
}

// Fixture is the seed file format, accepted as JSON or YAML.
type Fixture struct {
	Authors []Author `json:"authors" yaml:"authors"`
	Stories []Story  `json:"stories" yaml:"stories"`
}
