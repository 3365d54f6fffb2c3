package repositories

import (
	"context"
	"errors"

	"github.com/lacylights/lumenserver/internal/database/models"
	"gorm.io/gorm"
)

// Repository is the read-only façade the core subsystems (Playback Service,
// Preview Session Manager) depend on. Writes go through the out-of-scope
// API layer directly against the individual repositories below; the core
// only ever reads.
type Repository interface {
	GetFixture(ctx context.Context, id string) (*models.FixtureInstance, error)
	GetScene(ctx context.Context, id string) (*models.Scene, error)
	GetCueList(ctx context.Context, id string) (*models.CueList, error)
}

// Store is the concrete GORM-backed Repository implementation, composed
// from the individual per-entity repositories.
type Store struct {
	db *gorm.DB

	fixtures *FixtureRepository
	scenes   *SceneRepository
	cueLists *CueListRepository
}

// NewStore creates a Store over an open database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		fixtures: NewFixtureRepository(db),
		scenes:   NewSceneRepository(db),
		cueLists: NewCueListRepository(db),
	}
}

// GetFixture returns a fixture instance with its channels preloaded.
func (s *Store) GetFixture(ctx context.Context, id string) (*models.FixtureInstance, error) {
	return s.fixtures.FindByID(ctx, id)
}

// GetScene returns a scene with its fixture values preloaded.
func (s *Store) GetScene(ctx context.Context, id string) (*models.Scene, error) {
	var scene models.Scene
	err := s.db.WithContext(ctx).Preload("FixtureValues", func(db *gorm.DB) *gorm.DB {
		return db.Order("scene_order ASC")
	}).First(&scene, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scene, nil
}

// GetCueList returns a cue list with its cues preloaded and ordered by
// cue number, each cue's scene preloaded in turn.
func (s *Store) GetCueList(ctx context.Context, id string) (*models.CueList, error) {
	var cueList models.CueList
	err := s.db.WithContext(ctx).
		Preload("Cues", func(db *gorm.DB) *gorm.DB {
			return db.Order("cue_number ASC")
		}).
		Preload("Cues.Scene").
		Preload("Cues.Scene.FixtureValues").
		First(&cueList, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cueList, nil
}

var _ Repository = (*Store)(nil)
