package repositories

import (
	"context"

	"github.com/lacylights/lumenserver/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// FixtureRepository handles fixture instance data access.
type FixtureRepository struct {
	db *gorm.DB
}

// NewFixtureRepository creates a new FixtureRepository.
func NewFixtureRepository(db *gorm.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

// FindByProjectID returns all fixtures in a project.
func (r *FixtureRepository) FindByProjectID(ctx context.Context, projectID string) ([]models.FixtureInstance, error) {
	var fixtures []models.FixtureInstance
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("universe ASC, start_channel ASC").
		Find(&fixtures)
	return fixtures, result.Error
}

// FindByID returns a fixture by ID, with its channels preloaded.
func (r *FixtureRepository) FindByID(ctx context.Context, id string) (*models.FixtureInstance, error) {
	var fixture models.FixtureInstance
	result := r.db.WithContext(ctx).Preload("Channels").First(&fixture, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &fixture, nil
}

// Create creates a new fixture instance.
func (r *FixtureRepository) Create(ctx context.Context, fixture *models.FixtureInstance) error {
	if fixture.ID == "" {
		fixture.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(fixture).Error
}

// Update updates an existing fixture instance.
func (r *FixtureRepository) Update(ctx context.Context, fixture *models.FixtureInstance) error {
	return r.db.WithContext(ctx).Save(fixture).Error
}

// Delete deletes a fixture instance by ID.
func (r *FixtureRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.FixtureInstance{}, "id = ?", id).Error
}

// GetInstanceChannels returns all channels for a fixture instance, ordered
// by their offset within the fixture's channel range.
func (r *FixtureRepository) GetInstanceChannels(ctx context.Context, fixtureID string) ([]models.InstanceChannel, error) {
	var channels []models.InstanceChannel
	result := r.db.WithContext(ctx).
		Where("fixture_id = ?", fixtureID).
		Order("offset ASC").
		Find(&channels)
	return channels, result.Error
}

// CreateInstanceChannels creates instance channels for a fixture.
func (r *FixtureRepository) CreateInstanceChannels(ctx context.Context, channels []models.InstanceChannel) error {
	if len(channels) == 0 {
		return nil
	}
	for i := range channels {
		if channels[i].ID == "" {
			channels[i].ID = cuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&channels).Error
}

// DeleteInstanceChannels deletes all instance channels for a fixture.
func (r *FixtureRepository) DeleteInstanceChannels(ctx context.Context, fixtureID string) error {
	return r.db.WithContext(ctx).Delete(&models.InstanceChannel{}, "fixture_id = ?", fixtureID).Error
}

// CreateWithChannels creates a fixture instance with its channels in a transaction.
func (r *FixtureRepository) CreateWithChannels(ctx context.Context, fixture *models.FixtureInstance, channels []models.InstanceChannel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fixture.ID == "" {
			fixture.ID = cuid.New()
		}
		if err := tx.Create(fixture).Error; err != nil {
			return err
		}

		if len(channels) > 0 {
			for i := range channels {
				if channels[i].ID == "" {
					channels[i].ID = cuid.New()
				}
				channels[i].FixtureID = fixture.ID
			}
			if err := tx.Create(&channels).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByProjectID returns the count of fixture instances in a project.
func (r *FixtureRepository) CountByProjectID(ctx context.Context, projectID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.FixtureInstance{}).
		Where("project_id = ?", projectID).
		Count(&count)
	return count, result.Error
}
