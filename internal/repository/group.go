package repository

import (
	"context"
	"errors"

	"yatube/internal/models"
	"yatube/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	// Upsert inserts the group or updates title and description of the
	// group with the same slug. It reports whether a row was inserted.
	Upsert(ctx context.Context, group *models.Group) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	ctx, span := observability.StartStoreSpan(ctx, "GetByID", "groups")
	defer span.End()

	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, lookupError(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	ctx, span := observability.StartStoreSpan(ctx, "GetBySlug", "groups")
	defer span.End()

	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, lookupError(err, "Group", slug)
	}
	return &group, nil
}

func (r *groupRepository) Exists(ctx context.Context, id uint) (bool, error) {
	ctx, span := observability.StartStoreSpan(ctx, "Exists", "groups")
	defer span.End()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	ctx, span := observability.StartStoreSpan(ctx, "List", "groups")
	defer span.End()

	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("title ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	ctx, span := observability.StartStoreSpan(ctx, "Create", "groups")
	defer span.End()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Group with this slug already exists.")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) Upsert(ctx context.Context, group *models.Group) (bool, error) {
	ctx, span := observability.StartStoreSpan(ctx, "Upsert", "groups")
	defer span.End()

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Group
		err := tx.Where("slug = ?", group.Slug).First(&existing).Error
		switch {
		case err == nil:
			group.ID = existing.ID
			return tx.Model(&existing).Updates(map[string]any{
				"title":       group.Title,
				"description": group.Description,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			return tx.Omit(clause.Associations).Create(group).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, writeError(err)
	}
	return created, nil
}

// Delete removes the group and detaches its posts (group_id set to NULL)
// in one transaction.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.StartStoreSpan(ctx, "Delete", "groups")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Group", id)
		}
		return nil
	})
	if err != nil {
		return writeError(err)
	}
	return nil
}
