package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// DiscussionFilter narrows discussion listings.
type DiscussionFilter struct {
	Subject string
}

// DiscussionRepository persists discussions and their comments.
type DiscussionRepository interface {
	List(ctx context.Context, filter DiscussionFilter) ([]models.Discussion, error)
	GetByID(ctx context.Context, id uint) (models.Discussion, error)
	Create(ctx context.Context, discussion *models.Discussion) error
	Delete(ctx context.Context, id uint) error
	ListComments(ctx context.Context, discussionID uint) ([]models.Comment, error)
	GetComment(ctx context.Context, id uint) (models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComments(ctx context.Context, discussionID uint, ids []uint) error
}

type discussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository constructs a GORM-backed repository.
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) List(ctx context.Context, filter DiscussionFilter) ([]models.Discussion, error) {
	query := r.db.WithContext(ctx).Model(&models.Discussion{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	var discussions []models.Discussion
	if err := query.Order("updated_at DESC").Find(&discussions).Error; err != nil {
		return nil, err
	}
	return discussions, nil
}

func (r *discussionRepository) GetByID(ctx context.Context, id uint) (models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.WithContext(ctx).First(&discussion, id).Error; err != nil {
		return models.Discussion{}, err
	}
	return discussion, nil
}

func (r *discussionRepository) Create(ctx context.Context, discussion *models.Discussion) error {
	return r.db.WithContext(ctx).Create(discussion).Error
}

func (r *discussionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Discussion{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *discussionRepository) ListComments(ctx context.Context, discussionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *discussionRepository) GetComment(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *discussionRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Discussion{}).
			Where("id = ?", comment.DiscussionID).
			UpdateColumns(map[string]interface{}{
				"comment_count": gorm.Expr("comment_count + 1"),
				"updated_at":    comment.CreatedAt,
			}).Error
	})
}

func (r *discussionRepository) DeleteComments(ctx context.Context, discussionID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("discussion_id = ? AND id IN ?", discussionID, ids).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.Discussion{}).
			Where("id = ?", discussionID).
			UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count >= ? THEN comment_count - ? ELSE 0 END", result.RowsAffected, result.RowsAffected)).
			Error
	})
}
