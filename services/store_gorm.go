package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"task-reviewer-api/models"
)

// GormStore backs TaskStore and ReviewStore with MySQL through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the backing tables.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.TaskDefinition{}, &models.ReviewRecord{})
}

func (s *GormStore) CreateTask(ctx context.Context, task *models.TaskDefinition) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TaskDefinition{}).
		Where("task_id = ?", task.TaskID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTaskExists
	}

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTaskExists
		}
		return err
	}
	return nil
}

func (s *GormStore) GetTask(ctx context.Context, taskID string) (*models.TaskDefinition, error) {
	var task models.TaskDefinition
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *GormStore) ListTasks(ctx context.Context) ([]models.TaskDefinition, error) {
	var tasks []models.TaskDefinition
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *GormStore) CreateReview(ctx context.Context, record *models.ReviewRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *GormStore) GetReview(ctx context.Context, reviewID string) (*models.ReviewRecord, error) {
	var record models.ReviewRecord
	if err := s.db.WithContext(ctx).Where("review_id = ?", reviewID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) ListReviewsByStatus(ctx context.Context, status models.ReviewStatus) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	if err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormStore) ListReviewsByUsername(ctx context.Context, username string) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	if err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// AdvanceStatus performs the compare-and-set with a status-guarded UPDATE;
// RowsAffected distinguishes the winner of a race from the loser.
func (s *GormStore) AdvanceStatus(ctx context.Context, reviewID string, from, to models.ReviewStatus, mut ReviewMutation) (*models.ReviewRecord, error) {
	update := models.ReviewRecord{
		Status:       to,
		Feedback:     mut.Feedback,
		OverallScore: mut.OverallScore,
		NextTask:     mut.NextTask,
		UpdatedAt:    time.Now(),
	}

	res := s.db.WithContext(ctx).Model(&models.ReviewRecord{}).
		Where("review_id = ? AND status = ?", reviewID, from).
		Updates(update)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Either the record is gone or another caller moved it first.
		record, err := s.GetReview(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		return record, ErrStatusConflict
	}

	return s.GetReview(ctx, reviewID)
}
