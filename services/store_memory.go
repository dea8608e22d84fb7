package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"task-reviewer-api/models"
)

// MemoryStore is a mutex-guarded in-process implementation of TaskStore and
// ReviewStore. It backs tests and embedded deployments that run without a
// database; the locking mirrors the per-record CAS discipline of GormStore.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]models.TaskDefinition
	reviews map[string]models.ReviewRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:   make(map[string]models.TaskDefinition),
		reviews: make(map[string]models.ReviewRecord),
	}
}

func (s *MemoryStore) CreateTask(_ context.Context, task *models.TaskDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.TaskID]; ok {
		return ErrTaskExists
	}
	s.tasks[task.TaskID] = *task
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, taskID string) (*models.TaskDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

func (s *MemoryStore) ListTasks(_ context.Context) ([]models.TaskDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.TaskDefinition, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskID < tasks[j].TaskID })
	return tasks, nil
}

func (s *MemoryStore) CreateReview(_ context.Context, record *models.ReviewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews[record.ReviewID] = *record
	return nil
}

func (s *MemoryStore) GetReview(_ context.Context, reviewID string) (*models.ReviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.reviews[reviewID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return &record, nil
}

func (s *MemoryStore) ListReviewsByStatus(_ context.Context, status models.ReviewStatus) ([]models.ReviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.ReviewRecord, 0)
	for _, record := range s.reviews {
		if record.Status == status {
			records = append(records, record)
		}
	}
	sortByCreation(records)
	return records, nil
}

func (s *MemoryStore) ListReviewsByUsername(_ context.Context, username string) ([]models.ReviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.ReviewRecord, 0)
	for _, record := range s.reviews {
		if record.Username == username {
			records = append(records, record)
		}
	}
	sortByCreation(records)
	return records, nil
}

func (s *MemoryStore) AdvanceStatus(_ context.Context, reviewID string, from, to models.ReviewStatus, mut ReviewMutation) (*models.ReviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.reviews[reviewID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	if record.Status != from {
		return &record, ErrStatusConflict
	}

	record.Status = to
	if mut.Feedback != nil {
		record.Feedback = mut.Feedback
	}
	if mut.OverallScore != nil {
		record.OverallScore = mut.OverallScore
	}
	if mut.NextTask != nil {
		record.NextTask = mut.NextTask
	}
	record.UpdatedAt = time.Now()

	s.reviews[reviewID] = record
	return &record, nil
}

func sortByCreation(records []models.ReviewRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ReviewID < records[j].ReviewID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
