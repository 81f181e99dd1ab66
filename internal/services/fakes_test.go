package services

import (
	"context"
	"sort"

	"taskapi/internal/models"
	"taskapi/internal/storage"
)

// In-memory stores backing the service tests. They mirror the postgres
// stores' contract, including the unique constraints.

type memUserStore struct {
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*models.User{}}
}

func (s *memUserStore) add(user *models.User) {
	cp := *user
	s.users[user.ID] = &cp
}

func (s *memUserStore) CreateUser(_ context.Context, user *models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return storage.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return storage.ErrEmailTaken
		}
	}
	s.add(user)
	return nil
}

func (s *memUserStore) UserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memUserStore) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memTaskStore struct {
	nextID int64
	tasks  map[int64]*models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: map[int64]*models.Task{}}
}

func taskMatches(task *models.Task, filter storage.TaskFilter) bool {
	if filter.OwnerID != "" && task.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Title != "" && task.Title != filter.Title {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.DueDate != nil && !task.DueDate.Equal(*filter.DueDate) {
		return false
	}
	if filter.ExcludeID != 0 && task.ID == filter.ExcludeID {
		return false
	}
	return true
}

func (s *memTaskStore) InsertTask(_ context.Context, task *models.Task) (*models.Task, error) {
	for _, existing := range s.tasks {
		if existing.OwnerID == task.OwnerID && existing.Title == task.Title {
			return nil, storage.ErrDuplicateTitle
		}
	}

	s.nextID++
	cp := *task
	cp.ID = s.nextID
	s.tasks[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (s *memTaskStore) TaskByID(_ context.Context, id int64) (*models.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (s *memTaskStore) FindTasks(_ context.Context, filter storage.TaskFilter, offset, limit uint32) ([]*models.Task, error) {
	matched := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if taskMatches(task, filter) {
			cp := *task
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if int(offset) >= len(matched) {
		return []*models.Task{}, nil
	}
	matched = matched[offset:]
	if int(limit) < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *memTaskStore) CountTasks(_ context.Context, filter storage.TaskFilter) (int64, error) {
	var count int64
	for _, task := range s.tasks {
		if taskMatches(task, filter) {
			count++
		}
	}
	return count, nil
}

func (s *memTaskStore) UpdateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	current, ok := s.tasks[task.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, existing := range s.tasks {
		if existing.ID != task.ID && existing.OwnerID == task.OwnerID && existing.Title == task.Title {
			return nil, storage.ErrDuplicateTitle
		}
	}

	cp := *task
	cp.CreatedAt = current.CreatedAt
	s.tasks[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (s *memTaskStore) DeleteTask(_ context.Context, id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
