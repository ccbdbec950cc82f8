package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a process-local store for development and tests.
// Username and email uniqueness is checked under the same lock as the insert.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]models.User
	names map[string]string
	mails map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]models.User),
		names: make(map[string]string),
		mails: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[user.Username]; ok {
		return nil, common.ErrUserAlreadyExists
	}
	if _, ok := r.mails[user.Email]; ok {
		return nil, common.ErrUserAlreadyExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	r.byID[user.ID] = *user
	r.names[user.Username] = user.ID
	r.mails[user.Email] = user.ID
	return user, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.names[username])
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.mails[email])
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *MemoryRepository) lookup(id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
