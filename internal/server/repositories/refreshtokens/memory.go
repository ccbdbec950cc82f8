package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps tokens in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Save(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC()
	r.tokens[token.Token] = *token
	return nil
}

func (r *MemoryRepository) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range r.tokens {
		if v.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}
