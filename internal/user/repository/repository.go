package repository

import (
	"context"
	"strings"

	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVUserRepository struct {
	users *storage.Collection[[]domain.User]
}

func NewKVUserRepository(store storage.Store) *KVUserRepository {
	return &KVUserRepository{
		users: storage.NewCollection[[]domain.User](store, storage.KeyUsers),
	}
}

func (r *KVUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.users.Update(ctx, func(all *[]domain.User) error {
		for _, u := range *all {
			if strings.EqualFold(u.Username, user.Username) {
				return apperror.New(apperror.ErrDuplicateKey, "username %s already exists", user.Username)
			}
		}
		*all = append(*all, *user)
		return nil
	})
}

func (r *KVUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

// FindByUsername matches case-insensitively
func (r *KVUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].Username, username) {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (r *KVUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []domain.User{}
	}
	return all, nil
}

func (r *KVUserRepository) Count(ctx context.Context) (int, error) {
	all, err := r.users.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (r *KVUserRepository) Mutate(ctx context.Context, fn func(users *[]domain.User) error) error {
	return r.users.Update(ctx, fn)
}

type KVSessionRepository struct {
	session *storage.Collection[*domain.Session]
}

func NewKVSessionRepository(store storage.Store) *KVSessionRepository {
	return &KVSessionRepository{
		session: storage.NewCollection[*domain.Session](store, storage.KeyAuthSession),
	}
}

// Get returns nil without error when nobody is logged in
func (r *KVSessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	return r.session.Load(ctx)
}

func (r *KVSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	return r.session.Save(ctx, session)
}

func (r *KVSessionRepository) Clear(ctx context.Context) error {
	return r.session.Remove(ctx)
}
