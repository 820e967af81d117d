package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

type userDocument struct {
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	HashedPassword   string `json:"hashed_password"`
	RegistrationDate string `json:"registration_date"`
}

// UserRepository stores users in a single list document.
type UserRepository struct {
	store portsrepo.KVStore
	mu    sync.Mutex
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store portsrepo.KVStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load(ctx context.Context) ([]userDocument, error) {
	var docs []userDocument
	if _, err := loadDocument(ctx, r.store, portsrepo.UsersKey, &docs); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return docs, nil
}

func (r *UserRepository) find(ctx context.Context, match func(userDocument) bool, what string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if match(d) {
			return toUser(d)
		}
	}
	return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, what)
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.find(ctx, func(d userDocument) bool { return d.UserID == userID }, userID)
}

func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(ctx, func(d userDocument) bool { return d.Username == username }, username)
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if d.Username == user.Username {
			return fmt.Errorf("%w: username '%s' is already taken", apperrors.ErrDuplicate, user.Username)
		}
		if d.UserID == user.UserID {
			return fmt.Errorf("%w: user id '%s' already exists", apperrors.ErrDuplicate, user.UserID)
		}
	}

	docs = append(docs, userDocument{
		UserID:           user.UserID,
		Username:         user.Username,
		HashedPassword:   user.PasswordHash,
		RegistrationDate: formatTimestamp(user.RegisteredAt),
	})
	if err := saveDocument(ctx, r.store, portsrepo.UsersKey, docs); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}
	return nil
}

func toUser(d userDocument) (*domain.User, error) {
	registeredAt, err := parseTimestamp(d.RegistrationDate)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", d.UserID, err)
	}
	return &domain.User{
		UserID:       d.UserID,
		Username:     d.Username,
		PasswordHash: d.HashedPassword,
		RegisteredAt: registeredAt,
	}, nil
}
