package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"folio/internal/domain/entity"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"

	"github.com/google/uuid"
)

// The services are exercised against in-memory repositories that mirror
// the persistence contracts, including the conditional single-winner
// revocation update.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu sync.Mutex

	usersByID map[uuid.UUID]*entity.User
	tokens    map[string]*entity.Token

	rolesByName map[string]*entity.Role
	permsByName map[string]*entity.Permission
	userRoles   map[uuid.UUID]map[uuid.UUID]*entity.UserRole // keyed by user, then role
	rolePerms   map[uuid.UUID]map[uuid.UUID]struct{}         // keyed by role, then permission
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		usersByID:   make(map[uuid.UUID]*entity.User),
		tokens:      make(map[string]*entity.Token),
		rolesByName: make(map[string]*entity.Role),
		permsByName: make(map[string]*entity.Permission),
		userRoles:   make(map[uuid.UUID]map[uuid.UUID]*entity.UserRole),
		rolePerms:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// fakeTxManager runs the callback against a factory over the shared store.
type fakeTxManager struct {
	store *fakeStore
}

func newFakeTxManager(store *fakeStore) repository.TransactionManager {
	return &fakeTxManager{store: store}
}

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&fakeFactory{store: tm.store})
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) UserRepo() repository.UserRepository     { return &fakeUserRepo{store: f.store} }
func (f *fakeFactory) TokenRepo() repository.TokenRepository   { return &fakeTokenRepo{store: f.store} }
func (f *fakeFactory) AccessRepo() repository.AccessRepository { return &fakeAccessRepo{store: f.store} }

// --- users ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user, ok := r.store.usersByID[id]; ok {
		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.usersByID {
		if user.Email == email {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.usersByID {
		if user.GoogleID != "" && user.GoogleID == googleID {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, query repository.ListUsersQuery) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.User
	for _, user := range r.store.usersByID {
		if query.IsActive != nil && user.IsActive != *query.IsActive {
			continue
		}
		if query.Status != nil && user.Status != *query.Status {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}

	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.store.usersByID[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.usersByID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()

	clone := *user
	r.store.usersByID[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.usersByID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.store.usersByID, id)
	for tokenString, token := range r.store.tokens {
		if token.UserID == id {
			delete(r.store.tokens, tokenString)
		}
	}
	delete(r.store.userRoles, id)

	return nil
}

// --- tokens ---

type fakeTokenRepo struct {
	store *fakeStore
}

func (r *fakeTokenRepo) Create(_ context.Context, token *entity.Token) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()

	clone := *token
	r.store.tokens[token.TokenHash] = &clone

	return nil
}

func (r *fakeTokenRepo) FindValid(_ context.Context, tokenString string, kind entity.TokenKind, now time.Time) (*entity.Token, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[tokenString]
	if !ok || token.Kind != kind || token.IsRevoked || !token.ExpiresAt.After(now) {
		return nil, repository.ErrTokenNotFound
	}
	clone := *token

	return &clone, nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, tokenString string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[tokenString]
	if !ok || token.IsRevoked {
		return false, nil
	}
	token.IsRevoked = true

	return true, nil
}

func (r *fakeTokenRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID, kind *entity.TokenKind) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var revoked int64
	for _, token := range r.store.tokens {
		if token.UserID != userID || token.IsRevoked {
			continue
		}
		if kind != nil && token.Kind != *kind {
			continue
		}
		token.IsRevoked = true
		revoked++
	}

	return revoked, nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for tokenString, token := range r.store.tokens {
		if token.IsRevoked && token.ExpiresAt.Before(before) {
			delete(r.store.tokens, tokenString)
			deleted++
		}
	}

	return deleted, nil
}

// --- access ---

type fakeAccessRepo struct {
	store *fakeStore
}

func (r *fakeAccessRepo) CreateRole(_ context.Context, role *entity.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rolesByName[role.Name]; ok {
		return repository.ErrDuplicateName
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.CreatedAt = time.Now()

	clone := *role
	r.store.rolesByName[role.Name] = &clone

	return nil
}

func (r *fakeAccessRepo) FindRoleByName(_ context.Context, name string) (*entity.Role, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if role, ok := r.store.rolesByName[name]; ok {
		clone := *role

		return &clone, nil
	}

	return nil, repository.ErrRoleNotFound
}

func (r *fakeAccessRepo) ListRoles(_ context.Context) ([]*entity.Role, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Role
	for _, role := range r.store.rolesByName {
		clone := *role
		out = append(out, &clone)
	}

	return out, nil
}

func (r *fakeAccessRepo) CreatePermission(_ context.Context, permission *entity.Permission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.permsByName[permission.Name]; ok {
		return repository.ErrDuplicateName
	}
	if permission.ID == uuid.Nil {
		permission.ID = uuid.New()
	}
	permission.CreatedAt = time.Now()

	clone := *permission
	r.store.permsByName[permission.Name] = &clone

	return nil
}

func (r *fakeAccessRepo) FindPermissionByName(_ context.Context, name string) (*entity.Permission, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if permission, ok := r.store.permsByName[name]; ok {
		clone := *permission

		return &clone, nil
	}

	return nil, repository.ErrPermissionNotFound
}

func (r *fakeAccessRepo) CreateUserRole(_ context.Context, link *entity.UserRole) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	links, ok := r.store.userRoles[link.UserID]
	if !ok {
		links = make(map[uuid.UUID]*entity.UserRole)
		r.store.userRoles[link.UserID] = links
	}
	if _, dup := links[link.RoleID]; dup {
		return repository.ErrDuplicateLink
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.AssignedAt = time.Now()

	clone := *link
	links[link.RoleID] = &clone

	return nil
}

func (r *fakeAccessRepo) DeleteUserRole(_ context.Context, userID, roleID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	links, ok := r.store.userRoles[userID]
	if !ok {
		return repository.ErrLinkNotFound
	}
	if _, linked := links[roleID]; !linked {
		return repository.ErrLinkNotFound
	}
	delete(links, roleID)

	return nil
}

func (r *fakeAccessRepo) ListRoleNamesByUser(_ context.Context, userID uuid.UUID) (entity.RoleNames, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var names entity.RoleNames
	for roleID := range r.store.userRoles[userID] {
		for _, role := range r.store.rolesByName {
			if role.ID == roleID {
				names = append(names, role.Name)
			}
		}
	}

	return names, nil
}

func (r *fakeAccessRepo) CreateRolePermission(_ context.Context, link *entity.RolePermission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	perms, ok := r.store.rolePerms[link.RoleID]
	if !ok {
		perms = make(map[uuid.UUID]struct{})
		r.store.rolePerms[link.RoleID] = perms
	}
	if _, dup := perms[link.PermissionID]; dup {
		return repository.ErrDuplicateLink
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()
	perms[link.PermissionID] = struct{}{}

	return nil
}

func (r *fakeAccessRepo) ListPermissionNamesByRole(_ context.Context, roleID uuid.UUID) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var names []string
	for permID := range r.store.rolePerms[roleID] {
		for _, permission := range r.store.permsByName {
			if permission.ID == permID {
				names = append(names, permission.Name)
			}
		}
	}

	return names, nil
}

func (r *fakeAccessRepo) UserHasPermission(_ context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	permission, ok := r.store.permsByName[permissionName]
	if !ok {
		return false, nil
	}

	for roleID := range r.store.userRoles[userID] {
		roleActive := false
		for _, role := range r.store.rolesByName {
			if role.ID == roleID && role.IsActive {
				roleActive = true

				break
			}
		}
		if !roleActive {
			continue
		}
		if _, granted := r.store.rolePerms[roleID][permission.ID]; granted {
			return true, nil
		}
	}

	return false, nil
}

// --- outward services ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})

	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

type fakeOAuthVerifier struct {
	user *service.OAuthUser
	err  error
}

func (v *fakeOAuthVerifier) Verify(_ context.Context, _ string) (*service.OAuthUser, error) {
	if v.err != nil {
		return nil, v.err
	}

	return v.user, nil
}
