package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
)

// In-memory repository fakes backing the service tests.

type edge struct {
	follower uuid.UUID
	followee uuid.UUID
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	edges map[edge]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*models.User),
		edges: make(map[edge]bool),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperrors.Conflict("username already taken", apperrors.ErrUserExists)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", apperrors.ErrNotFound)
}

func (f *fakeUserRepo) FindByGitHubID(_ context.Context, githubID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", apperrors.ErrNotFound)
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "name":
			u.Name = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "location":
			u.Location = v.(string)
		case "company":
			u.Company = v.(string)
		case "encrypted_token":
			u.EncryptedToken = v.([]byte)
		case "token_nonce":
			u.TokenNonce = v.([]byte)
		case "role_id":
			id := v.(uuid.UUID)
			u.RoleID = &id
		}
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperrors.NotFound("user", apperrors.ErrNotFound)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Search(_ context.Context, query string, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if query == "" || strings.Contains(u.Username, query) || strings.Contains(u.Name, query) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return paginate(out, limit, offset), nil
}

func (f *fakeUserRepo) Count(_ context.Context, query string) (int64, error) {
	users, _ := f.Search(context.Background(), query, 0, 0)
	return int64(len(users)), nil
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Follow(_ context.Context, followerID, followeeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[edge{followerID, followeeID}] = true
	return nil
}

func (f *fakeUserRepo) Unfollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.edges, edge{followerID, followeeID})
	return nil
}

func (f *fakeUserRepo) IsFollowing(_ context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[edge{followerID, followeeID}], nil
}

func (f *fakeUserRepo) ListFollowers(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for e := range f.edges {
		if e.followee == userID {
			if u, ok := f.users[e.follower]; ok {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return paginate(out, limit, offset), nil
}

func (f *fakeUserRepo) ListFollowing(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for e := range f.edges {
		if e.follower == userID {
			if u, ok := f.users[e.followee]; ok {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return paginate(out, limit, offset), nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*models.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[uuid.UUID]*models.Role)}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == role.Name {
			return apperrors.Conflict("role name already taken", apperrors.ErrRoleExists)
		}
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	cp := *role
	cp.Permissions = clonePerms(role.Permissions)
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, apperrors.NotFound("role", apperrors.ErrNotFound)
	}
	cp := *r
	cp.Permissions = clonePerms(r.Permissions)
	return &cp, nil
}

func (f *fakeRoleRepo) FindByName(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			cp := *r
			cp.Permissions = clonePerms(r.Permissions)
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("role", apperrors.ErrNotFound)
}

func (f *fakeRoleRepo) Update(_ context.Context, role *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return apperrors.NotFound("role", apperrors.ErrNotFound)
	}
	cp := *role
	cp.Permissions = clonePerms(role.Permissions)
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) MergePermissions(_ context.Context, id uuid.UUID, perms models.PermissionMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return apperrors.NotFound("role", apperrors.ErrNotFound)
	}
	if r.Permissions == nil {
		r.Permissions = models.PermissionMap{}
	}
	for k, v := range perms {
		r.Permissions[k] = v
	}
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return apperrors.NotFound("role", apperrors.ErrNotFound)
	}
	delete(f.roles, id)
	return nil
}

func (f *fakeRoleRepo) Search(_ context.Context, query string, limit, offset int) ([]*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Role
	for _, r := range f.roles {
		if query == "" || strings.Contains(r.Name, query) {
			cp := *r
			cp.Permissions = clonePerms(r.Permissions)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (f *fakeRoleRepo) Count(_ context.Context, query string) (int64, error) {
	roles, _ := f.Search(context.Background(), query, 0, 0)
	return int64(len(roles)), nil
}

type fakeRepoRepo struct {
	mu    sync.Mutex
	repos map[uuid.UUID]*models.Repository
}

func newFakeRepoRepo() *fakeRepoRepo {
	return &fakeRepoRepo{repos: make(map[uuid.UUID]*models.Repository)}
}

func (f *fakeRepoRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[id]
	if !ok {
		return nil, apperrors.NotFound("repository", apperrors.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepoRepo) FindByGitHubID(_ context.Context, githubID int64) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.repos {
		if r.GitHubID == githubID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("repository", apperrors.ErrNotFound)
}

func (f *fakeRepoRepo) FindByFullName(_ context.Context, fullName string) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.repos {
		if r.FullName == fullName {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("repository", apperrors.ErrNotFound)
}

func (f *fakeRepoRepo) Upsert(_ context.Context, repo *models.Repository) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.repos {
		if r.GitHubID == repo.GitHubID {
			cp := *repo
			cp.ID = id
			cp.CreatedByID = r.CreatedByID
			f.repos[id] = &cp
			repo.ID = id
			return nil
		}
	}
	if repo.ID == uuid.Nil {
		repo.ID = uuid.New()
	}
	cp := *repo
	f.repos[repo.ID] = &cp
	return nil
}

func (f *fakeRepoRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.repos[id]; !ok {
		return apperrors.NotFound("repository", apperrors.ErrNotFound)
	}
	delete(f.repos, id)
	return nil
}

func (f *fakeRepoRepo) Search(_ context.Context, query string, limit, offset int) ([]*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Repository
	for _, r := range f.repos {
		if query == "" || strings.Contains(r.FullName, query) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return paginate(out, limit, offset), nil
}

func (f *fakeRepoRepo) Count(_ context.Context, query string) (int64, error) {
	repos, _ := f.Search(context.Background(), query, 0, 0)
	return int64(len(repos)), nil
}

func (f *fakeRepoRepo) ListStale(_ context.Context, cutoff time.Time, limit int) ([]*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Repository
	for _, r := range f.repos {
		if r.SyncedAt.Before(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return paginate(out, limit, 0), nil
}

func clonePerms(p models.PermissionMap) models.PermissionMap {
	out := models.PermissionMap{}
	for k, v := range p {
		out[k] = v
	}
	return out
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
