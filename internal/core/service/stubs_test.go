package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orgauth/identity-service/internal/core/domain"
)

var errStoreDown = errors.New("store down")

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneOrg(o *domain.Organisation) *domain.Organisation {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	findErr   error
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrRegistrationConflict
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

type membershipKey struct{ userID, orgID string }

type stubOrgRepo struct {
	mu          sync.Mutex
	orgs        map[string]*domain.Organisation
	memberships map[membershipKey]*domain.Membership
	createErr   error
	addErr      error
}

func newStubOrgRepo() *stubOrgRepo {
	return &stubOrgRepo{
		orgs:        make(map[string]*domain.Organisation),
		memberships: make(map[membershipKey]*domain.Membership),
	}
}

func (r *stubOrgRepo) Create(_ context.Context, org *domain.Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.orgs[org.ID] = cloneOrg(org)
	return nil
}

func (r *stubOrgRepo) FindByID(_ context.Context, id string) (*domain.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[id]
	if !ok {
		return nil, domain.ErrOrganisationNotFound
	}
	return cloneOrg(o), nil
}

func (r *stubOrgRepo) FindByName(_ context.Context, name string) (*domain.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Name == name {
			return cloneOrg(o), nil
		}
	}
	return nil, domain.ErrOrganisationNotFound
}

func (r *stubOrgRepo) ListByMember(_ context.Context, userID string) ([]*domain.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Organisation
	for key := range r.memberships {
		if key.userID == userID {
			out = append(out, cloneOrg(r.orgs[key.orgID]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubOrgRepo) AddMember(_ context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	key := membershipKey{m.UserID, m.OrgID}
	if _, ok := r.memberships[key]; ok {
		return domain.ErrAlreadyMember
	}
	clone := *m
	r.memberships[key] = &clone
	return nil
}

func (r *stubOrgRepo) IsMember(_ context.Context, userID, orgID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.memberships[membershipKey{userID, orgID}]
	return ok, nil
}

// stubTransactor runs fn directly and counts invocations.
type stubTransactor struct {
	calls int
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// stubHasher "hashes" by prefixing and records what Verify was asked to compare.
type stubHasher struct {
	hashErr     error
	verifyErr   error
	verifyCalls int
	lastHash    string
}

func (h *stubHasher) Hash(_ context.Context, password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *stubHasher) Verify(_ context.Context, password, hash string) (bool, error) {
	h.verifyCalls++
	h.lastHash = hash
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return hash == "hashed:"+password, nil
}

// stubCodec issues "token:<subject>" and decodes only that shape.
type stubCodec struct {
	issueErr error
	ttl      time.Duration
}

func (c *stubCodec) Issue(subject string, _ time.Duration) (string, error) {
	if c.issueErr != nil {
		return "", c.issueErr
	}
	return "token:" + subject, nil
}

func (c *stubCodec) Decode(token string) (*domain.Claims, error) {
	subject, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, domain.ErrMalformedToken
	}
	return &domain.Claims{Subject: subject}, nil
}

func (c *stubCodec) DefaultTTL() time.Duration {
	if c.ttl == 0 {
		return time.Hour
	}
	return c.ttl
}

type stubLimiter struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   map[string]int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), resets: make(map[string]int)}
}

func (l *stubLimiter) Allowed(_ context.Context, _ string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.blocked, nil
}

func (l *stubLimiter) Fail(_ context.Context, key string) error {
	l.failures[key]++
	return l.err
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	l.resets[key]++
	return l.err
}
