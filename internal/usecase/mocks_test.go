package usecase_test

import (
	"context"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpsertRole(ctx context.Context, principal domain.Principal, role domain.Role) error {
	return m.Called(ctx, principal, role).Error(0)
}

func (m *MockUserRepo) SaveProfile(ctx context.Context, principal domain.Principal, email string, profile domain.UserProfile) error {
	return m.Called(ctx, principal, email, profile).Error(0)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) List(ctx context.Context) ([]domain.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) ListByTrade(ctx context.Context, trade string) ([]domain.Candidate, error) {
	args := m.Called(ctx, trade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Update(ctx context.Context, id int64, input domain.CandidateInput) error {
	return m.Called(ctx, id, input).Error(0)
}

func (m *MockCandidateRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCandidateRepo) SetDocument(ctx context.Context, id int64, dt domain.DocumentType, doc domain.Document) (string, error) {
	args := m.Called(ctx, id, dt, doc)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockNotifier) NotifyContactMessage(ctx context.Context, msg *domain.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockNotifier) NotifyEnquiry(ctx context.Context, e *domain.Enquiry) error {
	return m.Called(ctx, e).Error(0)
}

// fakeScanner returns a fixed result and counts calls.
type fakeScanner struct {
	result antivirus.ScanResult
	calls  int
}

func (f *fakeScanner) Scan(ctx context.Context, filename string, data []byte) antivirus.ScanResult {
	f.calls++
	return f.result
}

func (f *fakeScanner) Name() string                       { return "fake" }
func (f *fakeScanner) Available(ctx context.Context) bool { return true }

// sessionCtx returns a context carrying an authenticated session for principal.
func sessionCtx(principal domain.Principal) context.Context {
	s := domain.NewSession()
	_ = s.BeginAuthentication()
	_ = s.Complete(principal, string(principal)+"@example.com", domain.RoleGuest)
	return domain.WithSession(context.Background(), s)
}

func userWithRole(p domain.Principal, r domain.Role) *domain.User {
	return &domain.User{Principal: p, Role: r}
}
