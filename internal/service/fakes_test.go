package service

import (
	"context"
	"sync"
	"time"

	"authflow/internal/entity"

	"github.com/google/uuid"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) VerifyEmail(_ context.Context, userID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	now := time.Now()
	user.EmailVerifiedAt = &now
	user.Email = &email
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.PasswordHash = &passwordHash
	}
	return nil
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts []*entity.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{}
}

func (r *memAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	copied := *account
	r.accounts = append(r.accounts, &copied)
	return nil
}

func (r *memAccountRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.UserID == userID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type memTokenRepo struct {
	mu   sync.Mutex
	rows map[entity.TokenKind][]*entity.AuthToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{rows: make(map[entity.TokenKind][]*entity.AuthToken)}
}

func (r *memTokenRepo) Replace(_ context.Context, kind entity.TokenKind, token *entity.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[kind][:0]
	for _, row := range r.rows[kind] {
		if row.Email != token.Email {
			kept = append(kept, row)
		}
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	r.rows[kind] = append(kept, &copied)
	return nil
}

func (r *memTokenRepo) FindByToken(_ context.Context, kind entity.TokenKind, value string) (*entity.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows[kind] {
		if row.Token == value {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) FindByEmail(_ context.Context, kind entity.TokenKind, email string) (*entity.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows[kind] {
		if row.Email == email {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) Delete(_ context.Context, kind entity.TokenKind, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[kind][:0]
	for _, row := range r.rows[kind] {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	r.rows[kind] = kept
	return nil
}

func (r *memTokenRepo) count(kind entity.TokenKind, email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, row := range r.rows[kind] {
		if row.Email == email {
			count++
		}
	}
	return count
}

type memConfirmationRepo struct {
	mu   sync.Mutex
	rows []*entity.TwoFactorConfirmation
}

func newMemConfirmationRepo() *memConfirmationRepo {
	return &memConfirmationRepo{}
}

func (r *memConfirmationRepo) Replace(_ context.Context, confirmation *entity.TwoFactorConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != confirmation.UserID {
			kept = append(kept, row)
		}
	}
	if confirmation.ID == uuid.Nil {
		confirmation.ID = uuid.New()
	}
	copied := *confirmation
	r.rows = append(kept, &copied)
	return nil
}

func (r *memConfirmationRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.TwoFactorConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memConfirmationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *memConfirmationRepo) countByUser(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, row := range r.rows {
		if row.UserID == userID {
			count++
		}
	}
	return count
}

type memSecurityLogRepo struct {
	mu   sync.Mutex
	logs []*entity.SecurityLog
}

func newMemSecurityLogRepo() *memSecurityLogRepo {
	return &memSecurityLogRepo{}
}

func (r *memSecurityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *memSecurityLogRepo) actions() []entity.SecurityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(r.logs))
	for _, log := range r.logs {
		actions = append(actions, log.Action)
	}
	return actions
}

type sentEmail struct {
	To      string
	Kind    string
	Payload string
}

type recordingEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (s *recordingEmailSender) SendVerificationEmail(_ context.Context, email string, token string) error {
	s.record(sentEmail{To: email, Kind: "verification", Payload: token})
	return nil
}

func (s *recordingEmailSender) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	s.record(sentEmail{To: email, Kind: "reset", Payload: token})
	return nil
}

func (s *recordingEmailSender) SendTwoFactorCodeEmail(_ context.Context, email string, code string) error {
	s.record(sentEmail{To: email, Kind: "two_factor", Payload: code})
	return nil
}

func (s *recordingEmailSender) record(email sentEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
}

func (s *recordingEmailSender) byKind(kind string) []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []sentEmail
	for _, email := range s.sent {
		if email.Kind == kind {
			matched = append(matched, email)
		}
	}
	return matched
}

type scriptedLimiter struct {
	result LimitResult
	err    error
	calls  int
}

func (l *scriptedLimiter) Limit(_ context.Context, _ string) (LimitResult, error) {
	l.calls++
	return l.result, l.err
}

func allowAllLimiter() *scriptedLimiter {
	return &scriptedLimiter{result: LimitResult{Allowed: true, Remaining: 4}}
}
