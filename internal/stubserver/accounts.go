package stubserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opscore/cmdcenter/internal/client/models"
)

const (
	maxFailedAttempts = 5
	lockoutDuration   = 30 * time.Minute
	warningThreshold  = 2
)

// account is an in-memory administrator record.
type account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         models.Role
	IsActive     bool

	failedAttempts int
	lockedUntil    time.Time
}

// fingerprint derives the password-generation marker embedded in tokens:
// a token minted before a password change carries a stale fingerprint and
// can no longer be refreshed.
func fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:])[:16]
}

// accountStore is a mutex-guarded in-memory user table with the same
// failed-attempt lockout policy as the real backend.
type accountStore struct {
	mu   sync.Mutex
	byID map[string]*account
	now  func() time.Time
}

func newAccountStore(now func() time.Time) *accountStore {
	return &accountStore{byID: make(map[string]*account), now: now}
}

func (s *accountStore) add(username, email, password string, role models.Role) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.Username == username {
			return nil, fmt.Errorf("username %q already exists", username)
		}
	}
	a := &account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	s.byID[a.ID] = a
	return a, nil
}

func (s *accountStore) get(id string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	return a, ok
}

func (s *accountStore) list() []*account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*account, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out
}

func (s *accountStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// authError carries the structured rejection detail for a failed login.
type authError struct {
	Detail string
}

func (e *authError) Error() string { return e.Detail }

// authenticate verifies a username/password pair under the lockout policy:
// the lock is checked first, each failure counts toward the limit, a warning
// is appended when few attempts remain, and success resets the counter.
func (s *accountStore) authenticate(username, password string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var acct *account
	for _, a := range s.byID {
		if a.Username == username {
			acct = a
			break
		}
	}
	if acct == nil || !acct.IsActive {
		return nil, &authError{Detail: "Incorrect username or password."}
	}

	now := s.now()
	if now.Before(acct.lockedUntil) {
		return nil, &authError{Detail: lockedDetail(acct.lockedUntil.Sub(now))}
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		acct.failedAttempts++
		if acct.failedAttempts >= maxFailedAttempts {
			acct.lockedUntil = now.Add(lockoutDuration)
			acct.failedAttempts = 0
			return nil, &authError{Detail: lockedDetail(lockoutDuration)}
		}
		detail := "Incorrect username or password."
		if left := maxFailedAttempts - acct.failedAttempts; left <= warningThreshold {
			detail += fmt.Sprintf(" Warning: Lockout in %d attempts.", left)
		}
		return nil, &authError{Detail: detail}
	}

	acct.failedAttempts = 0
	acct.lockedUntil = time.Time{}
	return acct, nil
}

func (s *accountStore) update(id string, role *models.Role, active *bool) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	if role != nil {
		a.Role = *role
	}
	if active != nil {
		a.IsActive = *active
	}
	return a, true
}

// setPassword rehashes the password and thereby rotates the fingerprint,
// invalidating outstanding refresh tokens.
func (s *accountStore) setPassword(id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("account %s not found", id)
	}
	a.PasswordHash = string(hash)
	return nil
}

func lockedDetail(remaining time.Duration) string {
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return fmt.Sprintf("Account locked. Try again in %d minutes.", minutes)
}
