package services

import (
	"fmt"
	"sync"
	"time"

	"wfmuser/internal/hashing"
	"wfmuser/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Directory is the set of operations the user store exposes to the HTTP and
// messaging adapters.
type Directory interface {
	List() []models.User
	Read(id string) (models.User, error)
	ByUsername(username string) (models.User, error)
	Create(candidate models.NewUser) (models.User, error)
	Update(id string, patch models.UserPatch) (models.User, error)
	Delete(id string) (models.User, error)
	VerifyPassword(username, password string) (bool, error)
	UpdatePassword(username, oldPassword, newPassword string) (models.User, error)
	SetAll(users []models.User) error
}

// UserStore keeps the user collection in memory and owns password hashing and
// the failed-attempt backoff. Records are only ever handed out as sanitized
// copies.
//
// The mutex guards the slice and its indexes. It is never held while waiting
// out a backoff delay or calling the hasher, so two concurrent verifications
// for the same user observe the same attempt count.
type UserStore struct {
	hasher   hashing.Hasher
	backoff  BackoffPolicy
	validate *validator.Validate

	mu         sync.RWMutex
	users      []models.User
	byID       map[string]int
	byUsername map[string]int
}

var _ Directory = (*UserStore)(nil)

// NewUserStore creates a UserStore seeded with users. Seed records must
// already carry ids and password hashes (see PrepareSeed).
func NewUserStore(hasher hashing.Hasher, backoff BackoffPolicy, users []models.User) (*UserStore, error) {
	s := &UserStore{
		hasher:   hasher,
		backoff:  backoff,
		validate: validator.New(),
	}
	if err := s.SetAll(users); err != nil {
		return nil, err
	}
	return s, nil
}

// SetAll replaces the whole collection with copies of users.
func (s *UserStore) SetAll(users []models.User) error {
	next := make([]models.User, len(users))
	copy(next, users)

	byID := make(map[string]int, len(next))
	byUsername := make(map[string]int, len(next))
	for i, u := range next {
		if u.ID == "" {
			return fmt.Errorf("%w: record %d has no id", ErrInvalidUser, i)
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("%w: '%s' has no password hash", ErrInvalidUser, u.Username)
		}
		if _, dup := byID[u.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidUser, u.ID)
		}
		if _, dup := byUsername[u.Username]; dup {
			return fmt.Errorf("%w: '%s'", ErrUsernameTaken, u.Username)
		}
		if next[i].PasswordAttempts < 0 {
			next[i].PasswordAttempts = 0
		}
		byID[u.ID] = i
		byUsername[u.Username] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = next
	s.byID = byID
	s.byUsername = byUsername
	return nil
}

// List returns every user in collection order.
func (s *UserStore) List() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Sanitized())
	}
	return out
}

// Read returns the user with the given id.
func (s *UserStore) Read(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[i].Sanitized(), nil
}

// ByUsername returns the user with the given username.
func (s *UserStore) ByUsername(username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byUsername[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[i].Sanitized(), nil
}

// Create hashes the candidate's password, assigns a fresh id and appends the
// record. The collection is untouched if hashing fails.
func (s *UserStore) Create(candidate models.NewUser) (models.User, error) {
	if err := s.validate.Struct(candidate); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	if s.usernameTaken(candidate.Username) {
		return models.User{}, fmt.Errorf("%w: '%s'", ErrUsernameTaken, candidate.Username)
	}

	hashed, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrHashing, err)
	}

	user := candidate.Profile()
	user.PasswordHash = hashed
	user.PasswordAttempts = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	// The username may have been claimed while hashing.
	if _, taken := s.byUsername[user.Username]; taken {
		return models.User{}, fmt.Errorf("%w: '%s'", ErrUsernameTaken, user.Username)
	}
	user.ID = s.newIDLocked()

	s.users = append(s.users, user)
	s.byID[user.ID] = len(s.users) - 1
	s.byUsername[user.Username] = len(s.users) - 1
	return user.Sanitized(), nil
}

// Update merges patch into the user with the given id. The id and password
// cannot be changed here.
func (s *UserStore) Update(id string, patch models.UserPatch) (models.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}

	oldUsername := s.users[i].Username
	if patch.Username != nil && *patch.Username != oldUsername {
		if _, taken := s.byUsername[*patch.Username]; taken {
			return models.User{}, fmt.Errorf("%w: '%s'", ErrUsernameTaken, *patch.Username)
		}
	}

	patch.ApplyTo(&s.users[i])
	if s.users[i].Username != oldUsername {
		delete(s.byUsername, oldUsername)
		s.byUsername[s.users[i].Username] = i
	}
	return s.users[i].Sanitized(), nil
}

// Delete removes the user with the given id and returns it.
func (s *UserStore) Delete(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	removed := s.users[i]

	s.users = append(s.users[:i], s.users[i+1:]...)
	s.reindexLocked()
	return removed.Sanitized(), nil
}

// VerifyPassword checks password for username. Each consecutive failure
// recorded for the user makes the next check wait longer before the hash
// comparison runs.
func (s *UserStore) VerifyPassword(username, password string) (bool, error) {
	s.mu.RLock()
	i, ok := s.byUsername[username]
	var id string
	var attempts int
	if ok {
		id = s.users[i].ID
		attempts = s.users[i].PasswordAttempts
	}
	s.mu.RUnlock()

	if !ok {
		return false, ErrCredentialsNotFound
	}

	if delay := s.backoff.Delay(attempts); delay > 0 {
		time.Sleep(delay)
	}

	// Compare against the hash current after the wait.
	hash, ok := s.hashByID(id)
	if !ok {
		return false, ErrCredentialsNotFound
	}

	match, err := s.hasher.Verify(password, hash)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrHashing, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[id]; ok {
		if match {
			s.users[i].PasswordAttempts = 0
		} else {
			s.users[i].PasswordAttempts++
		}
	}

	if !match {
		return false, ErrCredentialsInvalid
	}
	return true, nil
}

// UpdatePassword replaces the password of username after checking
// oldPassword. No backoff applies. Every failure, including hashing errors,
// is reported as ErrCredentialsNotFound.
func (s *UserStore) UpdatePassword(username, oldPassword, newPassword string) (models.User, error) {
	s.mu.RLock()
	i, ok := s.byUsername[username]
	var id, hash string
	if ok {
		id = s.users[i].ID
		hash = s.users[i].PasswordHash
	}
	s.mu.RUnlock()

	if !ok {
		return models.User{}, ErrCredentialsNotFound
	}

	match, err := s.hasher.Verify(oldPassword, hash)
	if err != nil || !match {
		return models.User{}, ErrCredentialsNotFound
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return models.User{}, ErrCredentialsNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok = s.byID[id]
	if !ok {
		return models.User{}, ErrCredentialsNotFound
	}
	s.users[i].PasswordHash = hashed
	s.users[i].PasswordAttempts = 0
	return s.users[i].Sanitized(), nil
}

func (s *UserStore) hashByID(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return "", false
	}
	return s.users[i].PasswordHash, true
}

func (s *UserStore) usernameTaken(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[username]
	return ok
}

func (s *UserStore) newIDLocked() string {
	for {
		id := uuid.NewString()
		if _, exists := s.byID[id]; !exists {
			return id
		}
	}
}

func (s *UserStore) reindexLocked() {
	s.byID = make(map[string]int, len(s.users))
	s.byUsername = make(map[string]int, len(s.users))
	for i, u := range s.users {
		s.byID[u.ID] = i
		s.byUsername[u.Username] = i
	}
}

// PrepareSeed turns seed records into stored users: plaintext seed passwords
// are hashed and missing ids are generated.
func PrepareSeed(hasher hashing.Hasher, seeds []models.SeedUser) ([]models.User, error) {
	users := make([]models.User, 0, len(seeds))
	for _, seed := range seeds {
		if seed.PasswordHash == "" && seed.Password == "" {
			return nil, fmt.Errorf("%w: seed user '%s' has neither password nor password hash", ErrInvalidUser, seed.Username)
		}
		if seed.PasswordHash == "" {
			hashed, err := hasher.Hash(seed.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash seed password for %s: %w", seed.Username, err)
			}
			seed.PasswordHash = hashed
		}
		if seed.ID == "" {
			seed.ID = uuid.NewString()
		}
		users = append(users, seed.User())
	}
	return users, nil
}
