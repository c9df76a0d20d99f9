package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// DefaultAuthResponseExclusionList lists profile keys removed from a
// successful auth response when nothing else is configured.
var DefaultAuthResponseExclusionList = []string{"password"}

// AuthError reports rejected credentials for a known user.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return "Invalid credentials for " + e.Username
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthService runs the login flow on top of a Directory: look the user up,
// verify the password, and hand back the trimmed profile.
type AuthService struct {
	users      Directory
	exclusions []string
}

// NewAuthService creates a new AuthService. A nil exclusion list falls back
// to DefaultAuthResponseExclusionList.
func NewAuthService(users Directory, exclusionList []string) *AuthService {
	if exclusionList == nil {
		exclusionList = DefaultAuthResponseExclusionList
	}
	return &AuthService{
		users:      users,
		exclusions: exclusionList,
	}
}

// Authenticate checks the credentials of username and returns its profile
// trimmed for the auth response. Unknown users yield ErrNotFound, a wrong
// password an *AuthError wrapping ErrCredentialsInvalid.
func (s *AuthService) Authenticate(username, password string) (map[string]interface{}, error) {
	log.Printf("Checking credentials for user %s", username)

	if _, err := s.users.ByUsername(username); err != nil {
		return nil, err
	}

	if _, err := s.users.VerifyPassword(username, password); err != nil {
		switch {
		case errors.Is(err, ErrCredentialsInvalid):
			return nil, &AuthError{Username: username, Err: err}
		case errors.Is(err, ErrCredentialsNotFound):
			// Deleted while the password was being checked.
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	// Read again so the response carries the reset attempt counter.
	profile, err := s.users.ByUsername(username)
	if err != nil {
		return nil, err
	}
	log.Printf("Valid credentials for user %s", username)

	return TrimAuthResponse(profile, s.exclusions)
}

// TrimAuthResponse converts profile to its JSON object form and drops the
// keys named in exclusionList.
func TrimAuthResponse(profile interface{}, exclusionList []string) (map[string]interface{}, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	trimmed := make(map[string]interface{})
	if err := json.Unmarshal(raw, &trimmed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	for _, key := range exclusionList {
		delete(trimmed, key)
	}
	return trimmed, nil
}
