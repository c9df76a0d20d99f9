package services

import "errors"

var (
	// ErrNotFound is returned by id and username lookups on the CRUD paths.
	ErrNotFound = errors.New("user not found")
	// ErrCredentialsNotFound is returned when authentication or a password
	// change names an unknown user. UpdatePassword also returns it for a wrong
	// old password so callers cannot tell the two apart.
	ErrCredentialsNotFound = errors.New("user not found with supplied credentials")
	// ErrCredentialsInvalid is returned by VerifyPassword on a password mismatch.
	ErrCredentialsInvalid = errors.New("invalid credentials")
	// ErrHashing wraps failures of the hashing primitive.
	ErrHashing = errors.New("password hashing failed")
	// ErrInvalidUser is returned when a create or update payload fails validation.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUsernameTaken is returned when a username is already used by another record.
	ErrUsernameTaken = errors.New("username already taken")
)
