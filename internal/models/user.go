package models

// User is a user profile held by the directory. PasswordHash never leaves
// the store: every value handed to a caller has it zeroed.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	Position         string `json:"position"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	Banner           string `json:"banner"`
	Notes            string `json:"notes,omitempty"`
	PasswordHash     string `json:"-"`
	PasswordAttempts int    `json:"passwordAttempts"`
}

// Sanitized returns a copy of u without the password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// NewUser is the candidate accepted by create. Any ID is ignored, a fresh
// one is always generated.
type NewUser struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username" validate:"required,max=100"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	Position string `json:"position"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Avatar   string `json:"avatar"`
	Banner   string `json:"banner"`
	Notes    string `json:"notes,omitempty"`
	Password string `json:"password" validate:"required"`
}

// Profile builds the stored record for n, without id or hash.
func (n NewUser) Profile() User {
	return User{
		Username: n.Username,
		Name:     n.Name,
		Position: n.Position,
		Phone:    n.Phone,
		Email:    n.Email,
		Avatar:   n.Avatar,
		Banner:   n.Banner,
		Notes:    n.Notes,
	}
}

// UserPatch carries the fields update may merge. Nil fields are left alone.
// ID and password are not part of it.
type UserPatch struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=1,max=100"`
	Name     *string `json:"name,omitempty"`
	Position *string `json:"position,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar   *string `json:"avatar,omitempty"`
	Banner   *string `json:"banner,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// ApplyTo merges the non-nil fields of p into u.
func (p UserPatch) ApplyTo(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Username, p.Username)
	set(&u.Name, p.Name)
	set(&u.Position, p.Position)
	set(&u.Phone, p.Phone)
	set(&u.Email, p.Email)
	set(&u.Avatar, p.Avatar)
	set(&u.Banner, p.Banner)
	set(&u.Notes, p.Notes)
}

// SeedUser is a record of the initial data set. Password is a plaintext
// fallback, hashed at load time when PasswordHash is empty.
type SeedUser struct {
	ID               string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username         string `json:"username" gorm:"uniqueIndex;type:varchar(100)"`
	Name             string `json:"name"`
	Position         string `json:"position"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	Banner           string `json:"banner"`
	Notes            string `json:"notes"`
	PasswordHash     string `json:"passwordHash" gorm:"column:password_hash;type:varchar(255)"`
	Password         string `json:"password" gorm:"-"`
	PasswordAttempts int    `json:"passwordAttempts" gorm:"default:0"`
}

// TableName pins the seed table name for gorm.
func (SeedUser) TableName() string {
	return "users"
}

// User converts the seed record into a stored record.
func (s SeedUser) User() User {
	return User{
		ID:               s.ID,
		Username:         s.Username,
		Name:             s.Name,
		Position:         s.Position,
		Phone:            s.Phone,
		Email:            s.Email,
		Avatar:           s.Avatar,
		Banner:           s.Banner,
		Notes:            s.Notes,
		PasswordHash:     s.PasswordHash,
		PasswordAttempts: s.PasswordAttempts,
	}
}
