package repositories

import "wfmuser/internal/models"

// UserRepository provides the initial data set the user store is seeded
// with. It is read once at startup; the store never writes back.
type UserRepository interface {
	GetAll() ([]models.SeedUser, error)
}

// MultiUserRepository concatenates the records of several repositories in
// order.
type MultiUserRepository []UserRepository

// GetAll returns the records of every repository.
func (m MultiUserRepository) GetAll() ([]models.SeedUser, error) {
	var all []models.SeedUser
	for _, repo := range m {
		users, err := repo.GetAll()
		if err != nil {
			return nil, err
		}
		all = append(all, users...)
	}
	return all, nil
}
