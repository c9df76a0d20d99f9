package repositories

import (
	"encoding/json"
	"fmt"
	"os"

	"wfmuser/internal/models"
)

// JSONUserRepository reads seed users from a JSON array on disk.
type JSONUserRepository struct {
	path string
}

// NewJSONUserRepository creates a new instance of JSONUserRepository.
func NewJSONUserRepository(path string) *JSONUserRepository {
	return &JSONUserRepository{path: path}
}

// GetAll decodes the fixtures file.
func (r *JSONUserRepository) GetAll() ([]models.SeedUser, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", r.path, err)
	}

	var users []models.SeedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", r.path, err)
	}
	return users, nil
}
