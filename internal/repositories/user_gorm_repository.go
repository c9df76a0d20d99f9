package repositories

import (
	"fmt"
	"strings"

	"wfmuser/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the seed database for the given driver ("sqlite" or
// "postgres").
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported seed database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to seed database: %w", err)
	}
	return db, nil
}

// GORMUserRepository is a GORM implementation of UserRepository reading the
// users table.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetAll retrieves all seed users.
func (r *GORMUserRepository) GetAll() ([]models.SeedUser, error) {
	var users []models.SeedUser
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get seed users: %w", err)
	}
	return users, nil
}
