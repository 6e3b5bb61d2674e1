package database

import "poetryclub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Poem{},
		&models.Comment{},
		&models.Like{},
	}
}
