package scope

import "gorm.io/gorm"

// OrderByCreatedAsc replays rows in the order they happened. Journey
// reconstruction and funnel rollups both depend on it.
func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
