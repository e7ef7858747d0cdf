package repository

import (
	"math"

	"connecto/internal/database"

	"gorm.io/gorm"
)

// readDB picks the replica for listings. Existence checks that guard a write
// stay on the primary so they never observe replica lag.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

func pageOffset(page, size int) int {
	if page < 0 || size <= 0 {
		return 0
	}
	if page > math.MaxInt32/size {
		return math.MaxInt32
	}
	return page * size
}
