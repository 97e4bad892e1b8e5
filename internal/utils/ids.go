package utils

import (
	"fmt" // ID formatting

	"edusmart/internal/domain" // Role sequence model

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Upsert support
)

// NextCustomID allocates the next human-readable ID for a role, e.g.
// GV000001 for teachers or HS000042 for learners. The per-role counter row
// is upserted in one statement (insert at 1, or increment on conflict), so
// two registrations of the same role inside concurrent transactions can
// neither allocate the same ID nor fail on the first registration of a
// role. Must be called inside the registration transaction.
func NextCustomID(tx *gorm.DB, role domain.Role) (string, error) {
	seq := domain.RoleSequence{Role: role, LastValue: 1}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}},
		DoUpdates: clause.Assignments(map[string]any{"last_value": gorm.Expr("last_value + 1")}),
	}).Create(&seq).Error; err != nil {
		return "", err // Storage failure
	}
	// Read back the allocated value; the upsert holds the row lock until
	// the surrounding transaction commits
	if err := tx.Where("role = ?", role).First(&seq).Error; err != nil {
		return "", err
	}
	// Zero-pad the numeric suffix to 6 digits behind the role prefix
	return fmt.Sprintf("%s%06d", role.CustomIDPrefix(), seq.LastValue), nil
}
