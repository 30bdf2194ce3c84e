package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies SELECT ... FOR UPDATE on dialects that support it.
// The sqlite driver used in tests serializes writers anyway.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return db
	}
}
