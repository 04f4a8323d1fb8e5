package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printfarm-backend/internal/model"
)

// DefaultCatalog is the starter catalog loaded by `migrate --seed`.
var DefaultCatalog = []model.Printable{
	{ID: 1, SKU: "3DP-REDCUBE", Name: "Red Cube", Color: "red", PriceCents: 1999, STLPath: "stl/red-cube.stl"},
	{ID: 2, SKU: "3DP-GREENCUBE", Name: "Green Cube", Color: "green", PriceCents: 1999, STLPath: "stl/green-cube.stl"},
	{ID: 3, SKU: "3DP-BLUECUBE", Name: "Blue Cube", Color: "blue", PriceCents: 1999, STLPath: "stl/blue-cube.stl"},
}

// SeedCatalog inserts the default catalog, leaving existing SKUs untouched.
// It returns the number of rows inserted.
func SeedCatalog(db *gorm.DB) (int64, error) {
	rows := make([]model.Printable, len(DefaultCatalog))
	copy(rows, DefaultCatalog)

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", res.Error)
	}

	// Explicit ids do not advance the Postgres sequence.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT setval(pg_get_serial_sequence('printables', 'id'), (SELECT MAX(id) FROM printables))").Error; err != nil {
			return res.RowsAffected, fmt.Errorf("failed to advance printables sequence: %w", err)
		}
	}
	return res.RowsAffected, nil
}
