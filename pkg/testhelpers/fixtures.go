package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationsDir locates the repository's migrations directory relative to
// this source file, so integration tests work from any package directory.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}

// CustomAreaOwner is the fixture user that owns the seeded custom area.
const CustomAreaOwner = "user-a"

// CustomAreaID is the identifier of the seeded custom area.
var CustomAreaID = uuid.MustParse("6fa21b62-55c1-4f4e-9f0e-3a9ad25b4a27")

// seedFixtures loads a small, hand-drawn world:
//
//   - Odisha, India is the 10x10 square at the origin, with two districts and
//     two KBAs fully inside it and one district that only straddles its
//     border (so strict containment must exclude it).
//   - Lisbon exists both in Portugal and the USA, and Georgia is both a
//     country and a US state, for cross-region homonym tests.
func seedFixtures(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`INSERT INTO geometries_gadm (gadm_id, name, subtype, geometry) VALUES
			('IND.26_1', 'Odisha, India', 'state-province',
				ST_Multi(ST_GeomFromText('POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))', 4326))),
			('IND.26.1_1', 'Cuttack, Odisha, India', 'district-county',
				ST_Multi(ST_GeomFromText('POLYGON((1 1, 3 1, 3 3, 1 3, 1 1))', 4326))),
			('IND.26.2_1', 'Mayurbhanj, Odisha, India', 'district-county',
				ST_Multi(ST_GeomFromText('POLYGON((4 4, 6 4, 6 6, 4 6, 4 4))', 4326))),
			('IND.27.1_1', 'Medinipur, West Bengal, India', 'district-county',
				ST_Multi(ST_GeomFromText('POLYGON((9 9, 12 9, 12 12, 9 12, 9 9))', 4326))),
			('PRT.11_1', 'Lisbon, Portugal', 'state-province',
				ST_Multi(ST_GeomFromText('POLYGON((30 30, 31 30, 31 31, 30 31, 30 30))', 4326))),
			('USA.34.12_1', 'Lisbon, USA', 'district-county',
				ST_Multi(ST_GeomFromText('POLYGON((40 40, 41 40, 41 41, 40 41, 40 40))', 4326))),
			('GEO', 'Georgia', 'country',
				ST_Multi(ST_GeomFromText('POLYGON((50 50, 52 50, 52 52, 50 52, 50 50))', 4326))),
			('USA.11_1', 'Georgia, USA', 'state-province',
				ST_Multi(ST_GeomFromText('POLYGON((60 60, 62 60, 62 62, 60 62, 60 60))', 4326)))`,

		`INSERT INTO geometries_kba (sitrecid, name, subtype, geometry) VALUES
			(18437, 'Simlipal', 'key-biodiversity-area',
				ST_Multi(ST_GeomFromText('POLYGON((7 7, 8 7, 8 8, 7 8, 7 7))', 4326))),
			(18438, 'Satkosia Gorge', 'key-biodiversity-area',
				ST_Multi(ST_GeomFromText('POLYGON((2 5, 3 5, 3 6, 2 6, 2 5))', 4326)))`,

		`INSERT INTO geometries_wdpa (wdpa_pid, name, subtype, geometry) VALUES
			('555512345', 'Simlipal National Park', 'protected-area',
				ST_Multi(ST_GeomFromText('POLYGON((7 7, 7.5 7, 7.5 7.5, 7 7.5, 7 7))', 4326)))`,

		fmt.Sprintf(`INSERT INTO custom_areas (id, user_id, name, geometry) VALUES
			('%s', '%s', 'My Survey Plot',
				ST_Multi(ST_GeomFromText('POLYGON((5 1, 6 1, 6 2, 5 2, 5 1))', 4326)))`,
			CustomAreaID, CustomAreaOwner),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement failed: %w", err)
		}
	}
	return nil
}
