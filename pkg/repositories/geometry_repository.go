package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/database"
	"github.com/naturewatch/aoi-engine/pkg/models"
)

// GeometryRepository provides read access to the spatial store. Table and
// column identifiers are interpolated from the closed SourceDescriptor set;
// everything user-supplied is bound as a parameter.
type GeometryRepository interface {
	// SearchCandidates returns approximate name matches from one source,
	// at most limit rows with trigram similarity >= floor, ordered by
	// similarity descending. principal scopes sources that require one.
	SearchCandidates(ctx context.Context, desc models.SourceDescriptor, place string, principal string, limit int, floor float64) ([]models.Candidate, error)

	// SubregionsWithin returns every record of the target source with the
	// given subtype whose geometry is strictly and fully contained within
	// the containing record's geometry. The store's natural return order is
	// preserved.
	SubregionsWithin(ctx context.Context, containing models.SourceDescriptor, containingID any, target models.SourceDescriptor, subtype string) ([]models.AOI, error)
}

type geometryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewGeometryRepository creates a new GeometryRepository.
func NewGeometryRepository(db *database.DB, logger *zap.Logger) GeometryRepository {
	return &geometryRepository{
		db:     db,
		logger: logger.Named("geometry-repository"),
	}
}

var _ GeometryRepository = (*geometryRepository)(nil)

func (r *geometryRepository) SearchCandidates(ctx context.Context, desc models.SourceDescriptor, place string, principal string, limit int, floor float64) ([]models.Candidate, error) {
	if desc.RequiresPrincipal && principal == "" {
		return nil, fmt.Errorf("%w: source %s", apperrors.ErrAuthorizationRequired, desc.Source)
	}

	// One scoped connection per query: acquired here, released on every
	// exit path. Acquisition blocks when the pool is exhausted.
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	// The % match operator honors the session trigram threshold, which must be
	// reset on every pooled connection before use.
	if _, err := conn.Exec(ctx, `SELECT set_limit($1::float4)`, floor); err != nil {
		return nil, fmt.Errorf("failed to set similarity floor: %w", err)
	}

	subtypeExpr := "subtype"
	if desc.FixedSubtype != "" {
		subtypeExpr = fmt.Sprintf("'%s' AS subtype", desc.FixedSubtype)
	}

	query := fmt.Sprintf(`
		SELECT CAST(%s AS TEXT) AS src_id,
		       name,
		       %s,
		       similarity(LOWER(name), LOWER($1)) AS similarity_score
		FROM %s
		WHERE name IS NOT NULL AND name %% $1`,
		desc.IDColumn, subtypeExpr, desc.Table)

	args := []any{place}
	if desc.RequiresPrincipal {
		query += fmt.Sprintf(" AND user_id = $%d", len(args)+1)
		args = append(args, principal)
	}
	query += fmt.Sprintf(" ORDER BY similarity_score DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", desc.Source, err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		c := models.Candidate{Source: desc.Source}
		if err := rows.Scan(&c.SrcID, &c.Name, &c.Subtype, &c.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan %s candidate: %w", desc.Source, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s candidates: %w", desc.Source, err)
	}

	return candidates, nil
}

func (r *geometryRepository) SubregionsWithin(ctx context.Context, containing models.SourceDescriptor, containingID any, target models.SourceDescriptor, subtype string) ([]models.AOI, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	// ST_Within keeps only geometries fully inside the containing AOI;
	// records that merely intersect its boundary are excluded. No ORDER BY:
	// the store's natural order is the contract.
	query := fmt.Sprintf(`
		WITH aoi AS (
			SELECT geometry FROM %s WHERE %s = $1 LIMIT 1
		)
		SELECT CAST(t.%s AS TEXT) AS src_id, t.name, t.subtype
		FROM %s AS t, aoi
		WHERE t.subtype = $2
		AND ST_Within(t.geometry, aoi.geometry)`,
		containing.Table, containing.IDColumn, target.IDColumn, target.Table)

	r.logger.Debug("executing containment query",
		zap.String("containing_source", string(containing.Source)),
		zap.Any("containing_id", containingID),
		zap.String("target_source", string(target.Source)),
		zap.String("target_subtype", subtype))

	rows, err := conn.Query(ctx, query, containingID, subtype)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s subregions: %w", target.Source, err)
	}
	defer rows.Close()

	var aois []models.AOI
	for rows.Next() {
		a := models.AOI{Source: target.Source}
		if err := rows.Scan(&a.SrcID, &a.Name, &a.Subtype); err != nil {
			return nil, fmt.Errorf("failed to scan %s subregion: %w", target.Source, err)
		}
		aois = append(aois, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s subregions: %w", target.Source, err)
	}

	return aois, nil
}
