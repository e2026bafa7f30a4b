package family

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SearchAssets returns photo and media metadata in scope matching the filter,
// newest capture first.
func (s *Store) SearchAssets(ctx context.Context, scope []uuid.UUID, f AssetFilter) ([]Asset, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"a.household_id = ANY($1)", "a.asset_type = 'photo'"}
	args := []any{scope}
	if f.PersonID != nil {
		args = append(args, *f.PersonID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM asset_persons ap WHERE ap.asset_id = a.id AND ap.person_id = $%d)",
			len(args)))
	}
	if f.EventID != nil {
		args = append(args, *f.EventID)
		where = append(where, fmt.Sprintf("a.linked_event_id = $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM asset_tags at WHERE at.asset_id = a.id AND at.tag = $%d)",
			len(args)))
	}
	if f.Year != nil {
		args = append(args, *f.Year)
		where = append(where, fmt.Sprintf("a.year = $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, "%"+strings.TrimSpace(f.Keyword)+"%")
		where = append(where, fmt.Sprintf(
			"(a.description ILIKE $%d OR a.original_filename ILIKE $%d)", len(args), len(args)))
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT a.id, a.household_id, a.asset_type, a.storage_path,
			COALESCE(a.description, ''), a.captured_at, a.year, a.created_at,
			COALESCE((SELECT array_agg(p.first_name || ' ' || p.last_name)
				FROM asset_persons ap JOIN persons p ON p.id = ap.person_id
				WHERE ap.asset_id = a.id), '{}'),
			COALESCE((SELECT array_agg(at.tag) FROM asset_tags at
				WHERE at.asset_id = a.id), '{}')
		FROM assets a
		WHERE %s
		ORDER BY a.captured_at DESC NULLS LAST, a.year DESC NULLS LAST
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.HouseholdID, &a.AssetType, &a.StoragePath,
			&a.Description, &a.CapturedAt, &a.Year, &a.CreatedAt,
			&a.People, &a.Tags); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
