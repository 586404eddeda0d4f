package offers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const offerColumns = `id, name, region, address, housing_category, min_age, max_age, min_income, max_income,
min_household_members, max_household_members, max_housing_owned, special_qualifications, preference_categories,
min_price, max_price, application_start_date, application_end_date, provenance, external_id, document_id,
active, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new offer.
func (r *PGRepo) Create(ctx context.Context, offer Offer) error {
	const query = `
INSERT INTO offers (` + offerColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		offer.ID,
		offer.Name,
		offer.Region,
		nullString(offer.Address),
		string(offer.HousingCategory),
		offer.MinAge,
		offer.MaxAge,
		offer.MinIncome,
		offer.MaxIncome,
		offer.MinHouseholdMembers,
		offer.MaxHouseholdMembers,
		offer.MaxHousingOwned,
		nullString(offer.SpecialQualifications),
		nullString(offer.PreferenceCategories),
		offer.MinPrice,
		offer.MaxPrice,
		offer.ApplicationStartDate,
		offer.ApplicationEndDate,
		string(offer.Provenance),
		nullString(offer.ExternalID),
		nullString(offer.DocumentID),
		offer.Active,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	return err
}

// Update rewrites all mutable columns of an offer.
func (r *PGRepo) Update(ctx context.Context, offer Offer) error {
	const query = `
UPDATE offers SET
    name = $2, region = $3, address = $4, housing_category = $5,
    min_age = $6, max_age = $7, min_income = $8, max_income = $9,
    min_household_members = $10, max_household_members = $11, max_housing_owned = $12,
    special_qualifications = $13, preference_categories = $14,
    min_price = $15, max_price = $16,
    application_start_date = $17, application_end_date = $18,
    provenance = $19, external_id = $20, document_id = $21,
    active = $22, updated_at = $23
WHERE id = $1`
	res, err := r.DB.ExecContext(
		ctx,
		query,
		offer.ID,
		offer.Name,
		offer.Region,
		nullString(offer.Address),
		string(offer.HousingCategory),
		offer.MinAge,
		offer.MaxAge,
		offer.MinIncome,
		offer.MaxIncome,
		offer.MinHouseholdMembers,
		offer.MaxHouseholdMembers,
		offer.MaxHousingOwned,
		nullString(offer.SpecialQualifications),
		nullString(offer.PreferenceCategories),
		offer.MinPrice,
		offer.MaxPrice,
		offer.ApplicationStartDate,
		offer.ApplicationEndDate,
		string(offer.Provenance),
		nullString(offer.ExternalID),
		nullString(offer.DocumentID),
		offer.Active,
		offer.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches an offer by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Offer, error) {
	const query = `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByExternalID fetches an offer by its registry-feed identifier.
func (r *PGRepo) GetByExternalID(ctx context.Context, externalID string) (Offer, error) {
	const query = `SELECT ` + offerColumns + ` FROM offers WHERE external_id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, externalID))
}

// ListActive returns active offers matching the filter, newest first.
func (r *PGRepo) ListActive(ctx context.Context, filter SearchFilter) ([]Offer, error) {
	builder := sq.Select(offerColumns).
		From("offers").
		Where(sq.Eq{"active": true}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Region != "" {
		builder = builder.Where(sq.Eq{"region": filter.Region})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"housing_category": string(filter.Category)})
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	builder = builder.Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, offer)
	}
	return out, rows.Err()
}

// MergeWithDocument links a document to a registry offer. Attribute values
// are left untouched; only provenance and linkage change.
func (r *PGRepo) MergeWithDocument(ctx context.Context, offerID, documentID string) error {
	const query = `
UPDATE offers
SET provenance = $3, document_id = $2, updated_at = $4
WHERE id = $1 AND provenance = $5`
	res, err := r.DB.ExecContext(ctx, query, offerID, documentID, string(ProvenanceMerged), time.Now().UTC(), string(ProvenanceRegistry))
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateExpired clears the active flag on offers whose window closed.
func (r *PGRepo) DeactivateExpired(ctx context.Context, today time.Time) (int, error) {
	const query = `
UPDATE offers
SET active = FALSE, updated_at = $2
WHERE active AND application_end_date IS NOT NULL AND application_end_date < $1`
	res, err := r.DB.ExecContext(ctx, query, today.Truncate(24*time.Hour), time.Now().UTC())
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Offer, error) {
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, err
	}
	return offer, nil
}

func scanOffer(row rowScanner) (Offer, error) {
	var offer Offer
	var address, specialQual, prefCat, externalID, documentID sql.NullString
	var category, provenance string
	var startDate, endDate sql.NullTime
	err := row.Scan(
		&offer.ID,
		&offer.Name,
		&offer.Region,
		&address,
		&category,
		&offer.MinAge,
		&offer.MaxAge,
		&offer.MinIncome,
		&offer.MaxIncome,
		&offer.MinHouseholdMembers,
		&offer.MaxHouseholdMembers,
		&offer.MaxHousingOwned,
		&specialQual,
		&prefCat,
		&offer.MinPrice,
		&offer.MaxPrice,
		&startDate,
		&endDate,
		&provenance,
		&externalID,
		&documentID,
		&offer.Active,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return Offer{}, err
	}
	offer.HousingCategory = HousingCategory(category)
	offer.Provenance = Provenance(provenance)
	offer.Address = externalString(address)
	offer.SpecialQualifications = externalString(specialQual)
	offer.PreferenceCategories = externalString(prefCat)
	offer.ExternalID = externalString(externalID)
	offer.DocumentID = externalString(documentID)
	if startDate.Valid {
		t := startDate.Time
		offer.ApplicationStartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		offer.ApplicationEndDate = &t
	}
	return offer, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func externalString(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

var _ Repo = (*PGRepo)(nil)
