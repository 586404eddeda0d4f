package analysis

import (
	"context"
	"database/sql"
	"errors"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
)

const outcomeColumns = `id, document_id, offer_name, region, address, housing_category, min_age, max_age,
min_income, max_income, min_household_members, max_household_members, max_housing_owned,
special_qualifications, preference_categories, min_price, max_price, application_period,
match_score, eligible, ocr_quality, ocr_warning, extracted_text, model, processing_ms, created_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an outcome. The unique document_id constraint enforces one
// outcome per document.
func (r *PGRepo) Create(ctx context.Context, outcome Outcome) error {
	const query = `
INSERT INTO analysis_outcomes (` + outcomeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	c := outcome.Criteria
	_, err := r.DB.ExecContext(
		ctx,
		query,
		outcome.ID,
		outcome.DocumentID,
		c.OfferName,
		c.Region,
		c.Address,
		c.HousingCategory,
		c.MinAge,
		c.MaxAge,
		c.MinIncome,
		c.MaxIncome,
		c.MinHouseholdMembers,
		c.MaxHouseholdMembers,
		c.MaxHousingOwned,
		c.SpecialQualifications,
		c.PreferenceCategories,
		c.MinPrice,
		c.MaxPrice,
		c.ApplicationPeriod,
		outcome.MatchScore,
		outcome.Eligible,
		string(outcome.OCRQuality),
		nullableString(outcome.OCRWarning),
		nullableString(outcome.ExtractedText),
		nullableString(outcome.Model),
		outcome.ProcessingMS,
		outcome.CreatedAt,
	)
	return err
}

// GetByDocumentID fetches the outcome for a document.
func (r *PGRepo) GetByDocumentID(ctx context.Context, documentID string) (Outcome, error) {
	const query = `SELECT ` + outcomeColumns + ` FROM analysis_outcomes WHERE document_id = $1`

	var outcome Outcome
	var c extraction.Criteria
	var quality string
	var warning, text, model sql.NullString
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&outcome.ID,
		&outcome.DocumentID,
		&c.OfferName,
		&c.Region,
		&c.Address,
		&c.HousingCategory,
		&c.MinAge,
		&c.MaxAge,
		&c.MinIncome,
		&c.MaxIncome,
		&c.MinHouseholdMembers,
		&c.MaxHouseholdMembers,
		&c.MaxHousingOwned,
		&c.SpecialQualifications,
		&c.PreferenceCategories,
		&c.MinPrice,
		&c.MaxPrice,
		&c.ApplicationPeriod,
		&outcome.MatchScore,
		&outcome.Eligible,
		&quality,
		&warning,
		&text,
		&model,
		&outcome.ProcessingMS,
		&outcome.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Outcome{}, ErrNotFound
		}
		return Outcome{}, err
	}

	outcome.Criteria = c
	outcome.OCRQuality = ocr.Tier(quality)
	if warning.Valid {
		outcome.OCRWarning = warning.String
	}
	if text.Valid {
		outcome.ExtractedText = text.String
	}
	if model.Valid {
		outcome.Model = model.String
	}
	return outcome, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
