package profiles

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Get returns the profile for a user.
func (r *PGRepo) Get(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT user_id, age, annual_income, household_members, housing_owned, preferred_regions, created_at, updated_at
FROM profiles
WHERE user_id = $1`
	var p Profile
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Age,
		&p.AnnualIncome,
		&p.HouseholdMembers,
		&p.HousingOwned,
		&p.PreferredRegions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// Upsert inserts or replaces the profile for a user.
func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO profiles (user_id, age, annual_income, household_members, housing_owned, preferred_regions, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id) DO UPDATE SET
    age = EXCLUDED.age,
    annual_income = EXCLUDED.annual_income,
    household_members = EXCLUDED.household_members,
    housing_owned = EXCLUDED.housing_owned,
    preferred_regions = EXCLUDED.preferred_regions,
    updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		profile.UserID,
		profile.Age,
		profile.AnnualIncome,
		profile.HouseholdMembers,
		profile.HousingOwned,
		profile.PreferredRegions,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

var _ Repo = (*PGRepo)(nil)
