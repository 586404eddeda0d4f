package offers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestPGRepoCreateInsertsAllColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	offer := Offer{
		ID:              "offer-1",
		Name:            "강남 행복주택",
		Region:          "서울",
		HousingCategory: CategoryApartment,
		MinAge:          intPtr(19),
		MaxAge:          intPtr(39),
		MaxIncome:       int64Ptr(70_000_000),
		Provenance:      ProvenanceRegistry,
		ExternalID:      "ext-1",
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			offer.ID,
			offer.Name,
			offer.Region,
			nil, // address
			string(CategoryApartment),
			offer.MinAge,
			offer.MaxAge,
			nil, // min_income
			offer.MaxIncome,
			nil, nil, nil, // household bounds, max owned
			nil, nil, // qualifications, preferences
			nil, nil, // price bounds
			nil, nil, // application window
			string(ProvenanceRegistry),
			offer.ExternalID,
			nil, // document_id
			true,
			now,
			now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), offer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM offers WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListActiveAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "region", "address", "housing_category",
		"min_age", "max_age", "min_income", "max_income",
		"min_household_members", "max_household_members", "max_housing_owned",
		"special_qualifications", "preference_categories",
		"min_price", "max_price",
		"application_start_date", "application_end_date",
		"provenance", "external_id", "document_id",
		"active", "created_at", "updated_at",
	}).AddRow(
		"offer-1", "강남 행복주택", "서울", nil, "APARTMENT",
		19, 39, nil, int64(70_000_000),
		nil, nil, nil,
		nil, nil,
		nil, nil,
		nil, nil,
		"REGISTRY", "ext-1", nil,
		true, now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM offers WHERE active = (.+) AND region = (.+) AND housing_category = ").
		WithArgs(true, "서울", "APARTMENT").
		WillReturnRows(rows)

	got, err := repo.ListActive(context.Background(), SearchFilter{
		Region:   "서울",
		Category: CategoryApartment,
		Limit:    20,
	})
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(got))
	}
	if got[0].ID != "offer-1" || got[0].Region != "서울" {
		t.Fatalf("unexpected offer: %+v", got[0])
	}
	if got[0].MinAge == nil || *got[0].MinAge != 19 {
		t.Fatalf("expected min age 19, got %v", got[0].MinAge)
	}
	if got[0].MinIncome != nil {
		t.Fatalf("expected nil min income, got %v", *got[0].MinIncome)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMergeWithDocumentRequiresRegistryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE offers").
		WithArgs("offer-1", "doc-1", string(ProvenanceMerged), sqlmock.AnyArg(), string(ProvenanceRegistry)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MergeWithDocument(context.Background(), "offer-1", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on non-registry row, got %v", err)
	}
}

func TestPGRepoDeactivateExpiredReturnsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE offers").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeactivateExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeactivateExpired: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 deactivated, got %d", count)
	}
}
