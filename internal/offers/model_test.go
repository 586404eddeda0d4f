package offers

import (
	"testing"
	"time"

	"zipduck-backend/internal/extraction"
)

func strPtr(s string) *string { return &s }

func TestParseHousingCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want HousingCategory
	}{
		{"아파트", CategoryApartment},
		{"민영 아파트 분양", CategoryApartment},
		{"오피스텔", CategoryOfficetel},
		{"빌라", CategoryVilla},
		{"타운하우스", CategoryTownhouse},
		{"도시형 생활주택", CategoryEtc},
		{"", CategoryEtc},
	}
	for _, tc := range cases {
		if got := ParseHousingCategory(tc.raw); got != tc.want {
			t.Errorf("ParseHousingCategory(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestFromCriteriaMapsFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	criteria := extraction.Criteria{
		OfferName:         strPtr("강남 행복주택"),
		Region:            strPtr("서울"),
		HousingCategory:   strPtr("아파트"),
		MinAge:            intPtr(19),
		MaxAge:            intPtr(39),
		MaxIncome:         int64Ptr(70_000_000),
		ApplicationPeriod: strPtr("2026-03-02 ~ 2026-03-15"),
	}

	offer := FromCriteria(criteria, now)
	if offer.Name != "강남 행복주택" || offer.Region != "서울" {
		t.Fatalf("unexpected name/region: %q %q", offer.Name, offer.Region)
	}
	if offer.HousingCategory != CategoryApartment {
		t.Fatalf("expected APARTMENT, got %s", offer.HousingCategory)
	}
	if offer.MinAge == nil || *offer.MinAge != 19 {
		t.Fatalf("min age not carried: %v", offer.MinAge)
	}
	if offer.MinIncome != nil {
		t.Fatalf("missing criterion should stay nil, got %v", *offer.MinIncome)
	}
	if !offer.Active {
		t.Fatal("new offers start active")
	}
	if offer.ApplicationEndDate == nil {
		t.Fatal("expected parsed application end date")
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !offer.ApplicationEndDate.Equal(want) {
		t.Fatalf("application end = %v, want %v", offer.ApplicationEndDate, want)
	}
}

func TestFromCriteriaFallsBackOneMonthOut(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offer := FromCriteria(extraction.Criteria{
		OfferName:         strPtr("이름"),
		ApplicationPeriod: strPtr("접수기간 미정"),
	}, now)

	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if offer.ApplicationEndDate == nil || !offer.ApplicationEndDate.Equal(want) {
		t.Fatalf("application end = %v, want fallback %v", offer.ApplicationEndDate, want)
	}
}

func TestOfferExpired(t *testing.T) {
	today := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	past := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if !(Offer{ApplicationEndDate: &past}).Expired(today) {
		t.Fatal("offer ending yesterday should be expired")
	}
	if (Offer{ApplicationEndDate: &sameDay}).Expired(today) {
		t.Fatal("offer ending today should not be expired yet")
	}
	if (Offer{}).Expired(today) {
		t.Fatal("offer without end date never expires")
	}
}
