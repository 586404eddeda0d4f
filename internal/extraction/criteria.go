package extraction

// Criteria holds the offer attributes extracted from an announcement
// document. Pointer fields distinguish "absent from the document" from a
// zero value.
type Criteria struct {
	OfferName             *string
	Region                *string
	Address               *string
	HousingCategory       *string
	MinAge                *int
	MaxAge                *int
	MinIncome             *int64
	MaxIncome             *int64
	MinHouseholdMembers   *int
	MaxHouseholdMembers   *int
	MaxHousingOwned       *int
	SpecialQualifications *string
	PreferenceCategories  *string
	MinPrice              *int64
	MaxPrice              *int64
	ApplicationPeriod     *string
}

// Empty reports whether no field at all was recognized.
func (c Criteria) Empty() bool {
	return c.OfferName == nil &&
		c.Region == nil &&
		c.Address == nil &&
		c.HousingCategory == nil &&
		c.MinAge == nil &&
		c.MaxAge == nil &&
		c.MinIncome == nil &&
		c.MaxIncome == nil &&
		c.MinHouseholdMembers == nil &&
		c.MaxHouseholdMembers == nil &&
		c.MaxHousingOwned == nil &&
		c.SpecialQualifications == nil &&
		c.PreferenceCategories == nil &&
		c.MinPrice == nil &&
		c.MaxPrice == nil &&
		c.ApplicationPeriod == nil
}
