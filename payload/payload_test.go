package payload

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-wizard/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotForSaleScenario(t *testing.T) {
	p := draft.NewProperty()
	p.ID = "42"
	p.PropertyCategory = draft.CategoryNormal
	p.PropertyType = draft.TypePlot
	p.ForSale = true
	p.SalePrice = "15000000"
	p.ForRent = false
	p.Bedrooms = "3"
	p.Media = draft.NewMediaSet([]draft.ExistingMedia{{URL: "a"}})

	res := Property(p, true)

	assert.Nil(t, res.Body["bedrooms"])
	assert.Nil(t, res.Body["bathrooms"])
	assert.Equal(t, int64(15000000), res.Body["sale_price"])
	assert.Nil(t, res.Body["rent_price"])
	assert.Nil(t, res.Body["rent_currency"])
	assert.Equal(t, "AF", res.Body["sale_currency"])
	assert.Empty(t, res.Delete)
	assert.False(t, res.HasUpload())
}

func TestEditDeletesRemovedExistingMedia(t *testing.T) {
	p := draft.NewProperty()
	p.Media = draft.NewMediaSet([]draft.ExistingMedia{{URL: "a"}, {URL: "b"}})
	p.RemoveExistingMedia("b")
	p.AddMedia(draft.NewMedia{URI: "file:///new.jpg", Name: "new.jpg", MimeType: "image/jpeg"})

	res := Property(p, true)

	require.Len(t, res.Delete, 1)
	assert.Equal(t, "b", res.Delete[0].URL)
	assert.Equal(t, []draft.NewMedia{{URI: "file:///new.jpg", Name: "new.jpg", MimeType: "image/jpeg"}}, res.Upload)

	assert.Empty(t, Property(p, false).Delete)
}

func TestInheritedPropertyOmitsLocationAndAmenities(t *testing.T) {
	p := draft.NewProperty()
	p.ApartmentID = "9"
	p.ProvinceID = "1"
	p.Amenities = []string{"wifi"}

	res := Property(p, false)
	for _, key := range InheritedKeys() {
		_, ok := res.Body[key]
		assert.False(t, ok, "key %s must be absent", key)
	}
	assert.Equal(t, int64(9), res.Body["apartment_id"])
}

func TestBodyHasNoUIFields(t *testing.T) {
	p := draft.NewProperty()
	p.Media = draft.NewMediaSet([]draft.ExistingMedia{{URL: "a"}})
	res := Property(p, true)
	for _, key := range []string{"media", "existingMedia", "touched", "errors"} {
		_, ok := res.Body[key]
		assert.False(t, ok, key)
	}
	_, err := json.Marshal(res.Body)
	assert.NoError(t, err)
}

func TestEmptyOptionalNumbersBecomeNull(t *testing.T) {
	p := draft.NewProperty()
	p.Bedrooms = ""
	p.AreaSize = " "
	res := Property(p, false)
	assert.Nil(t, res.Body["bedrooms"])
	assert.Nil(t, res.Body["area_size"])
	assert.Nil(t, res.Body["title"])
	assert.Nil(t, res.Body["province_id"])
	assert.Equal(t, []string{}, res.Body["amenities"])
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"abc", nil},
		{"12", int64(12)},
		{"12.50", 12.5},
		{"1e3", int64(1000)},
		{"NaN", nil},
		{"Inf", nil},
		{"-infinity", nil},
		{"1e400", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Number(tc.in), tc.in)
	}
	assert.Equal(t, "uuid-1", Ref("uuid-1"))
	assert.Equal(t, int64(7), Ref("7"))
}

func TestNonFiniteNumbersKeepBodyEncodable(t *testing.T) {
	p := draft.NewProperty()
	p.PropertyType = draft.TypeHouse
	p.AreaSize = "NaN"
	p.Bedrooms = "Inf"
	p.SalePrice = "-infinity"

	res := Property(p, false)
	assert.Nil(t, res.Body["area_size"])
	assert.Nil(t, res.Body["bedrooms"])
	assert.Nil(t, res.Body["sale_price"])
	_, err := json.Marshal(res.Body)
	require.NoError(t, err)
}

func TestApartmentBody(t *testing.T) {
	a := draft.NewApartment()
	a.Name = "Tower"
	a.TotalFloors = "12"
	a.TotalUnits = ""
	a.Facilities.Lift = true

	res := Apartment(a, false)
	assert.Equal(t, int64(12), res.Body["total_floors"])
	assert.Nil(t, res.Body["total_units"])
	fac, ok := res.Body["facilities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, fac["lift"])
}
