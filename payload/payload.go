package payload

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-wizard/draft"
)

// Result is the wire form of a draft: the request body, the files to upload
// and the persisted media to delete.
type Result struct {
	Body   map[string]any
	Upload []draft.NewMedia
	Delete []draft.ExistingMedia
}

// HasUpload reports whether the submission needs an upload call.
func (r Result) HasUpload() bool { return len(r.Upload) > 0 }

// HasDelete reports whether the submission needs delete calls.
func (r Result) HasDelete() bool { return len(r.Delete) > 0 }

// Keys left out of the body of a property that inherits from a parent.
var inheritedKeys = []string{
	"province_id", "district_id", "area_id",
	"location", "latitude", "longitude",
	"amenities",
}

// InheritedKeys returns the keys omitted for inherited properties.
func InheritedKeys() []string {
	return append([]string(nil), inheritedKeys...)
}

// Property assembles the property request. Deletions are only computed when
// editing.
func Property(p *draft.Property, editing bool) Result {
	body := map[string]any{
		"owner_person_id":    Ref(p.OwnerPersonID),
		"agent_id":           Ref(p.AgentID),
		"apartment_id":       Ref(p.ApartmentID),
		"parent_property_id": Ref(p.ParentPropertyID),

		"property_category": p.PropertyCategory,
		"property_type":     p.PropertyType,
		"purpose":           p.Purpose,

		"title":       Optional(p.Title),
		"description": p.Description,
		"area_size":   Number(p.AreaSize),
		"bedrooms":    Number(p.Bedrooms),
		"bathrooms":   Number(p.Bathrooms),

		"province_id": Ref(p.ProvinceID),
		"district_id": Ref(p.DistrictID),
		"area_id":     Ref(p.AreaID),
		"location":    p.Address,
		"latitude":    Coordinate(p.Latitude),
		"longitude":   Coordinate(p.Longitude),

		"is_available_for_sale": p.ForSale,
		"is_available_for_rent": p.ForRent,
		"sale_price":            Number(p.SalePrice),
		"sale_currency":         Optional(p.SaleCurrency),
		"rent_price":            Number(p.RentPrice),
		"rent_currency":         Optional(p.RentCurrency),

		"amenities": append([]string{}, p.Amenities...),
	}

	if p.IsPlot() {
		body["bedrooms"] = nil
		body["bathrooms"] = nil
	}
	if !p.ForSale {
		body["sale_price"] = nil
		body["sale_currency"] = nil
	}
	if !p.ForRent {
		body["rent_price"] = nil
		body["rent_currency"] = nil
	}
	if p.Inherited() {
		for _, key := range inheritedKeys {
			delete(body, key)
		}
	}

	return Result{
		Body:   body,
		Upload: append([]draft.NewMedia(nil), p.Media.New...),
		Delete: deletions(p.Media, editing),
	}
}

// Apartment assembles the apartment request.
func Apartment(a *draft.Apartment, editing bool) Result {
	body := map[string]any{
		"apartment_name": a.Name,
		"description":    a.Description,
		"address":        a.Address,
		"latitude":       Coordinate(a.Latitude),
		"longitude":      Coordinate(a.Longitude),
		"facilities": map[string]any{
			"lift":      a.Facilities.Lift,
			"parking":   a.Facilities.Parking,
			"generator": a.Facilities.Generator,
			"security":  a.Facilities.Security,
			"solar":     a.Facilities.Solar,
			"others":    a.Facilities.Others,
		},
		"province_id":  Ref(a.ProvinceID),
		"district_id":  Ref(a.DistrictID),
		"area_id":      Ref(a.AreaID),
		"total_floors": Number(a.TotalFloors),
		"total_units":  Number(a.TotalUnits),
	}
	return Result{
		Body:   body,
		Upload: append([]draft.NewMedia(nil), a.Media.New...),
		Delete: deletions(a.Media, editing),
	}
}

func deletions(m draft.Media, editing bool) []draft.ExistingMedia {
	if !editing {
		return nil
	}
	removed := m.Removed()
	for i := range removed {
		if removed[i].Type == "" {
			removed[i].Type = draft.MediaTypePhoto
		}
	}
	return removed
}

// Number coerces a numeric string. Empty, unparsable or non-finite input
// (NaN, Inf) yields nil, never zero. Whole numbers become int64.
func Number(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// Ref coerces a relational id. Numeric ids become numbers, other non empty
// ids pass through as strings.
func Ref(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// Optional maps an empty string to nil.
func Optional(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func Coordinate(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
