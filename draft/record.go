package draft

import "strings"

// PropertyFromRecord builds an edit draft from a fetched property. Ids become
// strings, photos become existing media and amenities may arrive as a JSON
// encoded string.
func PropertyFromRecord(rec map[string]any) *Property {
	p := NewProperty()
	p.ID = recordID(rec, "id", "property_id")

	p.OwnerPersonID = recordRef(rec, "owner_person_id")
	p.AgentID = recordRef(rec, "agent_id")
	p.ApartmentID = recordRef(rec, "apartment_id")
	p.ParentPropertyID = recordRef(rec, "parent_property_id")
	p.PropertyCategory = firstNonEmpty(recordString(rec, "property_category"), CategoryNormal)
	p.PropertyType = firstNonEmpty(recordString(rec, "property_type"), TypeHouse)
	p.Purpose = firstNonEmpty(recordString(rec, "purpose"), PurposeSale)
	p.Title = recordString(rec, "title")
	p.Description = recordString(rec, "description")
	p.AreaSize = recordString(rec, "area_size")
	p.Bedrooms = firstNonEmpty(recordString(rec, "bedrooms"), "0")
	p.Bathrooms = firstNonEmpty(recordString(rec, "bathrooms"), "0")
	p.Address = firstNonEmpty(recordString(rec, "location"), recordString(rec, "address"))

	p.Location = recordLocation(rec)

	p.ForSale = recordBool(rec, "is_available_for_sale")
	p.ForRent = recordBool(rec, "is_available_for_rent")
	p.SalePrice = recordString(rec, "sale_price")
	p.SaleCurrency = firstNonEmpty(recordString(rec, "sale_currency"), DefaultCurrency)
	p.RentPrice = recordString(rec, "rent_price")
	p.RentCurrency = firstNonEmpty(recordString(rec, "rent_currency"), DefaultCurrency)

	p.Media = NewMediaSet(recordMedia(rec, "photos"))
	if tags, ok := asStrings(rec["amenities"]); ok {
		p.Amenities = tags
	}
	return p
}

// ApartmentFromRecord builds an edit draft from a fetched apartment.
func ApartmentFromRecord(rec map[string]any) *Apartment {
	a := NewApartment()
	a.ID = recordID(rec, "id", "apartment_id")
	a.Name = recordString(rec, "apartment_name")
	a.TotalFloors = recordString(rec, "total_floors")
	a.TotalUnits = recordString(rec, "total_units")
	a.Description = recordString(rec, "description")
	a.Address = recordString(rec, "address")
	a.Location = recordLocation(rec)

	if fac, ok := rec["facilities"].(map[string]any); ok {
		a.Facilities = Facilities{
			Lift:      recordBool(fac, "lift"),
			Parking:   recordBool(fac, "parking"),
			Generator: recordBool(fac, "generator"),
			Security:  recordBool(fac, "security"),
			Solar:     recordBool(fac, "solar"),
			Others:    recordString(fac, "others"),
		}
	}
	a.Media = NewMediaSet(recordMedia(rec, "building_images"))
	return a
}

func recordLocation(rec map[string]any) Location {
	return Location{
		ProvinceID: recordRef(rec, "province_id"),
		DistrictID: recordRef(rec, "district_id"),
		AreaID:     recordRef(rec, "area_id"),
		Latitude:   recordCoord(rec, "latitude"),
		Longitude:  recordCoord(rec, "longitude"),
	}
}

func recordID(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := recordRef(rec, k); s != "" {
			return s
		}
	}
	return ""
}

// recordString treats nil and unsupported values as empty.
func recordString(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok {
		return ""
	}
	s, ok := asString(v)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// recordRef reads a relational id; zero means unset.
func recordRef(rec map[string]any, key string) string {
	s := recordString(rec, key)
	if s == "0" {
		return ""
	}
	return s
}

func recordBool(rec map[string]any, key string) bool {
	b, ok := asBool(rec[key])
	return ok && b
}

// recordCoord drops zero and unparsable coordinates, like a falsy check.
func recordCoord(rec map[string]any, key string) *float64 {
	f, ok := asFloatPtr(rec[key])
	if !ok || f == nil || *f == 0 {
		return nil
	}
	return f
}

func recordMedia(rec map[string]any, key string) []ExistingMedia {
	urls, ok := asStrings(rec[key])
	if !ok {
		return nil
	}
	out := make([]ExistingMedia, 0, len(urls))
	for _, u := range urls {
		out = append(out, ExistingMedia{URL: u, Type: MediaTypePhoto})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
