package draft

import "strings"

// Property is the in-progress property listing. Use a pointer; it embeds
// its subscription list.
type Property struct {
	Observable `json:"-" yaml:"-"`

	// ID is the persisted id when editing, empty when creating.
	ID string `json:"-" yaml:"-"`

	OwnerPersonID    string `json:"owner_person_id" yaml:"owner_person_id"`
	AgentID          string `json:"agent_id" yaml:"agent_id"`
	ApartmentID      string `json:"apartment_id" yaml:"apartment_id"`
	ParentPropertyID string `json:"parent_property_id" yaml:"parent_property_id"`
	PropertyCategory string `json:"property_category" yaml:"property_category"`
	PropertyType     string `json:"property_type" yaml:"property_type"`
	Purpose          string `json:"purpose" yaml:"purpose"`

	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	AreaSize    string `json:"area_size" yaml:"area_size"`
	Bedrooms    string `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   string `json:"bathrooms" yaml:"bathrooms"`
	Address     string `json:"location" yaml:"location"`

	Location `yaml:",inline"`
	Pricing  `yaml:",inline"`

	Media     Media    `json:"-" yaml:"-"`
	Amenities []string `json:"amenities" yaml:"amenities"`
}

// NewProperty returns an empty creation draft with the wizard defaults.
func NewProperty() *Property {
	return &Property{
		PropertyCategory: CategoryNormal,
		Purpose:          PurposeSale,
		Bedrooms:         "0",
		Bathrooms:        "0",
		Pricing:          DefaultPricing(),
	}
}

// Inherited reports whether the property is a unit that takes its location
// and amenities from a parent apartment or property.
func (p *Property) Inherited() bool {
	return strings.TrimSpace(p.ApartmentID) != "" || strings.TrimSpace(p.ParentPropertyID) != ""
}

// Editing reports whether the draft was opened from a persisted entity.
func (p *Property) Editing() bool {
	return p.ID != ""
}

// IsPlot reports whether room counts are irrelevant for the property.
func (p *Property) IsPlot() bool {
	return p.PropertyType == TypePlot
}

// SetCategory selects a category. A property type outside the new
// category's allow-list is cleared.
func (p *Property) SetCategory(category string) {
	p.PropertyCategory = category
	p.notify("property_category", category)
	if p.PropertyType != "" && !IsTypeAllowed(category, p.PropertyType) {
		p.PropertyType = ""
		p.notify("property_type", "")
	}
}

func (p *Property) SetProvince(id string) {
	p.Location.SetProvince(id)
	p.notify("province_id", id)
	p.notify("district_id", "")
	p.notify("area_id", "")
}

func (p *Property) SetDistrict(id string) {
	p.Location.SetDistrict(id)
	p.notify("district_id", id)
	p.notify("area_id", "")
}

func (p *Property) SetArea(id string) {
	p.Location.SetArea(id)
	p.notify("area_id", id)
}

// AddMedia stages new files.
func (p *Property) AddMedia(items ...NewMedia) {
	if p.Media.Add(items...) > 0 {
		p.notify("media", p.Media.Count())
	}
}

func (p *Property) RemoveNewMedia(index int) bool {
	ok := p.Media.RemoveNew(index)
	if ok {
		p.notify("media", p.Media.Count())
	}
	return ok
}

// RemoveExistingMedia marks a persisted item for deletion on submit.
func (p *Property) RemoveExistingMedia(url string) bool {
	ok := p.Media.RemoveExisting(url)
	if ok {
		p.notify("media", p.Media.Count())
	}
	return ok
}

func (p *Property) RestoreExistingMedia(url string) bool {
	ok := p.Media.RestoreExisting(url)
	if ok {
		p.notify("media", p.Media.Count())
	}
	return ok
}

// ToggleAmenity adds or removes an amenity tag.
func (p *Property) ToggleAmenity(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for i, a := range p.Amenities {
		if a == tag {
			p.Amenities = append(p.Amenities[:i:i], p.Amenities[i+1:]...)
			p.notify("amenities", p.Amenities)
			return
		}
	}
	p.Amenities = append(p.Amenities, tag)
	p.notify("amenities", p.Amenities)
}

// Set assigns a field by wire name, applying the same cascades as the
// typed setters.
func (p *Property) Set(field string, value any) error {
	setter, ok := propertyFields[field]
	if !ok {
		return unknownField(field)
	}
	if !setter(p, value) {
		return invalidValue(field, value)
	}
	return nil
}

// PropertyFields lists the wire names accepted by Set.
func PropertyFields() []string {
	out := make([]string, 0, len(propertyFields))
	for name := range propertyFields {
		out = append(out, name)
	}
	return out
}

type propertySetter func(*Property, any) bool

func propertyString(field string, target func(*Property) *string) propertySetter {
	return func(p *Property, v any) bool {
		s, ok := asString(v)
		if !ok {
			return false
		}
		*target(p) = s
		p.notify(field, s)
		return true
	}
}

func propertyBool(field string, target func(*Property) *bool) propertySetter {
	return func(p *Property, v any) bool {
		b, ok := asBool(v)
		if !ok {
			return false
		}
		*target(p) = b
		p.notify(field, b)
		return true
	}
}

func propertyCoord(field string, target func(*Property) **float64) propertySetter {
	return func(p *Property, v any) bool {
		f, ok := asFloatPtr(v)
		if !ok {
			return false
		}
		*target(p) = f
		p.notify(field, f)
		return true
	}
}

var propertyFields = map[string]propertySetter{
	"owner_person_id":    propertyString("owner_person_id", func(p *Property) *string { return &p.OwnerPersonID }),
	"agent_id":           propertyString("agent_id", func(p *Property) *string { return &p.AgentID }),
	"apartment_id":       propertyString("apartment_id", func(p *Property) *string { return &p.ApartmentID }),
	"parent_property_id": propertyString("parent_property_id", func(p *Property) *string { return &p.ParentPropertyID }),
	"property_type":      propertyString("property_type", func(p *Property) *string { return &p.PropertyType }),
	"purpose":            propertyString("purpose", func(p *Property) *string { return &p.Purpose }),
	"title":              propertyString("title", func(p *Property) *string { return &p.Title }),
	"description":        propertyString("description", func(p *Property) *string { return &p.Description }),
	"area_size":          propertyString("area_size", func(p *Property) *string { return &p.AreaSize }),
	"bedrooms":           propertyString("bedrooms", func(p *Property) *string { return &p.Bedrooms }),
	"bathrooms":          propertyString("bathrooms", func(p *Property) *string { return &p.Bathrooms }),
	"location":           propertyString("location", func(p *Property) *string { return &p.Address }),
	"sale_price":         propertyString("sale_price", func(p *Property) *string { return &p.SalePrice }),
	"sale_currency":      propertyString("sale_currency", func(p *Property) *string { return &p.SaleCurrency }),
	"rent_price":         propertyString("rent_price", func(p *Property) *string { return &p.RentPrice }),
	"rent_currency":      propertyString("rent_currency", func(p *Property) *string { return &p.RentCurrency }),

	"is_available_for_sale": propertyBool("is_available_for_sale", func(p *Property) *bool { return &p.ForSale }),
	"is_available_for_rent": propertyBool("is_available_for_rent", func(p *Property) *bool { return &p.ForRent }),

	"latitude":  propertyCoord("latitude", func(p *Property) **float64 { return &p.Latitude }),
	"longitude": propertyCoord("longitude", func(p *Property) **float64 { return &p.Longitude }),

	"property_category": func(p *Property, v any) bool {
		s, ok := asString(v)
		if ok {
			p.SetCategory(s)
		}
		return ok
	},
	"province_id": func(p *Property, v any) bool {
		s, ok := asString(v)
		if ok {
			p.SetProvince(s)
		}
		return ok
	},
	"district_id": func(p *Property, v any) bool {
		s, ok := asString(v)
		if ok {
			p.SetDistrict(s)
		}
		return ok
	},
	"area_id": func(p *Property, v any) bool {
		s, ok := asString(v)
		if ok {
			p.SetArea(s)
		}
		return ok
	},
	"amenities": func(p *Property, v any) bool {
		tags, ok := asStrings(v)
		if ok {
			p.Amenities = tags
			p.notify("amenities", tags)
		}
		return ok
	},
}
