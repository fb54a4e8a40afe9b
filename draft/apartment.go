package draft

import "strings"

// Facilities are the fixed building toggles plus free text.
type Facilities struct {
	Lift      bool   `json:"lift" yaml:"lift"`
	Parking   bool   `json:"parking" yaml:"parking"`
	Generator bool   `json:"generator" yaml:"generator"`
	Security  bool   `json:"security" yaml:"security"`
	Solar     bool   `json:"solar" yaml:"solar"`
	Others    string `json:"others" yaml:"others"`
}

// Apartment is the in-progress apartment building. Use a pointer.
type Apartment struct {
	Observable `json:"-" yaml:"-"`

	ID string `json:"-" yaml:"-"`

	Name        string `json:"apartment_name" yaml:"apartment_name"`
	TotalFloors string `json:"total_floors" yaml:"total_floors"`
	TotalUnits  string `json:"total_units" yaml:"total_units"`
	Description string `json:"description" yaml:"description"`
	Address     string `json:"address" yaml:"address"`

	Location `yaml:",inline"`

	Facilities Facilities `json:"facilities" yaml:"facilities"`
	Media      Media      `json:"-" yaml:"-"`
}

func NewApartment() *Apartment {
	return &Apartment{}
}

func (a *Apartment) Editing() bool {
	return a.ID != ""
}

func (a *Apartment) SetProvince(id string) {
	a.Location.SetProvince(id)
	a.notify("province_id", id)
	a.notify("district_id", "")
	a.notify("area_id", "")
}

func (a *Apartment) SetDistrict(id string) {
	a.Location.SetDistrict(id)
	a.notify("district_id", id)
	a.notify("area_id", "")
}

func (a *Apartment) SetArea(id string) {
	a.Location.SetArea(id)
	a.notify("area_id", id)
}

func (a *Apartment) AddMedia(items ...NewMedia) {
	if a.Media.Add(items...) > 0 {
		a.notify("media", a.Media.Count())
	}
}

func (a *Apartment) RemoveNewMedia(index int) bool {
	ok := a.Media.RemoveNew(index)
	if ok {
		a.notify("media", a.Media.Count())
	}
	return ok
}

func (a *Apartment) RemoveExistingMedia(url string) bool {
	ok := a.Media.RemoveExisting(url)
	if ok {
		a.notify("media", a.Media.Count())
	}
	return ok
}

func (a *Apartment) RestoreExistingMedia(url string) bool {
	ok := a.Media.RestoreExisting(url)
	if ok {
		a.notify("media", a.Media.Count())
	}
	return ok
}

// Set assigns a field by wire name. Facilities use dotted paths such as
// "facilities.lift".
func (a *Apartment) Set(field string, value any) error {
	setter, ok := apartmentFields[field]
	if !ok {
		return unknownField(field)
	}
	if !setter(a, value) {
		return invalidValue(field, value)
	}
	return nil
}

// ApartmentFields lists the wire names accepted by Set.
func ApartmentFields() []string {
	out := make([]string, 0, len(apartmentFields))
	for name := range apartmentFields {
		out = append(out, name)
	}
	return out
}

type apartmentSetter func(*Apartment, any) bool

func apartmentString(field string, target func(*Apartment) *string) apartmentSetter {
	return func(a *Apartment, v any) bool {
		s, ok := asString(v)
		if !ok {
			return false
		}
		*target(a) = s
		a.notify(field, s)
		return true
	}
}

func apartmentBool(field string, target func(*Apartment) *bool) apartmentSetter {
	return func(a *Apartment, v any) bool {
		b, ok := asBool(v)
		if !ok {
			return false
		}
		*target(a) = b
		a.notify(field, b)
		return true
	}
}

func apartmentCoord(field string, target func(*Apartment) **float64) apartmentSetter {
	return func(a *Apartment, v any) bool {
		f, ok := asFloatPtr(v)
		if !ok {
			return false
		}
		*target(a) = f
		a.notify(field, f)
		return true
	}
}

var apartmentFields = map[string]apartmentSetter{
	"apartment_name": apartmentString("apartment_name", func(a *Apartment) *string { return &a.Name }),
	"total_floors":   apartmentString("total_floors", func(a *Apartment) *string { return &a.TotalFloors }),
	"total_units":    apartmentString("total_units", func(a *Apartment) *string { return &a.TotalUnits }),
	"description":    apartmentString("description", func(a *Apartment) *string { return &a.Description }),
	"address":        apartmentString("address", func(a *Apartment) *string { return &a.Address }),

	"latitude":  apartmentCoord("latitude", func(a *Apartment) **float64 { return &a.Latitude }),
	"longitude": apartmentCoord("longitude", func(a *Apartment) **float64 { return &a.Longitude }),

	"facilities.lift":      apartmentBool("facilities.lift", func(a *Apartment) *bool { return &a.Facilities.Lift }),
	"facilities.parking":   apartmentBool("facilities.parking", func(a *Apartment) *bool { return &a.Facilities.Parking }),
	"facilities.generator": apartmentBool("facilities.generator", func(a *Apartment) *bool { return &a.Facilities.Generator }),
	"facilities.security":  apartmentBool("facilities.security", func(a *Apartment) *bool { return &a.Facilities.Security }),
	"facilities.solar":     apartmentBool("facilities.solar", func(a *Apartment) *bool { return &a.Facilities.Solar }),
	"facilities.others": func(a *Apartment, v any) bool {
		s, ok := asString(v)
		if ok {
			a.Facilities.Others = strings.TrimRight(s, " ")
			a.notify("facilities.others", a.Facilities.Others)
		}
		return ok
	},

	"province_id": func(a *Apartment, v any) bool {
		s, ok := asString(v)
		if ok {
			a.SetProvince(s)
		}
		return ok
	},
	"district_id": func(a *Apartment, v any) bool {
		s, ok := asString(v)
		if ok {
			a.SetDistrict(s)
		}
		return ok
	},
	"area_id": func(a *Apartment, v any) bool {
		s, ok := asString(v)
		if ok {
			a.SetArea(s)
		}
		return ok
	},
}
