package draft

// Location is the hierarchical place selection plus optional coordinates.
// Selecting a parent clears its dependents.
type Location struct {
	ProvinceID string   `json:"province_id" yaml:"province_id"`
	DistrictID string   `json:"district_id" yaml:"district_id"`
	AreaID     string   `json:"area_id" yaml:"area_id"`
	Latitude   *float64 `json:"latitude" yaml:"latitude"`
	Longitude  *float64 `json:"longitude" yaml:"longitude"`
}

// SetProvince selects a province and always resets district and area.
func (l *Location) SetProvince(id string) {
	l.ProvinceID = id
	l.DistrictID = ""
	l.AreaID = ""
}

// SetDistrict selects a district and always resets area.
func (l *Location) SetDistrict(id string) {
	l.DistrictID = id
	l.AreaID = ""
}

func (l *Location) SetArea(id string) {
	l.AreaID = id
}

// SetCoordinates sets or clears (nil) the coordinates.
func (l *Location) SetCoordinates(lat, lng *float64) {
	l.Latitude = cloneFloat(lat)
	l.Longitude = cloneFloat(lng)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
