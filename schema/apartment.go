package schema

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-wizard/draft"
)

// ApartmentRegistry returns the schemas of the apartment wizard.
func ApartmentRegistry() *Registry[*draft.Apartment] {
	return NewRegistry[*draft.Apartment]().
		RegisterFunc(StepBuilding, ApartmentBuilding).
		RegisterFunc(StepLocation, ApartmentLocation).
		RegisterFunc(StepFacilities, ApartmentFacilities).
		RegisterFunc(StepMedia, ApartmentMedia)
}

func ApartmentBuilding(a *draft.Apartment) error {
	return validation.Errors{
		"apartment_name": validation.Validate(a.Name,
			validation.Required.Error("Apartment name is required"),
		),
		"total_floors": validation.Validate(a.TotalFloors,
			validation.Required.Error("Total floors is required"),
			positiveInteger("Total floors must be a positive whole number"),
		),
		"total_units": validation.Validate(a.TotalUnits,
			validation.Required.Error("Total units is required"),
			positiveInteger("Total units must be a positive whole number"),
		),
		"description": validation.Validate(a.Description,
			validation.Required.Error("Description is required"),
		),
	}.Filter()
}

func ApartmentLocation(a *draft.Apartment) error {
	errs := coordinateRules(a.Latitude, a.Longitude)
	errs["province_id"] = validation.Validate(a.ProvinceID, validation.Required.Error("Province is required"))
	errs["district_id"] = validation.Validate(a.DistrictID, validation.Required.Error("District is required"))
	errs["area_id"] = validation.Validate(a.AreaID, validation.Required.Error("Area is required"))
	errs["address"] = validation.Validate(a.Address, validation.Required.Error("Address is required"))
	return errs.Filter()
}

func ApartmentFacilities(a *draft.Apartment) error {
	return validation.Errors{
		"facilities.others": validation.Validate(a.Facilities.Others,
			validation.RuneLength(0, maxOthersLength).Error("Other facilities must be at most 500 characters"),
		),
	}.Filter()
}

func ApartmentMedia(a *draft.Apartment) error {
	return mediaRule(a.Media.Count()).Filter()
}
