package schema

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-wizard/draft"
)

// Categories returns the accepted property categories.
func Categories() []string { return draft.Categories() }

// AllowedTypes returns the property types accepted for category.
func AllowedTypes(category string) []string { return draft.AllowedTypes(category) }

// IsTypeAllowed reports whether typ is in the allow-list of category.
func IsTypeAllowed(category, typ string) bool { return draft.IsTypeAllowed(category, typ) }

// PropertyRegistry returns the schemas of the property wizard.
func PropertyRegistry() *Registry[*draft.Property] {
	return NewRegistry[*draft.Property]().
		RegisterFunc(StepOwnership, PropertyOwnership).
		RegisterFunc(StepDetails, PropertyDetails).
		RegisterFunc(StepLocation, PropertyLocation).
		RegisterFunc(StepPricing, PropertyPricing).
		RegisterFunc(StepMedia, PropertyMedia)
}

func PropertyOwnership(p *draft.Property) error {
	return validation.Errors{
		"property_category": validation.Validate(p.PropertyCategory,
			validation.Required.Error("Property category is required"),
			validation.In(anySlice(draft.Categories())...).Error("Invalid property category"),
		),
		"property_type": validation.Validate(p.PropertyType,
			validation.Required.Error("Property type is required"),
			validation.By(func(v any) error {
				typ, _ := v.(string)
				if p.PropertyCategory == "" || typ == "" {
					return nil
				}
				if !draft.IsTypeAllowed(p.PropertyCategory, typ) {
					return validation.NewError("validation_type_not_allowed", "Invalid property type for selected category")
				}
				return nil
			}),
		),
		"purpose": validation.Validate(p.Purpose,
			validation.Required.Error("Purpose is required"),
			validation.In(anySlice(draft.Purposes())...).Error("Invalid purpose"),
		),
	}.Filter()
}

// PropertyDetails skips room counts for plots and the place selection for
// inherited units.
func PropertyDetails(p *draft.Property) error {
	rooms := !p.IsPlot()
	place := !p.Inherited()
	return validation.Errors{
		"description": validation.Validate(p.Description,
			validation.Required.Error("Description is required"),
		),
		"area_size": validation.Validate(p.AreaSize,
			validation.Required.Error("Area size is required"),
			positiveNumber("Area size must be greater than 0"),
		),
		"bedrooms": validation.Validate(p.Bedrooms,
			validation.When(rooms, integerBetween(0, 10, "Bedrooms must be between 0 and 10")),
		),
		"bathrooms": validation.Validate(p.Bathrooms,
			validation.When(rooms, integerBetween(0, 10, "Bathrooms must be between 0 and 10")),
		),
		"province_id": validation.Validate(p.ProvinceID,
			validation.When(place, validation.Required.Error("City is required")),
		),
		"district_id": validation.Validate(p.DistrictID,
			validation.When(place, validation.Required.Error("District is required")),
		),
		"area_id": validation.Validate(p.AreaID,
			validation.When(place, validation.Required.Error("Region is required")),
		),
		"location": validation.Validate(p.Address,
			validation.When(place, validation.Required.Error("Location is required")),
		),
	}.Filter()
}

func PropertyLocation(p *draft.Property) error {
	return coordinateRules(p.Latitude, p.Longitude).Filter()
}

// PropertyPricing requires a price exactly when its flag is on, a currency
// when its price is positive, and at least one priced purpose.
func PropertyPricing(p *draft.Property) error {
	errs := validation.Errors{
		"sale_price": validation.Validate(p.SalePrice,
			validation.When(p.ForSale,
				validation.Required.Error("Sale price is required"),
				positiveNumber("Sale price must be greater than 0"),
			),
		),
		"rent_price": validation.Validate(p.RentPrice,
			validation.When(p.ForRent,
				validation.Required.Error("Rent price is required"),
				positiveNumber("Rent price must be greater than 0"),
			),
		),
		"sale_currency": validation.Validate(p.SaleCurrency,
			validation.When(hasPositive(p.SalePrice), validation.Required.Error("Currency is required")),
		),
		"rent_currency": validation.Validate(p.RentCurrency,
			validation.When(hasPositive(p.RentPrice), validation.Required.Error("Currency is required")),
		),
	}
	sale := p.ForSale && present(p.SalePrice)
	rent := p.ForRent && present(p.RentPrice)
	switch {
	case !p.ForSale && !p.ForRent:
		errs[FieldAvailability] = validation.NewError("validation_availability", MsgAvailability)
	case !sale && !rent:
		errs[FieldAvailability] = validation.NewError("validation_price_missing", MsgPriceMissing)
	}
	return errs.Filter()
}

func PropertyMedia(p *draft.Property) error {
	return mediaRule(p.Media.Count()).Filter()
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
