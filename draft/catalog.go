package draft

const (
	CategoryApartment = "Apartment"
	CategorySharak    = "Sharak"
	CategoryNormal    = "Normal"
)

const (
	TypeHouse  = "House"
	TypeOffice = "Office"
	TypePlot   = "Plot"
	TypeShop   = "Shop"
	TypeLand   = "Land"
	TypeMarket = "Market"
)

const (
	PurposeSale = "SALE"
	PurposeRent = "RENT"
)

// DefaultCurrency is applied to new drafts and to records without one.
const DefaultCurrency = "AF"

var categoryOrder = []string{CategoryApartment, CategorySharak, CategoryNormal}

var categoryTypes = map[string][]string{
	CategoryApartment: {TypeOffice, TypeHouse},
	CategorySharak:    {TypePlot, TypeHouse, TypeOffice},
	CategoryNormal:    {TypePlot, TypeHouse, TypeOffice, TypeShop, TypeLand, TypeMarket},
}

// Categories returns the known property categories in display order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

// AllowedTypes returns the property types selectable for category.
func AllowedTypes(category string) []string {
	return append([]string(nil), categoryTypes[category]...)
}

// IsTypeAllowed reports whether typ belongs to the allow-list of category.
func IsTypeAllowed(category, typ string) bool {
	for _, t := range categoryTypes[category] {
		if t == typ {
			return true
		}
	}
	return false
}

// Purposes returns the accepted listing purposes.
func Purposes() []string {
	return []string{PurposeSale, PurposeRent}
}
