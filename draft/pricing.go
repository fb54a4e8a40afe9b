package draft

// Pricing holds independent sale and rent availability, each with its own
// price (a numeric string) and currency.
type Pricing struct {
	ForSale      bool   `json:"is_available_for_sale" yaml:"is_available_for_sale"`
	ForRent      bool   `json:"is_available_for_rent" yaml:"is_available_for_rent"`
	SalePrice    string `json:"sale_price" yaml:"sale_price"`
	SaleCurrency string `json:"sale_currency" yaml:"sale_currency"`
	RentPrice    string `json:"rent_price" yaml:"rent_price"`
	RentCurrency string `json:"rent_currency" yaml:"rent_currency"`
}

// DefaultPricing matches a fresh wizard: for sale, currencies preset.
func DefaultPricing() Pricing {
	return Pricing{
		ForSale:      true,
		SaleCurrency: DefaultCurrency,
		RentCurrency: DefaultCurrency,
	}
}
