package model

// CatalogItem is read-only reference data from the store feed.
type CatalogItem struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Glyph        string `json:"emoji,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
	Price        Money  `json:"price"`
	SalePrice    Money  `json:"salePrice,omitempty"`
}

// EffectivePrice prefers a positive sale price over the list price.
func (c CatalogItem) EffectivePrice() float64 {
	if c.SalePrice > 0 {
		return c.SalePrice.Float()
	}
	return c.Price.Float()
}
