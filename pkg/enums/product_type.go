package enums

import "fmt"

// ProductType is the role a line item plays within its product group.
type ProductType string

const (
	ProductTypeMainProduct ProductType = "main_product"
	ProductTypeAddOn       ProductType = "add_on"
	ProductTypeFreeGift    ProductType = "free_gift"
	ProductTypeInsurance   ProductType = "insurance"
	ProductTypeSim         ProductType = "sim"
	ProductTypeBundle      ProductType = "bundle"
	ProductTypeService     ProductType = "service"
)

var validProductTypes = []ProductType{
	ProductTypeMainProduct,
	ProductTypeAddOn,
	ProductTypeFreeGift,
	ProductTypeInsurance,
	ProductTypeSim,
	ProductTypeBundle,
	ProductTypeService,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsDependent reports whether the line item hangs off a main product.
func (p ProductType) IsDependent() bool {
	return p != ProductTypeMainProduct && p.IsValid()
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
