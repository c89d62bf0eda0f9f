package enums

import "fmt"

// CartAction names the mutation a caller wants to apply to cart line items.
type CartAction string

const (
	CartActionAddProduct     CartAction = "add_product"
	CartActionUpdateQuantity CartAction = "update_quantity"
	CartActionRemoveProduct  CartAction = "remove_product"
	CartActionSelectProduct  CartAction = "select_product"
)

var validCartActions = []CartAction{
	CartActionAddProduct,
	CartActionUpdateQuantity,
	CartActionRemoveProduct,
	CartActionSelectProduct,
}

// String implements fmt.Stringer.
func (a CartAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known CartAction.
func (a CartAction) IsValid() bool {
	for _, candidate := range validCartActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseCartAction converts raw input into a CartAction.
func ParseCartAction(value string) (CartAction, error) {
	for _, candidate := range validCartActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart action %q", value)
}
