package cart

// Update action names understood by the commerce platform.
const (
	ActionAddLineItem            = "addLineItem"
	ActionChangeLineItemQuantity = "changeLineItemQuantity"
	ActionRemoveLineItem         = "removeLineItem"
	ActionSetLineItemCustomField = "setLineItemCustomField"
)

// Line item custom field names written through setLineItemCustomField.
const (
	FieldProductGroup      = "productGroup"
	FieldSelected          = "selected"
	FieldPrivilege         = "privilege"
	FieldDiscounts         = "discounts"
	FieldOtherPayments     = "otherPayments"
	FieldAvailableBenefits = "availableBenefits"
)

// UpdateAction is one instruction in an updateCart call.
type UpdateAction struct {
	Action     string          `json:"action"`
	LineItemID string          `json:"lineItemId,omitempty"`
	ProductID  string          `json:"productId,omitempty"`
	VariantID  int             `json:"variantId,omitempty"`
	SKU        string          `json:"sku,omitempty"`
	Quantity   *int            `json:"quantity,omitempty"`
	Name       string          `json:"name,omitempty"`
	Value      any             `json:"value,omitempty"`
	Custom     *LineItemCustom `json:"custom,omitempty"`
}

func AddLineItem(item LineItem) UpdateAction {
	quantity := item.Quantity
	custom := item.Custom
	return UpdateAction{
		Action:    ActionAddLineItem,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		SKU:       item.SKU,
		Quantity:  &quantity,
		Custom:    &custom,
	}
}

func ChangeQuantity(lineItemID string, quantity int) UpdateAction {
	return UpdateAction{Action: ActionChangeLineItemQuantity, LineItemID: lineItemID, Quantity: &quantity}
}

func RemoveLineItem(lineItemID string) UpdateAction {
	return UpdateAction{Action: ActionRemoveLineItem, LineItemID: lineItemID}
}

func SetCustomField(lineItemID, name string, value any) UpdateAction {
	return UpdateAction{Action: ActionSetLineItemCustomField, LineItemID: lineItemID, Name: name, Value: value}
}

// BenefitActions returns the custom field writes that persist stamped benefits on every line item.
func BenefitActions(items []LineItem) []UpdateAction {
	actions := make([]UpdateAction, 0, len(items)*4)
	for _, item := range items {
		var privilege any
		if !item.Custom.Privilege.IsZero() {
			privilege = item.Custom.Privilege
		}
		actions = append(actions,
			SetCustomField(item.ID, FieldPrivilege, privilege),
			SetCustomField(item.ID, FieldDiscounts, item.Custom.Discounts),
			SetCustomField(item.ID, FieldOtherPayments, item.Custom.OtherPayments),
		)
		if item.IsMainProduct() {
			actions = append(actions, SetCustomField(item.ID, FieldAvailableBenefits, item.Custom.AvailableBenefits))
		}
	}
	return actions
}
