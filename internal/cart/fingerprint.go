package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

type fingerprintItem struct {
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	ProductType   string `json:"productType"`
	ProductGroup  int    `json:"productGroup"`
	AddOnGroup    string `json:"addOnGroup,omitempty"`
	FreeGiftGroup string `json:"freeGiftGroup,omitempty"`
	CampaignCode  string `json:"campaignCode,omitempty"`
	Selected      bool   `json:"selected"`
}

// Fingerprint hashes the benefit-relevant shape of the cart over its canonical JSON form.
// Two snapshots that would resolve to the same benefits share a fingerprint.
func Fingerprint(s Snapshot) (string, error) {
	items := make([]fingerprintItem, 0, len(s.LineItems))
	for _, item := range s.LineItems {
		items = append(items, fingerprintItem{
			SKU:           item.SKU,
			Quantity:      item.Quantity,
			ProductType:   item.Custom.ProductType.String(),
			ProductGroup:  item.Custom.ProductGroup,
			AddOnGroup:    item.Custom.AddOnGroup,
			FreeGiftGroup: item.Custom.FreeGiftGroup,
			CampaignCode:  item.CampaignCode(),
			Selected:      item.Custom.Selected,
		})
	}

	raw, err := json.Marshal(struct {
		ID        string            `json:"id"`
		Currency  string            `json:"currency"`
		PreOrder  bool              `json:"preOrder"`
		LineItems []fingerprintItem `json:"lineItems"`
	}{s.ID, s.CurrencyCode, s.Custom.PreOrder, items})
	if err != nil {
		return "", fmt.Errorf("marshal cart fingerprint: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize cart fingerprint: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
