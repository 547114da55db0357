package shopify

import (
	"strconv"
	"strings"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// MetafieldNamespace is where the product delivery overrides live.
// Keys: enabled (boolean), cutoff_hours, max_days_ahead, daily_capacity.
const MetafieldNamespace = "delivery"

// Metafield is the shape Shopify sends on products/update webhooks.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// DecodeProductOverrides turns a product's metafields into typed overrides.
// A key that is absent or unparsable stays nil so it falls back to the
// shop-level setting; only "enabled" is a boolean, all other keys are
// integers.
func DecodeProductOverrides(metafields []Metafield) model.ProductOverrides {
	var out model.ProductOverrides
	for _, m := range metafields {
		if m.Namespace != MetafieldNamespace {
			continue
		}
		switch m.Key {
		case "enabled":
			v := strings.TrimSpace(m.Value) == "true"
			out.Enabled = &v
		case "cutoff_hours":
			out.CutoffHours = parseIntValue(m.Value)
		case "max_days_ahead":
			out.MaxDaysAhead = parseIntValue(m.Value)
		case "daily_capacity":
			out.DailyCapacity = parseIntValue(m.Value)
		}
	}
	return out
}

func parseIntValue(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

// NormalizeProductID strips the GraphQL gid prefix so cache keys match however
// the id arrives (REST webhook payloads send plain numbers, admin sends gids).
func NormalizeProductID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "gid://shopify/Product/")
}
