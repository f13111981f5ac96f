package bulk

import (
	"fmt"
	"strings"
)

const KeyDelimiter = "|"

// ItemKey is "{catalog}|{productId}|{variantId}"; pricing keys leave the variant empty.
func ItemKey(catalog, productID, variantID string) string {
	return catalog + KeyDelimiter + productID + KeyDelimiter + variantID
}

func ParseItemKey(key string) (catalog, productID, variantID string, err error) {
	parts := strings.Split(key, KeyDelimiter)
	if len(parts) != 3 || parts[1] == "" {
		return "", "", "", fmt.Errorf("malformed item key %q", key)
	}
	return parts[0], parts[1], parts[2], nil
}

// ItemIDs returns the ordered, duplicate-free union of pricing and inventory keys.
func ItemIDs(pricing *PricingRequest, stock *StockRequest) []string {
	seen := map[string]bool{}
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, id := range pricing.ProductIDs {
		add(ItemKey(pricing.CatalogName, id, ""))
	}
	for _, p := range stock.Products {
		add(ItemKey(p.CatalogName, p.ProductID, p.VariantID))
	}
	return out
}
