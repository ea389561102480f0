package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// the same SKU may appear only once per order; amounts go on one line
	v.RegisterStructValidation(placeOrderStructValidation, PlaceOrderRequest{})

	return v
}

func placeOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PlaceOrderRequest)

	seen := make(map[int64]bool, len(req.Items))
	for i, it := range req.Items {
		if seen[it.SkuID] {
			sl.ReportError(it.SkuID, fmt.Sprintf("items[%d].sku_id", i), "SkuID", "unique_sku", fmt.Sprintf("%d", it.SkuID))
			continue
		}
		seen[it.SkuID] = true
	}
}
