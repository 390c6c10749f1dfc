package pricing

// Resolve computes the price a specific partner pays for a product,
// given the product's local override (nil when none exists).
//
// Precedence: the local override always wins over the externally-synced
// catalog price; without an override (or without a price for the
// caller's tier) the product is "price on request" and both price
// fields are nil. The discount applies to the resolved tier price only.
//
// Resolution runs fresh per authenticated caller. It must never be
// memoized together with catalog data: two partners with different
// discounts reading the same cached catalog page get different results.
func Resolve(override *PriceOverride, ctx PartnerContext) ResolvedPrice {
	if override == nil {
		return ResolvedPrice{}
	}

	tierPrice := override.TierPrice(ctx.Tier)
	if tierPrice == nil {
		// Override exists for the other tier only: same as no override.
		return ResolvedPrice{}
	}

	original := *tierPrice
	unit := round2(original * (1 - ctx.DiscountPercentage/100))

	// OriginalPrice is reported even at 0% discount; callers distinguish
	// "has discount" by DiscountPercentage > 0, not by price inequality.
	return ResolvedPrice{
		UnitPrice:          &unit,
		OriginalPrice:      &original,
		DiscountPercentage: ctx.DiscountPercentage,
	}
}
