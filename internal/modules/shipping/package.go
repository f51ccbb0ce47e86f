package shipping

// Aggregation defaults and carrier floors. Items are modeled as stacked:
// heights sum, length/width take the max across items.
const (
	defaultItemWeightOz = 8.0
	defaultItemLength   = 6.0
	defaultItemWidth    = 6.0
	defaultItemHeight   = 2.0

	minPackageLength   = 6.0
	minPackageWidth    = 6.0
	minPackageHeight   = 2.0
	minPackageWeightLb = 0.1

	ouncesPerPound = 16.0
)

// AggregatePackage folds a cart into a single parcel. Commutative over item
// order; floors guarantee carrier minimums even for zero-dimension items.
func AggregatePackage(items []QuoteItem) Parcel {
	var totalWeightOz, maxLength, maxWidth, totalHeight float64

	for _, item := range items {
		qty := float64(item.Quantity)

		weight := defaultItemWeightOz
		if item.WeightOz != nil {
			weight = *item.WeightOz
		}
		totalWeightOz += weight * qty

		length, width, height := defaultItemLength, defaultItemWidth, defaultItemHeight
		if item.Dimensions != nil {
			length, width, height = item.Dimensions.Length, item.Dimensions.Width, item.Dimensions.Height
		}
		maxLength = max(maxLength, length)
		maxWidth = max(maxWidth, width)
		totalHeight += height * qty
	}

	return Parcel{
		Length: max(maxLength, minPackageLength),
		Width:  max(maxWidth, minPackageWidth),
		Height: max(totalHeight, minPackageHeight),
		Weight: max(totalWeightOz/ouncesPerPound, minPackageWeightLb),
	}
}
