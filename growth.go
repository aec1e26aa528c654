package arr

// TrailingGrowth returns the arithmetic mean of the growth rate over the last
// n bridges of the chain, skipping months without a baseline. A non-positive
// n averages the whole chain.
//
// ok is false when no month in the window has a defined growth.
func TrailingGrowth(chain []Bridge, n int) (mean Percent, ok bool) {
	window := chain
	if n > 0 && n < len(chain) {
		window = chain[len(chain)-n:]
	}
	var sum Percent
	var count int
	for _, b := range window {
		if !b.Growth.Defined {
			continue
		}
		sum += b.Growth.Rate
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / Percent(count), true
}
