package billing

// priceCategory prices one calendar month's energy under a single
// category split.
func priceCategory(bd *PeriodBreakdown, cookingMJ, heatingMJ, cookingPrice, heatingPrice float64) {
	bd.CookingMJ = cookingMJ
	bd.HeatingMJ = heatingMJ
	bd.CookingFee = cookingMJ * cookingPrice
	bd.HeatingFee = heatingMJ * heatingPrice
	bd.Fee = bd.CookingFee + bd.HeatingFee
}

// effectiveBoundary resolves the cooking/heating boundary for a
// combined-usage installation. When the two categories are priced
// identically in both months the split is pure noise, so it collapses
// to zero.
func effectiveBoundary(t TariffSnapshot) float64 {
	if t.PrevPriceCooking == t.PrevPriceHeating && t.CurrPriceCooking == t.CurrPriceHeating {
		return 0
	}
	return t.CookingHeatingBoundary
}

// SplitTariff divides each month's allocated energy into cooking and
// heating sub-amounts and prices them, writing the breakdown for both
// months. The boundary itself is prorated by day count, mirroring how
// the usage was allocated, so that a period straddling two months
// splits consistently on both sides.
func SplitTariff(prevEnergyMJ, currEnergyMJ float64, prevDays, currDays, totalDays int, usageType UsageType, tariff TariffSnapshot) (prev, curr PeriodBreakdown, boundaryUsed float64) {
	prev.Days = prevDays
	prev.EnergyMJ = prevEnergyMJ
	curr.Days = currDays
	curr.EnergyMJ = currEnergyMJ

	switch usageType {
	case UsageCookingOnly:
		priceCategory(&prev, prevEnergyMJ, 0, tariff.PrevPriceCooking, tariff.PrevPriceHeating)
		priceCategory(&curr, currEnergyMJ, 0, tariff.CurrPriceCooking, tariff.CurrPriceHeating)
		return prev, curr, 0

	case UsageHeatingOnly:
		priceCategory(&prev, 0, prevEnergyMJ, tariff.PrevPriceCooking, tariff.PrevPriceHeating)
		priceCategory(&curr, 0, currEnergyMJ, tariff.CurrPriceCooking, tariff.CurrPriceHeating)
		return prev, curr, 0
	}

	boundary := effectiveBoundary(tariff)
	if boundary <= 0 {
		priceCategory(&prev, 0, prevEnergyMJ, tariff.PrevPriceCooking, tariff.PrevPriceHeating)
		priceCategory(&curr, 0, currEnergyMJ, tariff.CurrPriceCooking, tariff.CurrPriceHeating)
		return prev, curr, 0
	}

	var boundaryPrev, boundaryCurr float64
	if totalDays > 0 {
		boundaryPrev = boundary * float64(prevDays) / float64(totalDays)
		boundaryCurr = boundary * float64(currDays) / float64(totalDays)
	}

	prevCooking := min(prevEnergyMJ, boundaryPrev)
	currCooking := min(currEnergyMJ, boundaryCurr)
	priceCategory(&prev, prevCooking, prevEnergyMJ-prevCooking, tariff.PrevPriceCooking, tariff.PrevPriceHeating)
	priceCategory(&curr, currCooking, currEnergyMJ-currCooking, tariff.CurrPriceCooking, tariff.CurrPriceHeating)
	return prev, curr, boundary
}
