package billing

// AllocateUsage distributes a corrected usage volume across the two
// calendar months of a billing period in proportion to their day
// counts, then converts each share to energy using that month's heat
// value. Volume in m³, energy in MJ.
//
// With totalDays == 0 both energies are zero; the caller is expected to
// take the base-fee-only path in that case.
func AllocateUsage(correctedUsageM3 float64, prevDays, currDays, totalDays int, prevHeat, currHeat float64) (prevEnergyMJ, currEnergyMJ float64) {
	if totalDays <= 0 {
		return 0, 0
	}
	prevUsage := correctedUsageM3 * float64(prevDays) / float64(totalDays)
	currUsage := correctedUsageM3 * float64(currDays) / float64(totalDays)
	return prevUsage * prevHeat, currUsage * currHeat
}
