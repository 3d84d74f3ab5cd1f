package groups

// Stats are the summary cards shown above the table.
type Stats struct {
	TotalGroups     int `json:"total_groups"`
	MaxDiscount     int `json:"max_discount"`
	TotalBenefits   int `json:"total_benefits"`
	TotalCustomers  int `json:"total_customers"`
	IntegrityIssues int `json:"integrity_issues,omitempty"`
}

// ComputeStats aggregates over the groups that made it into the forest.
// Records excluded for integrity faults are only counted in IntegrityIssues.
func ComputeStats(forest Forest) Stats {
	stats := Stats{IntegrityIssues: len(forest.Report.Issues)}
	for _, row := range Flatten(forest.Roots) {
		rec := row.Node.GroupRecord
		stats.TotalGroups++
		stats.TotalBenefits += len(rec.Benefits)
		stats.TotalCustomers += rec.CustomerCount
		if rec.DiscountPercent > stats.MaxDiscount {
			stats.MaxDiscount = rec.DiscountPercent
		}
	}
	return stats
}
