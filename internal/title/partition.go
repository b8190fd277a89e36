package title

// Partition is the result of the payables exclusion pipeline. The five
// slices are mutually exclusive and their union reconstructs the input
// set exactly; downstream reports rely on that invariant.
type Partition struct {
	Core          []ClassifiedTitle
	FinancialCost []ClassifiedTitle
	Advances      []ClassifiedTitle
	Intercompany  []ClassifiedTitle
	Excluded      []ClassifiedTitle
}

// Total returns the number of rows across all partitions.
func (p Partition) Total() int {
	return len(p.Core) + len(p.FinancialCost) + len(p.Advances) + len(p.Intercompany) + len(p.Excluded)
}

// PartitionPayables routes every row into exactly one partition,
// applying the exclusions in fixed order: intercompany first, then
// duplicative document types, then advances, then financial-cost
// titles. Whatever remains is the core payables set.
func (c *Classifier) PartitionPayables(rows []ClassifiedTitle) Partition {
	var p Partition
	for _, row := range rows {
		switch {
		case row.IsIntercompany:
			p.Intercompany = append(p.Intercompany, row)
		case docTypeIn(Normalize(row.DocumentType), c.excludedDocs):
			p.Excluded = append(p.Excluded, row)
		case row.IsAdvance:
			p.Advances = append(p.Advances, row)
		case row.IsFinancialCost:
			p.FinancialCost = append(p.FinancialCost, row)
		default:
			p.Core = append(p.Core, row)
		}
	}
	return p
}
