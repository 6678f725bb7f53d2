package domain

// Inventory represents a collection of extracted test trees.
type Inventory struct {
	// Trees contains one tree per successfully extracted file.
	Trees []*TestTree `json:"trees" yaml:"trees"`
	// RootPath is the root of the source the files were read from.
	RootPath string `json:"rootPath" yaml:"rootPath"`
}

// CountCases returns the total number of cases across all trees.
func (inv Inventory) CountCases() int {
	count := 0
	for _, t := range inv.Trees {
		count += t.CountCases()
	}
	return count
}

// Find returns the tree extracted from path, or nil.
func (inv Inventory) Find(path string) *TestTree {
	for _, t := range inv.Trees {
		if t.Path == path {
			return t
		}
	}
	return nil
}
