package jobboard

// ScoreVector holds one 0-100 match score per category.
// It is replaced as a whole by every successful scoring run.
type ScoreVector struct {
	Frontend          int `json:"frontend"`
	Backend           int `json:"backend"`
	Fullstack         int `json:"fullstack"`
	DataScience       int `json:"data-science"`
	DevOps            int `json:"devops"`
	ProductManagement int `json:"product-management"`
	Design            int `json:"design"`
	Marketing         int `json:"marketing"`
}

// For returns the score for the category. Unknown categories score 0.
func (v ScoreVector) For(c Category) int {
	switch c {
	case CategoryFrontend:
		return v.Frontend
	case CategoryBackend:
		return v.Backend
	case CategoryFullstack:
		return v.Fullstack
	case CategoryDataScience:
		return v.DataScience
	case CategoryDevOps:
		return v.DevOps
	case CategoryProductManagement:
		return v.ProductManagement
	case CategoryDesign:
		return v.Design
	case CategoryMarketing:
		return v.Marketing
	default:
		return 0
	}
}

// Set assigns the score for the category. Unknown categories are ignored.
func (v *ScoreVector) Set(c Category, score int) {
	switch c {
	case CategoryFrontend:
		v.Frontend = score
	case CategoryBackend:
		v.Backend = score
	case CategoryFullstack:
		v.Fullstack = score
	case CategoryDataScience:
		v.DataScience = score
	case CategoryDevOps:
		v.DevOps = score
	case CategoryProductManagement:
		v.ProductManagement = score
	case CategoryDesign:
		v.Design = score
	case CategoryMarketing:
		v.Marketing = score
	}
}

func (v ScoreVector) Map() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		m[c] = v.For(c)
	}
	return m
}

// Best returns the highest scoring category. Ties resolve to the earlier category.
func (v ScoreVector) Best() (Category, int) {
	best := Categories[0]
	for _, c := range Categories[1:] {
		if v.For(c) > v.For(best) {
			best = c
		}
	}
	return best, v.For(best)
}
