package jobboard

import (
	"fmt"
	"strings"
)

// Category is one of the fixed job-type labels. It classifies a posting and keys a ScoreVector.
type Category string

const (
	CategoryFrontend          Category = "frontend"
	CategoryBackend           Category = "backend"
	CategoryFullstack         Category = "fullstack"
	CategoryDataScience       Category = "data-science"
	CategoryDevOps            Category = "devops"
	CategoryProductManagement Category = "product-management"
	CategoryDesign            Category = "design"
	CategoryMarketing         Category = "marketing"
)

// Categories lists every category in scoring order.
var Categories = []Category{
	CategoryFrontend,
	CategoryBackend,
	CategoryFullstack,
	CategoryDataScience,
	CategoryDevOps,
	CategoryProductManagement,
	CategoryDesign,
	CategoryMarketing,
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes and validates a category label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// CategoryNames returns the labels as plain strings.
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, string(c))
	}
	return names
}
