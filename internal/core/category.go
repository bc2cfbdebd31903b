package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Category classifies an expense. The declaration order is the nominal order
// used when sorting by category.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryFood
	CategoryTransport
	CategoryHousing
	CategoryUtilities
	CategoryEntertainment
	CategoryHealth
	CategoryShopping
	CategoryEducation
	CategoryTravel
	CategoryOther
)

var ErrInvalidCategory = errors.New("invalid category")

var categoryNames = [...]string{
	CategoryUnknown:       "",
	CategoryFood:          "FOOD",
	CategoryTransport:     "TRANSPORT",
	CategoryHousing:       "HOUSING",
	CategoryUtilities:     "UTILITIES",
	CategoryEntertainment: "ENTERTAINMENT",
	CategoryHealth:        "HEALTH",
	CategoryShopping:      "SHOPPING",
	CategoryEducation:     "EDUCATION",
	CategoryTravel:        "TRAVEL",
	CategoryOther:         "OTHER",
}

// Categories returns every valid category in nominal order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames)-1)
	for c := CategoryFood; c <= CategoryOther; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory matches s against the category names, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return CategoryUnknown, fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	for c := CategoryFood; c <= CategoryOther; c++ {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) IsValid() bool {
	return c >= CategoryFood && c <= CategoryOther
}

func (c Category) String() string {
	if !c.IsValid() {
		return ""
	}
	return categoryNames[c]
}

func (c Category) MarshalJSON() ([]byte, error) {
	if !c.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = CategoryUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, data)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
