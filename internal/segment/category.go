package segment

import (
	"fmt"
	"strings"

	"skipper/internal/services"
)

// Category identifies the kind of skippable content an interval covers.
// Base categories form a closed set; composite categories only ever arise
// from merging two overlapping intervals with different categories.
type Category string

const (
	CategorySponsor         Category = "Sponsor"
	CategoryIntro           Category = "Intro"
	CategoryOutro           Category = "Outro"
	CategoryDonations       Category = "Donations"
	CategorySelfPromo       Category = "SelfPromo"
	CategoryAcknowledgments Category = "Acknowledgments"
	CategoryMerchandise     Category = "Merchandise"
)

const compositeSeparator = " + "

// BaseCategories returns the closed set of categories the classifier may emit.
func BaseCategories() []Category {
	return []Category{
		CategorySponsor,
		CategoryIntro,
		CategoryOutro,
		CategoryDonations,
		CategorySelfPromo,
		CategoryAcknowledgments,
		CategoryMerchandise,
	}
}

// ParseCategory maps a raw classifier label onto a base category. Matching is
// case-insensitive with a few tolerated aliases; anything else is a
// validation error.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sponsor", "sponsors", "sponsorship":
		return CategorySponsor, nil
	case "intro", "introduction":
		return CategoryIntro, nil
	case "outro", "ending", "endcards":
		return CategoryOutro, nil
	case "donations", "donation":
		return CategoryDonations, nil
	case "selfpromo", "self promo", "self-promo", "self promotion":
		return CategorySelfPromo, nil
	case "acknowledgments", "acknowledgements", "credits":
		return CategoryAcknowledgments, nil
	case "merchandise", "merch":
		return CategoryMerchandise, nil
	case "":
		return "", services.Wrap(services.ErrValidation, "segment", "parse category", "category is empty", nil)
	default:
		return "", services.Wrap(services.ErrValidation, "segment", "parse category", fmt.Sprintf("unknown category %q", raw), nil)
	}
}

// MergeCategories combines the categories of two merged intervals. Identical
// categories stay unchanged; different ones produce a composite label.
func MergeCategories(a, b Category) Category {
	if a == b {
		return a
	}
	return Category(string(a) + compositeSeparator + string(b))
}

// IsComposite reports whether the category was produced by a merge.
func (c Category) IsComposite() bool {
	return strings.Contains(string(c), compositeSeparator)
}

// Parts returns the base categories a composite label was built from. For a
// base category it returns the category itself.
func (c Category) Parts() []Category {
	raw := strings.Split(string(c), compositeSeparator)
	parts := make([]Category, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, Category(p))
	}
	return parts
}

// Valid reports whether every part of the category belongs to the closed set.
func (c Category) Valid() bool {
	if strings.TrimSpace(string(c)) == "" {
		return false
	}
	for _, part := range c.Parts() {
		if !isBase(part) {
			return false
		}
	}
	return true
}

func isBase(c Category) bool {
	switch c {
	case CategorySponsor, CategoryIntro, CategoryOutro, CategoryDonations,
		CategorySelfPromo, CategoryAcknowledgments, CategoryMerchandise:
		return true
	default:
		return false
	}
}
