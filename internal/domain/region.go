package domain

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ScrollThreshold is the scroll offset in pixels after which the storefront
// header switches to its solid color scheme.
const ScrollThreshold = 200

// heroPages are the storefront sub-paths that render a full-bleed hero image
// under a transparent header.
var heroPages = map[string]struct{}{
	"":             {},
	"/":            {},
	"/about":       {},
	"/inspiration": {},
	"/collection":  {},
}

// Region is a selling area with its own currency and set of countries.
type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Country belongs to exactly one region.
type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
	RegionID    string `json:"region_id"`
}

// CountryOption is one entry of the storefront country selector.
type CountryOption struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	Label   string `json:"label"`
}

// NavLink is a localized storefront navigation entry.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// HeaderView is everything the storefront header needs to render for a given
// page, apart from client-only state such as the open menu.
type HeaderView struct {
	CountryCode     string          `json:"country_code"`
	CurrentPath     string          `json:"current_path"`
	HeroImage       bool            `json:"hero_image"`
	ScrollThreshold int             `json:"scroll_threshold"`
	Navigation      []NavLink       `json:"navigation"`
	CartHref        string          `json:"cart_href"`
	CountryOptions  []CountryOption `json:"country_options"`
	CurrentRegion   *CountryOption  `json:"current_region"`
}

// CountryOptions flattens regions into one option per country, ordered by
// label with locale-aware collation. Equal labels keep region order.
func CountryOptions(regions []Region) []CountryOption {
	options := make([]CountryOption, 0, len(regions))
	for _, r := range regions {
		for _, c := range r.Countries {
			options = append(options, CountryOption{
				Country: strings.ToLower(c.ISO2),
				Region:  r.ID,
				Label:   c.DisplayName,
			})
		}
	}

	col := collate.New(language.Und)
	sort.SliceStable(options, func(i, j int) bool {
		return col.CompareString(options[i].Label, options[j].Label) < 0
	})
	return options
}

// FindCountry returns the option for the given ISO-2 code, ignoring case.
func FindCountry(options []CountryOption, countryCode string) (CountryOption, bool) {
	for _, o := range options {
		if strings.EqualFold(o.Country, countryCode) {
			return o, true
		}
	}
	return CountryOption{}, false
}

// SplitStorefrontPath splits "/{countryCode}{subPath}" into its parts. The
// sub-path keeps its leading slash and is empty for the country home page.
func SplitStorefrontPath(path string) (countryCode, currentPath string) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", ""
	}
	countryCode, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return strings.ToLower(countryCode), ""
	}
	return strings.ToLower(countryCode), "/" + rest
}

// IsHeroPage reports whether the sub-path renders a hero image.
func IsHeroPage(currentPath string) bool {
	_, ok := heroPages[currentPath]
	return ok
}

// LocalizedPath prefixes a storefront path with the country code.
func LocalizedPath(countryCode, path string) string {
	return "/" + strings.ToLower(countryCode) + path
}

// BuildHeader assembles the header view for a storefront path.
func BuildHeader(path string, regions []Region) HeaderView {
	countryCode, currentPath := SplitStorefrontPath(path)
	options := CountryOptions(regions)

	view := HeaderView{
		CountryCode:     countryCode,
		CurrentPath:     currentPath,
		HeroImage:       IsHeroPage(currentPath),
		ScrollThreshold: ScrollThreshold,
		Navigation: []NavLink{
			{Label: "About", Href: LocalizedPath(countryCode, "/about")},
			{Label: "Inspiration", Href: LocalizedPath(countryCode, "/inspiration")},
			{Label: "Shop", Href: LocalizedPath(countryCode, "/store")},
		},
		CartHref:       LocalizedPath(countryCode, "/cart"),
		CountryOptions: options,
	}
	if current, ok := FindCountry(options, countryCode); ok {
		view.CurrentRegion = &current
	}
	return view
}

// NewRegion returns a region ready to be persisted. Country codes are
// normalized to lower case.
func NewRegion(name, currencyCode string, countries []Country, now time.Time) *Region {
	r := &Region{
		ID:           NewID(RegionIDPrefix),
		Name:         strings.TrimSpace(name),
		CurrencyCode: strings.ToLower(currencyCode),
		Countries:    make([]Country, 0, len(countries)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, c := range countries {
		r.Countries = append(r.Countries, Country{
			ISO2:        strings.ToLower(c.ISO2),
			DisplayName: c.DisplayName,
			RegionID:    r.ID,
		})
	}
	return r
}
