package grouping

import (
	"strings"

	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
)

// SuggestCategory returns the id of the category a new item called itemName
// most likely belongs to, or "" when nothing matches. A user category whose
// name appears in the item name wins; otherwise the item name is matched
// against a keyword table and the result mapped onto a user category with
// that name. Matching is case-insensitive.
func SuggestCategory(itemName string, categories []model.Category) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return ""
	}

	byName := make(map[string]string, len(categories))
	for _, c := range rank.Sorted(categories) {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if _, ok := byName[key]; !ok {
			byName[key] = c.ID
		}
		if strings.Contains(name, key) {
			return c.ID
		}
	}

	label, ok := exactMatch[name]
	if !ok {
		for _, entry := range substringMatches {
			if strings.Contains(name, entry.keyword) {
				label, ok = entry.label, true
				break
			}
		}
	}
	if !ok {
		return ""
	}
	for _, alias := range aliases[label] {
		if id, found := byName[alias]; found {
			return id
		}
	}
	return ""
}

// Labels are canonical category names; aliases lists the user category names
// (lowercase) each label may be filed under, most specific first.
var aliases = map[string][]string{
	"clothes":     {"clothes", "clothing", "apparel", "wardrobe"},
	"toiletries":  {"toiletries", "bathroom", "hygiene", "personal care"},
	"electronics": {"electronics", "tech", "gadgets"},
	"documents":   {"documents", "papers", "travel documents"},
	"medicine":    {"medicine", "medication", "first aid", "health"},
	"food":        {"food", "snacks", "kitchen"},
	"gear":        {"gear", "equipment", "outdoor", "camping"},
	"kids":        {"kids", "baby", "children"},
}

var exactMatch = map[string]string{
	"socks":        "clothes",
	"underwear":    "clothes",
	"t-shirts":     "clothes",
	"shirts":       "clothes",
	"pants":        "clothes",
	"shorts":       "clothes",
	"pajamas":      "clothes",
	"jacket":       "clothes",
	"sweater":      "clothes",
	"swimsuit":     "clothes",
	"hat":          "clothes",
	"shoes":        "clothes",
	"sandals":      "clothes",
	"toothbrush":   "toiletries",
	"toothpaste":   "toiletries",
	"shampoo":      "toiletries",
	"deodorant":    "toiletries",
	"sunscreen":    "toiletries",
	"razor":        "toiletries",
	"hairbrush":    "toiletries",
	"charger":      "electronics",
	"headphones":   "electronics",
	"camera":       "electronics",
	"laptop":       "electronics",
	"power bank":   "electronics",
	"passport":     "documents",
	"tickets":      "documents",
	"id card":      "documents",
	"insurance":    "documents",
	"band-aids":    "medicine",
	"painkillers":  "medicine",
	"vitamins":     "medicine",
	"snacks":       "food",
	"water":        "food",
	"tent":         "gear",
	"sleeping bag": "gear",
	"flashlight":   "gear",
	"diapers":      "kids",
	"stroller":     "kids",
}

type substringEntry struct {
	keyword string
	label   string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	{"phone charger", "electronics"},
	{"sleeping bag", "gear"},
	{"sleeping pad", "gear"},
	{"first aid", "medicine"},
	{"rain jacket", "clothes"},
	{"boarding pass", "documents"},
	{"sunglasses", "clothes"},
	{"charger", "electronics"},
	{"cable", "electronics"},
	{"adapter", "electronics"},
	{"battery", "electronics"},
	{"batteries", "electronics"},
	{"passport", "documents"},
	{"visa", "documents"},
	{"ticket", "documents"},
	{"tooth", "toiletries"},
	{"soap", "toiletries"},
	{"lotion", "toiletries"},
	{"shirt", "clothes"},
	{"sock", "clothes"},
	{"jacket", "clothes"},
	{"shoe", "clothes"},
	{"boot", "clothes"},
	{"pill", "medicine"},
	{"medicine", "medicine"},
	{"snack", "food"},
	{"bottle", "food"},
	{"tent", "gear"},
	{"lamp", "gear"},
	{"knife", "gear"},
	{"diaper", "kids"},
	{"toy", "kids"},
}
