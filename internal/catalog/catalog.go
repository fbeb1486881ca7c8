// Package catalog holds the in-memory retail asset inventory and the
// filename heuristics that tag documentation with an asset category and
// document type. The inventory is a static lookup table; persisting it is
// out of scope.
package catalog

import (
	"sort"
	"strings"
)

// Category identifies a class of retail equipment.
type Category string

const (
	CategoryCoffeeMachine Category = "coffee_machine"
	CategoryOven          Category = "oven"
	CategoryRefrigerator  Category = "refrigerator"
	CategoryFreezer       Category = "freezer"
	CategoryDishwasher    Category = "dishwasher"
	CategoryMicrowave     Category = "microwave"
	CategoryPOSTerminal   Category = "pos_terminal"
	CategoryDisplayCooler Category = "display_cooler"
	CategoryIceMachine    Category = "ice_machine"
	CategoryHVAC          Category = "hvac"
)

// Status is the operational state of an asset.
type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusFaulty      Status = "faulty"
	StatusOffline     Status = "offline"
)

// Asset is one piece of tracked equipment.
type Asset struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        Category `json:"category"`
	Model           string   `json:"model"`
	Manufacturer    string   `json:"manufacturer"`
	Location        string   `json:"location"`
	Status          Status   `json:"status"`
	LastMaintenance string   `json:"last_maintenance"`
	SerialNumber    string   `json:"serial_number"`
}

// Stats aggregates the inventory by category and status.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	ByStatus   map[string]int `json:"by_status"`
}

// categoryKeywords maps categories to filename keywords beyond the category
// name itself.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCoffeeMachine, []string{"coffee", "espresso", "cappuccino", "barista", "brew"}},
	{CategoryOven, []string{"oven", "bake", "roast", "convection"}},
	{CategoryRefrigerator, []string{"refrigerator", "fridge", "cooler", "cold storage"}},
	{CategoryFreezer, []string{"freezer", "freeze", "frozen"}},
	{CategoryDishwasher, []string{"dishwasher", "dish", "wash"}},
	{CategoryMicrowave, []string{"microwave", "micro"}},
	{CategoryPOSTerminal, []string{"pos", "terminal", "payment", "register", "cash"}},
	{CategoryDisplayCooler, []string{"display", "cooler", "showcase", "merchandiser"}},
	{CategoryIceMachine, []string{"ice", "ice maker", "ice machine"}},
	{CategoryHVAC, []string{"hvac", "heating", "ventilation", "air conditioning", "ac", "climate"}},
}

// allCategories in declaration order, for exact-name matching first.
var allCategories = []Category{
	CategoryCoffeeMachine, CategoryOven, CategoryRefrigerator, CategoryFreezer,
	CategoryDishwasher, CategoryMicrowave, CategoryPOSTerminal,
	CategoryDisplayCooler, CategoryIceMachine, CategoryHVAC,
}

// DetectCategory infers the asset category from a document filename. It
// first looks for an exact category name, then for known keywords. Returns
// the empty string when nothing matches.
func DetectCategory(filename string) string {
	lower := strings.ToLower(filename)

	for _, cat := range allCategories {
		if strings.Contains(lower, string(cat)) {
			return string(cat)
		}
	}
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return string(entry.category)
			}
		}
	}
	return ""
}

// DetectDocType infers the document type from a filename. Unrecognized names
// default to "manual".
func DetectDocType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "manual"):
		return "manual"
	case strings.Contains(lower, "troubleshoot"), strings.Contains(lower, "error"):
		return "troubleshooting"
	case strings.Contains(lower, "maintenance"), strings.Contains(lower, "service"):
		return "maintenance"
	case strings.Contains(lower, "warranty"):
		return "warranty"
	case strings.Contains(lower, "parts"), strings.Contains(lower, "spare"):
		return "parts"
	default:
		return "manual"
	}
}

// Service serves the static asset inventory.
type Service struct {
	assets map[string]Asset
	order  []string
}

// NewService loads the sample inventory.
func NewService() *Service {
	s := &Service{assets: make(map[string]Asset)}
	for _, a := range sampleAssets {
		s.assets[a.ID] = a
		s.order = append(s.order, a.ID)
	}
	return s
}

// All returns every asset in stable ID order.
func (s *Service) All() []Asset {
	out := make([]Asset, 0, len(s.assets))
	for _, id := range s.order {
		out = append(out, s.assets[id])
	}
	return out
}

// Get returns the asset with the given ID.
func (s *Service) Get(id string) (Asset, bool) {
	a, ok := s.assets[id]
	return a, ok
}

// ByCategory returns all assets in a category.
func (s *Service) ByCategory(category Category) []Asset {
	var out []Asset
	for _, a := range s.All() {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ByStatus returns all assets with the given status.
func (s *Service) ByStatus(status Status) []Asset {
	var out []Asset
	for _, a := range s.All() {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// Stats aggregates counts by category and status.
func (s *Service) Stats() Stats {
	stats := Stats{
		Total:      len(s.assets),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, a := range s.assets {
		stats.ByCategory[string(a.Category)]++
		stats.ByStatus[string(a.Status)]++
	}
	return stats
}

// Categories returns all known categories sorted by name.
func Categories() []string {
	out := make([]string, 0, len(allCategories))
	for _, c := range allCategories {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
