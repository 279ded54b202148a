package service

import "strings"

// Venue is a suggested publication outlet with its rough publishing cost.
type Venue struct {
	Name string `json:"name"`
	Cost string `json:"cost"`
}

const unknownCost = "Varies by journal"

var venueCosts = map[string]string{
	"IEEE Transactions":         "$1000-$2000",
	"Springer Computer Science": "$1500-$3000",
	"arXiv":                     "Free",
	"Nature":                    "$2000-$5000",
	"PLOS ONE":                  "$1500",
}

var venueGroups = []struct {
	keywords []string
	venues   []string
}{
	{[]string{"computer", "software"}, []string{"IEEE Transactions", "Springer Computer Science", "arXiv"}},
	{[]string{"biology", "health"}, []string{"Nature", "PLOS ONE", "BioMed Central"}},
}

var fallbackVenues = []string{"arXiv", "Springer Open", "Generic Open Access Journal"}

// SuggestVenues matches keywords in the description against the venue groups.
func SuggestVenues(description string) []Venue {
	desc := strings.ToLower(description)
	names := fallbackVenues
	for _, g := range venueGroups {
		if containsAny(desc, g.keywords) {
			names = g.venues
			break
		}
	}

	out := make([]Venue, 0, len(names))
	for _, n := range names {
		out = append(out, Venue{Name: n, Cost: PublishingCost(n)})
	}
	return out
}

func PublishingCost(venue string) string {
	if c, ok := venueCosts[venue]; ok {
		return c
	}
	return unknownCost
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
