// Package college holds the searchable college catalog.
//
// The catalog is a fixed in-memory list; Search applies the filter set the
// colleges page exposes. Counting searches toward the user's progress is
// the caller's job (the HTTP layer bumps the ledger on each filter
// interaction).
package college

import (
	"math"
	"strconv"
	"strings"

	"github.com/yogendram/career-compass/internal/model"
)

var catalog = []model.College{
	{ID: 1, Name: "IIT Bombay", Location: "Mumbai", Lat: 19.1334, Lon: 72.9155, Website: "#", Description: "A leading technical and research university.", Programs: []string{"Science", "Engineering"}, Tuition: 120000, Type: "Public", StudentFacultyRatio: "8:1"},
	{ID: 2, Name: "St. Stephen's College", Location: "Delhi", Lat: 28.6896, Lon: 77.2098, Website: "#", Description: "Known for its excellence in arts and sciences.", Programs: []string{"Arts", "Science"}, Tuition: 42000, Type: "Public", StudentFacultyRatio: "18:1"},
	{ID: 3, Name: "IIM Ahmedabad", Location: "Ahmedabad", Lat: 23.0334, Lon: 72.5353, Website: "#", Description: "The top-ranked business school in India.", Programs: []string{"Commerce", "Management"}, Tuition: 2300000, Type: "Public", StudentFacultyRatio: "7:1"},
	{ID: 4, Name: "National Law School", Location: "Bengaluru", Lat: 13.0350, Lon: 77.5132, Website: "#", Description: "The premier university for legal education.", Programs: []string{"Arts", "Law"}, Tuition: 280000, Type: "Public", StudentFacultyRatio: "15:1"},
	{ID: 5, Name: "BITS Pilani", Location: "Pilani", Lat: 28.3614, Lon: 75.5878, Website: "#", Description: "A premier private university known for its flexible curriculum.", Programs: []string{"Science", "Engineering"}, Tuition: 420000, Type: "Private", StudentFacultyRatio: "16:1"},
	{ID: 6, Name: "AIIMS Delhi", Location: "New Delhi", Lat: 28.5658, Lon: 77.2093, Website: "#", Description: "India's foremost medical college and hospital.", Programs: []string{"Medical", "Science"}, Tuition: 6000, Type: "Public", StudentFacultyRatio: "6:1"},
	{ID: 7, Name: "Vellore Institute of Technology", Location: "Vellore", Lat: 12.9712, Lon: 79.1593, Website: "#", Description: "A leading private engineering university.", Programs: []string{"Engineering", "Management"}, Tuition: 198000, Type: "Private", StudentFacultyRatio: "18:1"},
	{ID: 8, Name: "University of Delhi", Location: "Delhi", Lat: 28.6885, Lon: 77.2081, Website: "#", Description: "A premier university with renowned arts and commerce programs.", Programs: []string{"Arts", "Commerce", "Science"}, Tuition: 15000, Type: "Public", StudentFacultyRatio: "23:1"},
	{ID: 9, Name: "Christ University", Location: "Bengaluru", Lat: 12.9351, Lon: 77.6144, Website: "#", Description: "A deemed private university known for its discipline and academics.", Programs: []string{"Commerce", "Management", "Arts"}, Tuition: 180000, Type: "Private", StudentFacultyRatio: "15:1"},
	{ID: 10, Name: "National Institute of Design", Location: "Ahmedabad", Lat: 23.0298, Lon: 72.5855, Website: "#", Description: "The most prestigious design school in India.", Programs: []string{"Design", "Arts"}, Tuition: 350000, Type: "Public", StudentFacultyRatio: "12:1"},
}

// Programs lists the filterable program names.
var Programs = []string{"Science", "Arts", "Commerce", "Engineering", "Management", "Law", "Medical", "Design"}

// Tuition bands accepted by Filter.Tuition.
const (
	TuitionAny    = "any"
	TuitionLow    = "<50k"     // under 50,000
	TuitionMedium = "50k-150k" // 50,000 to 150,000
	TuitionHigh   = ">150k"    // over 150,000
)

// Filter is one search interaction. Zero values mean "no constraint".
type Filter struct {
	Query     string   // substring match on the college name
	Program   string   // exact program membership
	Interests []string // user interests, mapped to programs; empty = off
	Tuition   string   // one of the Tuition* bands
	Type      string   // "Public" or "Private"
	MaxRatio  int      // student/faculty ratio ceiling, e.g. 10 for "<10:1"

	// Distance constraint; applied only when RadiusKm > 0 and the caller
	// supplies its coordinates.
	Lat, Lon float64
	RadiusKm float64
}

// Catalog returns the full college list.
func Catalog() []model.College {
	return append([]model.College(nil), catalog...)
}

// Search returns the colleges matching every constraint in f, in catalog
// order.
func Search(f Filter) []model.College {
	interestPrograms := ProgramsForInterests(f.Interests)

	out := []model.College{}
	for _, c := range catalog {
		if f.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.Program != "" && !containsProgram(c.Programs, f.Program) {
			continue
		}
		if len(f.Interests) > 0 && len(interestPrograms) > 0 && !overlaps(c.Programs, interestPrograms) {
			continue
		}
		if !matchesTuition(c.Tuition, f.Tuition) {
			continue
		}
		if f.Type != "" && f.Type != "any" && c.Type != f.Type {
			continue
		}
		if f.MaxRatio > 0 {
			ratio, ok := parseRatio(c.StudentFacultyRatio)
			if !ok || ratio >= f.MaxRatio {
				continue
			}
		}
		if f.RadiusKm > 0 {
			if distanceKm(f.Lat, f.Lon, c.Lat, c.Lon) > f.RadiusKm {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// interestMapping links free-text interest keywords to catalog programs.
var interestMapping = map[string][]string{
	"coding":     {"Engineering", "Science"},
	"tech":       {"Engineering", "Science"},
	"business":   {"Commerce", "Management"},
	"finance":    {"Commerce", "Management"},
	"art":        {"Arts", "Design"},
	"music":      {"Arts"},
	"healthcare": {"Medical", "Science"},
	"biology":    {"Medical", "Science"},
	"law":        {"Law"},
}

// ProgramsForInterests maps a user's interests onto catalog programs by
// keyword containment.
func ProgramsForInterests(interests []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, interest := range interests {
		lower := strings.ToLower(interest)
		for key, programs := range interestMapping {
			if !strings.Contains(lower, key) {
				continue
			}
			for _, p := range programs {
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
		}
	}
	return out
}

func containsProgram(programs []string, want string) bool {
	for _, p := range programs {
		if p == want {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func matchesTuition(tuition int, band string) bool {
	switch band {
	case TuitionLow:
		return tuition < 50000
	case TuitionMedium:
		return tuition >= 50000 && tuition <= 150000
	case TuitionHigh:
		return tuition > 150000
	default:
		return true
	}
}

// parseRatio extracts the student side of a "N:1" ratio string.
func parseRatio(ratio string) (int, bool) {
	head, _, ok := strings.Cut(ratio, ":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}

// distanceKm is the haversine great-circle distance.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == 0 && lon1 == 0 {
		return math.Inf(1)
	}
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
