package specialist

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"
	"gopkg.in/yaml.v3"
)

//go:embed clinics.yaml
var clinicsYAML []byte

// MaxSearchLength caps the free-text query.
const MaxSearchLength = 100

// fuzzyDistance is the largest edit distance accepted by the fallback match.
const fuzzyDistance = 2

var (
	ErrClinicNotFound = errors.New("clinic not found")
	ErrSearchTooLong  = errors.New("search query too long")
)

// Clinic is a listed hair health provider.
type Clinic struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Specialty     string  `yaml:"specialty" json:"specialty"`
	Location      string  `yaml:"location" json:"location"`
	City          string  `yaml:"city" json:"city"`
	Rating        float64 `yaml:"rating" json:"rating"`
	ReviewCount   int     `yaml:"review_count" json:"review_count"`
	Phone         string  `yaml:"phone" json:"phone"`
	Website       string  `yaml:"website" json:"website"`
	AcceptsReport bool    `yaml:"accepts_report" json:"accepts_report"`
}

type catalog struct {
	Specialties []string `yaml:"specialties"`
	Clinics     []Clinic `yaml:"clinics"`
}

// Filter narrows the directory. Empty or "All" fields match everything.
type Filter struct {
	Specialty string
	City      string
	Search    string
}

// Result is a filtered listing.
type Result struct {
	Clinics []Clinic `json:"clinics"`
	Showing int      `json:"showing"`
	Total   int      `json:"total"`
	// Fuzzy is set when no clinic contained the search text and the
	// near-match fallback produced the list.
	Fuzzy bool `json:"fuzzy"`
}

// Directory is the read-only clinic listing.
type Directory struct {
	specialties []string
	clinics     []Clinic
}

// NewDirectory loads the embedded clinic list.
func NewDirectory() (*Directory, error) {
	return ParseDirectory(clinicsYAML)
}

// ParseDirectory builds a directory from YAML.
func ParseDirectory(data []byte) (*Directory, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse clinic directory: %w", err)
	}
	seen := make(map[string]bool, len(c.Clinics))
	for _, clinic := range c.Clinics {
		if clinic.ID == "" || clinic.Name == "" {
			return nil, fmt.Errorf("clinic entry missing id or name: %+v", clinic)
		}
		if seen[clinic.ID] {
			return nil, fmt.Errorf("duplicate clinic id %q", clinic.ID)
		}
		seen[clinic.ID] = true
	}
	return &Directory{specialties: c.Specialties, clinics: c.Clinics}, nil
}

// Specialties returns the selectable specialties.
func (d *Directory) Specialties() []string {
	return append([]string(nil), d.specialties...)
}

// Cities returns the distinct cities in listing order.
func (d *Directory) Cities() []string {
	var cities []string
	seen := map[string]bool{}
	for _, c := range d.clinics {
		if !seen[c.City] {
			seen[c.City] = true
			cities = append(cities, c.City)
		}
	}
	return cities
}

// Get returns one clinic.
func (d *Directory) Get(id string) (*Clinic, error) {
	for i := range d.clinics {
		if d.clinics[i].ID == id {
			c := d.clinics[i]
			return &c, nil
		}
	}
	return nil, ErrClinicNotFound
}

// Search applies f. The search text matches name or location as a
// case-insensitive substring, falling back to near matches on name words and city.
func (d *Directory) Search(f Filter) (*Result, error) {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	if len([]rune(query)) > MaxSearchLength {
		return nil, ErrSearchTooLong
	}

	var candidates []Clinic
	for _, c := range d.clinics {
		if !matchOption(f.Specialty, c.Specialty) || !matchOption(f.City, c.City) {
			continue
		}
		candidates = append(candidates, c)
	}

	res := &Result{Total: len(d.clinics)}
	if query == "" {
		res.Clinics = candidates
	} else {
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(strings.ToLower(c.Location), query) {
				res.Clinics = append(res.Clinics, c)
			}
		}
		if len(res.Clinics) == 0 {
			for _, c := range candidates {
				if nearMatch(query, c) {
					res.Clinics = append(res.Clinics, c)
				}
			}
			res.Fuzzy = len(res.Clinics) > 0
		}
	}

	if res.Clinics == nil {
		res.Clinics = []Clinic{}
	}
	res.Showing = len(res.Clinics)
	return res, nil
}

func matchOption(want, got string) bool {
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(want, got)
}

// nearMatch compares each query word against the clinic's name words and city.
func nearMatch(query string, c Clinic) bool {
	targets := strings.Fields(strings.ToLower(c.Name))
	targets = append(targets, strings.ToLower(c.City))
	for _, word := range strings.Fields(query) {
		if len(word) < 4 {
			continue
		}
		for _, t := range targets {
			if levenshtein.Distance(word, t) <= fuzzyDistance {
				return true
			}
		}
	}
	return false
}
