// Package roster holds the sales-team reference data used to validate
// extracted rep names and to group reps into divisions.
package roster

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

// Division is a business unit reps report into.
type Division struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type divisionDoc struct {
	Division `yaml:",inline"`
	Reps     []string `yaml:"reps"`
}

type document struct {
	DefaultDivision string        `yaml:"default_division"`
	Divisions       []divisionDoc `yaml:"divisions"`
	OtherReps       []string      `yaml:"other_reps"`
	Stopwords       []string      `yaml:"stopwords"`
}

// Roster is an immutable set of known reps, non-name stopwords and the
// rep to division mapping. All lookups are case-insensitive.
type Roster struct {
	stopwords   map[string]struct{}
	known       map[string]struct{}
	repDivision map[string]Division
	divisions   []Division
	fallback    Division
}

// Default returns the roster compiled into the binary.
func Default() *Roster {
	r, err := Parse(defaultRoster)
	if err != nil {
		panic(eris.Wrap(err, "roster: embedded document"))
	}
	return r
}

// Load reads a roster override from path. An empty path returns Default.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "roster: read %s", path)
	}
	return Parse(data)
}

// Parse builds a Roster from a YAML document with a top-level "roster" key.
func Parse(data []byte) (*Roster, error) {
	var wrapper struct {
		Roster document `yaml:"roster"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "roster: parse")
	}
	doc := wrapper.Roster
	if len(doc.Divisions) == 0 {
		return nil, eris.New("roster: no divisions defined")
	}

	r := &Roster{
		stopwords:   make(map[string]struct{}, len(doc.Stopwords)),
		known:       make(map[string]struct{}),
		repDivision: make(map[string]Division),
	}
	for _, w := range doc.Stopwords {
		r.stopwords[normalize(w)] = struct{}{}
	}

	found := false
	for _, d := range doc.Divisions {
		if d.ID == "" || d.Name == "" {
			return nil, eris.Errorf("roster: division %q missing id or name", d.ID)
		}
		r.divisions = append(r.divisions, d.Division)
		if d.ID == doc.DefaultDivision {
			r.fallback = d.Division
			found = true
		}
		for _, rep := range d.Reps {
			key := normalize(rep)
			if key == "" {
				continue
			}
			if _, dup := r.repDivision[key]; dup {
				return nil, eris.Errorf("roster: rep %q assigned to more than one division", rep)
			}
			r.repDivision[key] = d.Division
			r.known[key] = struct{}{}
		}
	}
	if !found {
		return nil, eris.Errorf("roster: default division %q not defined", doc.DefaultDivision)
	}
	for _, rep := range doc.OtherReps {
		if key := normalize(rep); key != "" {
			r.known[key] = struct{}{}
		}
	}
	return r, nil
}

// IsStopword reports whether name is a greeting, filler word or company
// fragment rather than a person's name.
func (r *Roster) IsStopword(name string) bool {
	_, ok := r.stopwords[normalize(name)]
	return ok
}

// IsKnown reports whether name is on the rep allowlist.
func (r *Roster) IsKnown(name string) bool {
	_, ok := r.known[normalize(name)]
	return ok
}

// Division returns the division for a rep, or the default division for
// unassigned and empty names.
func (r *Roster) Division(name string) Division {
	if d, ok := r.repDivision[normalize(name)]; ok {
		return d
	}
	return r.fallback
}

// Divisions returns all divisions in document order.
func (r *Roster) Divisions() []Division {
	out := make([]Division, len(r.divisions))
	copy(out, r.divisions)
	return out
}

// KnownReps returns the allowlist as capitalized first names, sorted.
func (r *Roster) KnownReps() []string {
	out := make([]string, 0, len(r.known))
	for k := range r.known {
		out = append(out, strings.ToUpper(k[:1])+k[1:])
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
