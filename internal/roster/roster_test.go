package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Stopwords(t *testing.T) {
	r := Default()

	for _, w := range []string{"hello", "Hello", " THANK ", "nationwide", "haul", "yes", "no", "um"} {
		assert.True(t, r.IsStopword(w), w)
	}
	assert.False(t, r.IsStopword("Brian"))
	assert.False(t, r.IsStopword(""))
}

func TestDefault_KnownReps(t *testing.T) {
	r := Default()

	for _, n := range []string{"brian", "Vanessa", "PABLO", "erika", "jennine", "carolina", "rossy"} {
		assert.True(t, r.IsKnown(n), n)
	}
	assert.False(t, r.IsKnown("Zebulon"))
	assert.Contains(t, r.KnownReps(), "Sladana")
}

func TestDefault_Division(t *testing.T) {
	r := Default()

	tests := []struct {
		rep  string
		want string
		name string
	}{
		{"Matt", "nh-sales", "Nationwide Haul - Sales"},
		{"dustin", "nh-service", "Nationwide Haul - Service & Repair"},
		{"Katrina", "rr-sales", "Road Ready Insurance - Sales"},
		{"luis", "rr-service", "Road Ready Insurance - Service"},
		{"Pablo", "nh-sales", "Nationwide Haul - Sales"},
		{"", "nh-sales", "Nationwide Haul - Sales"},
		{"Unknown", "nh-sales", "Nationwide Haul - Sales"},
	}
	for _, tt := range tests {
		t.Run(tt.rep, func(t *testing.T) {
			d := r.Division(tt.rep)
			assert.Equal(t, tt.want, d.ID)
			assert.Equal(t, tt.name, d.Name)
		})
	}
	assert.Len(t, r.Divisions(), 4)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "roster: [\n"},
		{"no divisions", "roster:\n  default_division: x\n"},
		{"missing default", "roster:\n  default_division: x\n  divisions:\n    - id: a\n      name: A\n"},
		{"missing name", "roster:\n  default_division: a\n  divisions:\n    - id: a\n"},
		{"duplicate rep", "roster:\n  default_division: a\n  divisions:\n    - id: a\n      name: A\n      reps: [sam]\n    - id: b\n      name: B\n      reps: [Sam]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	doc := `
roster:
  default_division: west
  divisions:
    - id: west
      name: West Coast
      reps: [Alma]
  stopwords: [howdy]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.True(t, r.IsKnown("alma"))
	assert.False(t, r.IsKnown("brian"))
	assert.True(t, r.IsStopword("Howdy"))
	assert.Equal(t, "west", r.Division("anyone").ID)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.True(t, r.IsKnown("jake"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
