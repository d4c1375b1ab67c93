package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

func TestFactMatches(t *testing.T) {
	f := Fact{Value: "₹4999 per month", Accepted: []string{"4999", "Rs 4999"}}

	assert.True(t, f.Matches("₹4999 per month"))
	assert.True(t, f.Matches("  ₹4999   PER MONTH "))
	assert.True(t, f.Matches("rs 4999"))
	assert.False(t, f.Matches("₹3999 per month"))
}

func TestLoadFileAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	payload := `{
		"demo": {
			"base_price": {"value": "4999", "accepted": ["₹4999"]},
			"warranty_months": {"value": "12"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store, err := LoadFile(path)
	require.NoError(t, err)

	fact, ok := store.Lookup("demo", "base_price")
	require.True(t, ok)
	assert.True(t, fact.Matches("₹4999"))

	_, ok = store.Lookup("demo", "missing_key")
	assert.False(t, ok)

	_, ok = store.Lookup("other_project", "base_price")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"base_price", "warranty_months"}, store.Keys("demo"))
}

func TestLoadFileRejectsEmptyValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"demo": {"k": {"value": "  "}}}`), 0o644))

	_, err := LoadFile(path)
	var se *domain.SchemaError
	require.ErrorAs(t, err, &se)
}
