package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ftm/errors"
)

func TestIsA(t *testing.T) {
	m := loadDefault(t)
	person := m.Schema("Person")
	legal := m.Schema("LegalEntity")
	thing := m.Schema("Thing")
	company := m.Schema("Company")
	asset := m.Schema("Asset")

	assert.True(t, person.IsA(person))
	assert.True(t, person.IsA(legal))
	assert.True(t, person.IsA(thing))
	assert.False(t, legal.IsA(person))
	assert.True(t, company.IsA(asset))
	assert.False(t, person.IsA(asset))
	assert.False(t, person.IsA(nil))

	ancestors := person.Ancestors()
	require.NotEmpty(t, ancestors)
	assert.Same(t, person, ancestors[0], "closure starts with the schema itself")
}

func TestCommonWith(t *testing.T) {
	m := loadDefault(t)

	tests := []struct {
		a, b     string
		expected string
	}{
		{"LegalEntity", "Person", "Person"},
		{"Person", "LegalEntity", "Person"},
		{"LegalEntity", "Company", "Company"},
		{"LegalEntity", "Asset", "Company"},
		{"Asset", "LegalEntity", "Company"},
		{"Thing", "Thing", "Thing"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			common, err := m.Schema(tt.a).CommonWith(m.Schema(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, common.Name())
		})
	}
}

func TestCommonWithMismatch(t *testing.T) {
	m := loadDefault(t)
	person := m.Schema("Person")

	_, err := person.CommonWith(m.Schema("Asset"))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Contains(t, err.Error(), "No common schema found: Person and Asset")

	// cached result keeps the caller's operand order in the message
	_, err = m.Schema("Address").CommonWith(person)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No common schema found: Address and Person")
	_, err = person.CommonWith(m.Schema("Address"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No common schema found: Person and Address")
}

func TestSchemaInvariants(t *testing.T) {
	m := loadDefault(t)
	all := m.Schemata()
	for _, a := range all {
		assert.True(t, a.IsA(a), a.Name())
		self, err := a.CommonWith(a)
		require.NoError(t, err)
		assert.Same(t, a, self)

		for _, b := range all {
			if a.IsA(b) && b.IsA(a) {
				assert.Same(t, a, b)
			}
			ab, errAB := a.CommonWith(b)
			ba, errBA := b.CommonWith(a)
			assert.Equal(t, errAB == nil, errBA == nil, "%s/%s", a.Name(), b.Name())
			if errAB == nil {
				assert.Same(t, ab, ba, "%s/%s", a.Name(), b.Name())
				assert.True(t, ab.IsA(a))
				assert.True(t, ab.IsA(b))
			}
		}
	}
}

func TestDescendants(t *testing.T) {
	m := loadDefault(t)
	var names []string
	for _, s := range m.Schema("Organization").Descendants() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"Organization", "Company", "PublicBody"}, names)
}

func TestFeaturedSkipsUnknownNames(t *testing.T) {
	m, err := FromConfig(
		[]TypeConfig{{Name: "string"}},
		[]SchemaConfig{{
			Name:     "Note",
			Featured: []string{"title", "missing"},
			Caption:  []string{"missing"},
			Properties: []PropertyConfig{
				{Name: "title", Type: "string"},
			},
		}},
	)
	require.NoError(t, err)
	note := m.Schema("Note")
	featured := note.FeaturedProperties()
	require.Len(t, featured, 1)
	assert.Equal(t, "title", featured[0].Name())
	assert.Empty(t, note.CaptionProperties())
	assert.Equal(t, "Note", note.Label(), "label defaults to the name")
	assert.Equal(t, "Note", note.Plural(), "plural defaults to the label")
}
