package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ftm/errors"
	ftmtest "github.com/teranos/ftm/internal/testing"
	"github.com/teranos/ftm/model"
	"github.com/teranos/ftm/statement"
)

func TestAggregate(t *testing.T) {
	entities, err := Aggregate([]*statement.Statement{
		ftmtest.Statement(t, "b", "Company", "name", "Acme"),
		ftmtest.Statement(t, "a", "Person", "name", "Harry"),
		ftmtest.Statement(t, "b", "Company", "country", "gb"),
		ftmtest.Statement(t, "a", "Person", "birthDate", "1980"),
	})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "b", entities[0].ID(), "groups keep first-appearance order")
	assert.Equal(t, "a", entities[1].ID())
	assert.Len(t, entities[0].AllStatements(), 2)
	assert.Len(t, entities[1].AllStatements(), 2)

	empty, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAggregateMismatch(t *testing.T) {
	_, err := Aggregate([]*statement.Statement{
		ftmtest.Statement(t, "a", "Person", "name", "Harry"),
		ftmtest.Statement(t, "a", "Address", "full", "1 Main St"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
}

func TestToStatements(t *testing.T) {
	person := ftmtest.Schema(t, "Person")
	e := NewValueEntity("harry", person)
	e.AddValue(person.Property("name"), "Harry")
	e.AddValue(person.Property("country"), "gb")

	stmts, err := ToStatements(e, "test", ftmtest.FirstSeen, ftmtest.FirstSeen, false)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.True(t, stmts[0].IsID())
	assert.Equal(t, "harry", stmts[0].Value())
	assert.Equal(t, "name", stmts[1].PropertyName())
	assert.Equal(t, statement.MakeID("test", "harry", "name", "Harry", false), stmts[1].ID())

	// aggregating the exploded statements gives the same values back
	back, err := FromStatements(stmts)
	require.NoError(t, err)
	assert.Equal(t, e.Values(person.Property("name")), back.Values(person.Property("name")))
	assert.Equal(t, []string{"harry"}, []string{back.IDStatements()[0].Value()})

	same, err := ToStatements(back, "ignored", 0, 0, true)
	require.NoError(t, err)
	assert.Equal(t, back.AllStatements(), same)

	_, err = ToStatements(NewValueEntity("", person), "test", 0, 0, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestTypeValues(t *testing.T) {
	m := ftmtest.DefaultModel(t)
	person := m.Schema("Person")
	e := NewValueEntity("harry", person)
	e.AddValue(person.Property("country"), "gb")
	e.AddValue(person.Property("nationality"), "gb")
	e.AddValue(person.Property("nationality"), "de")
	e.AddValue(person.Property("name"), "Harry")

	countries := TypeValues(e, m.Type(model.TypeCountry), false)
	assert.Equal(t, []string{"gb", "de"}, countries)
	assert.Empty(t, TypeValues(e, m.Type(model.TypeEntity), false))
	assert.Empty(t, TypeValues(e, m.Type("string"), true))
}

func TestEntityValues(t *testing.T) {
	ownership := ftmtest.Schema(t, "Ownership")
	e := NewValueEntity("own", ownership)
	e.AddValue(ownership.Property("owner"), "harry")
	e.AddValue(ownership.Property("asset"), "acme")
	e.AddValue(ownership.Property("percentage"), "50")
	assert.Equal(t, []string{"harry", "acme"}, EntityValues(e))
}
