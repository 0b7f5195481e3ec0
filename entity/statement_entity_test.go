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

func TestFromStatementsScenario(t *testing.T) {
	person := ftmtest.Schema(t, "Person")
	stmts := []*statement.Statement{
		ftmtest.Statement(t, "entity1", "Person", "name", "Harry Smith"),
		ftmtest.Statement(t, "entity1", "Person", "name", "Harry M. Smith"),
		ftmtest.Statement(t, "entity1", "Person", "country", "gb"),
	}

	e, err := FromStatements(stmts)
	require.NoError(t, err)
	assert.Equal(t, "entity1", e.ID())
	assert.Same(t, person, e.Schema())

	name := person.Property("name")
	country := person.Property("country")
	birthDate := person.Property("birthDate")
	assert.Equal(t, []string{"Harry Smith", "Harry M. Smith"}, e.Values(name))
	assert.Equal(t, []string{"gb"}, e.Values(country))
	assert.False(t, e.Has(birthDate))
	assert.Empty(t, e.Values(birthDate))

	require.NoError(t, e.AddStatement(ftmtest.Statement(t, "entity1", "Person", "birthDate", "1980-01-01")))
	assert.True(t, e.Has(birthDate))
	assert.True(t, e.HasStatements())
	assert.Len(t, e.AllStatements(), 4)
	assert.Equal(t, "Harry Smith", e.Caption())
}

func TestFromStatementsEmpty(t *testing.T) {
	_, err := FromStatements(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestFromStatementsWidensSchema(t *testing.T) {
	e, err := FromStatements([]*statement.Statement{
		ftmtest.Statement(t, "e", "LegalEntity", "name", "Acme"),
		ftmtest.Statement(t, "e", "Asset", "amount", "100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Company", e.Schema().Name())
	assert.True(t, e.Has(e.Schema().Property("amount")))
}

func TestFromStatementsMismatch(t *testing.T) {
	_, err := FromStatements([]*statement.Statement{
		ftmtest.Statement(t, "e", "Person", "name", "Harry"),
		ftmtest.Statement(t, "e", "Asset", "amount", "100"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
}

func TestFromStatementsDropsUnknownProperty(t *testing.T) {
	logs := ftmtest.ObserveLogs(t)

	e, err := FromStatements([]*statement.Statement{
		ftmtest.Statement(t, "e", "Person", "name", "Harry"),
		ftmtest.Statement(t, "e", "Person", "banana", "yellow"),
	})
	require.NoError(t, err)
	assert.Len(t, e.DefinedProperties(), 1)

	dropped := logs.FilterMessage("Property not found in schema, dropping statement")
	require.Equal(t, 1, dropped.Len())
	fields := dropped.All()[0].ContextMap()
	assert.Equal(t, "banana", fields["property"])
	assert.Equal(t, "Person", fields["schema"])
}

func TestFromStatementsWithIDRewritesCanonicalID(t *testing.T) {
	e, err := FromStatementsWithID("canon", []*statement.Statement{
		ftmtest.Statement(t, "a", "Person", "name", "Harry"),
		ftmtest.Statement(t, "b", "Person", "name", "H. Smith"),
		ftmtest.Statement(t, "a", "Person", model.IDProperty, "old-checksum"),
	})
	require.NoError(t, err)
	for _, stmt := range e.AllStatements() {
		assert.Equal(t, "canon", stmt.CanonicalID())
	}
	assert.Len(t, e.IDStatements(), 1)
	assert.Equal(t, "old-checksum", e.Checksum())
	assert.Equal(t, []string{"a", "b"}, e.Referents())
}

func TestAddStatementErrors(t *testing.T) {
	e := NewStatementEntity("e", ftmtest.Schema(t, "Person"))

	err := e.AddStatement(ftmtest.Statement(t, "other", "Person", "name", "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	err = e.AddStatement(ftmtest.Statement(t, "e", "Person", "banana", "x"))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Contains(t, err.Error(), "banana")

	err = e.AddStatement(ftmtest.Statement(t, "e", "Asset", "amount", "1"))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Equal(t, "Person", e.Schema().Name(), "failed statements do not widen the schema")

	require.NoError(t, e.AddStatement(ftmtest.Statement(t, "e", "Person", model.IDProperty, "sum")))
	assert.Len(t, e.IDStatements(), 1)
	assert.False(t, e.HasStatements())
}

func TestComputeChecksumIsOrderIndependent(t *testing.T) {
	stmts := []*statement.Statement{
		ftmtest.Statement(t, "e", "Person", "name", "Harry Smith"),
		ftmtest.Statement(t, "e", "Person", "country", "gb"),
		ftmtest.Statement(t, "e", "Person", "birthDate", "1980"),
		ftmtest.Statement(t, "e", "Person", "alias", "H"),
	}
	forward := NewStatementEntity("e", ftmtest.Schema(t, "Person"))
	backward := NewStatementEntity("e", ftmtest.Schema(t, "Person"))
	for i := range stmts {
		require.NoError(t, forward.AddStatement(stmts[i]))
		require.NoError(t, backward.AddStatement(stmts[len(stmts)-1-i]))
	}

	a, err := forward.ComputeChecksum(false)
	require.NoError(t, err)
	b, err := backward.ComputeChecksum(false)
	require.NoError(t, err)

	assert.Equal(t, a.Value(), b.Value())
	assert.Equal(t, a.ID(), b.ID())
	assert.Len(t, a.Value(), 40)
	assert.True(t, a.IsID())
	assert.Equal(t, "test", a.Dataset())
	assert.Equal(t, a.Value(), forward.Checksum())

	ext, err := forward.ComputeChecksum(true)
	require.NoError(t, err)
	assert.Equal(t, a.Value(), ext.Value())
	assert.NotEqual(t, a.ID(), ext.ID())
	assert.True(t, ext.External())
}

func TestComputeChecksumReplacesIDStatements(t *testing.T) {
	e, err := FromStatements([]*statement.Statement{
		ftmtest.Statement(t, "e", "Person", model.IDProperty, "one"),
		ftmtest.Statement(t, "e", "Person", model.IDProperty, "two"),
		ftmtest.Statement(t, "e", "Person", "name", "Harry"),
	})
	require.NoError(t, err)
	require.Len(t, e.IDStatements(), 2)

	checksum, err := e.ComputeChecksum(false)
	require.NoError(t, err)
	ids := e.IDStatements()
	require.Len(t, ids, 1)
	assert.Same(t, checksum, ids[0])
	assert.GreaterOrEqual(t, e.LastChange(), ftmtest.FirstSeen)

	require.NoError(t, e.AddStatement(ftmtest.Statement(t, "e", "Person", "country", "gb")))
	again, err := e.ComputeChecksum(false)
	require.NoError(t, err)
	assert.NotEqual(t, checksum.Value(), again.Value())
}

func TestComputeChecksumWithoutStatements(t *testing.T) {
	e := NewStatementEntity("e", ftmtest.Schema(t, "Person"))
	_, err := e.ComputeChecksum(false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestComputeChecksumEmptyDataset(t *testing.T) {
	person := ftmtest.Schema(t, "Person")
	e, err := FromStatements([]*statement.Statement{
		ftmtest.StatementWith(t, statement.Fields{
			EntityID: "e1", Schema: person, Property: "name", Value: "Harry",
		}),
	})
	require.NoError(t, err)
	assert.Empty(t, e.Datasets())

	checksum, err := e.ComputeChecksum(false)
	require.NoError(t, err)
	assert.Equal(t, "", checksum.Dataset())
	assert.Equal(t, statement.MakeID("", "e1", model.IDProperty, checksum.Value(), false), checksum.ID())
	assert.Same(t, checksum, e.IDStatements()[0])
}

func TestComputeChecksumPicksSmallestDataset(t *testing.T) {
	person := ftmtest.Schema(t, "Person")
	e, err := FromStatements([]*statement.Statement{
		ftmtest.StatementWith(t, statement.Fields{
			EntityID: "e1", Schema: person, Property: "name", Value: "Harry", Dataset: "zz",
		}),
		ftmtest.StatementWith(t, statement.Fields{
			EntityID: "e1", Schema: person, Property: "country", Value: "gb", Dataset: "aa",
		}),
	})
	require.NoError(t, err)

	checksum, err := e.ComputeChecksum(false)
	require.NoError(t, err)
	assert.Equal(t, "aa", checksum.Dataset())
}

func TestStatementEntityAccessors(t *testing.T) {
	person := ftmtest.Schema(t, "Person")
	e := NewStatementEntity("e", person)
	assert.Equal(t, "Person", e.Caption(), "caption falls back to the schema label")
	assert.Equal(t, int64(0), e.FirstSeen())
	assert.Equal(t, int64(0), e.LastSeen())
	assert.Nil(t, e.Datasets())

	early := ftmtest.StatementWith(t, statement.Fields{
		EntityID: "e", Schema: person, Property: "name", Value: "Harry",
		Dataset: "b", FirstSeen: 100, LastSeen: 500,
	})
	late := ftmtest.StatementWith(t, statement.Fields{
		EntityID: "e", Schema: person, Property: "name", Value: "Harry",
		Dataset: "a", FirstSeen: 200, LastSeen: 300,
	})
	require.NoError(t, e.AddStatement(early))
	require.NoError(t, e.AddStatement(late))

	name := person.Property("name")
	assert.Equal(t, []string{"Harry"}, e.Values(name), "values are distinct")
	assert.Len(t, e.Statements(name), 2)
	assert.Equal(t, []string{"a", "b"}, e.Datasets())
	assert.Empty(t, e.Referents())
	assert.Equal(t, int64(100), e.FirstSeen())
	assert.Equal(t, int64(500), e.LastSeen())

	popped := e.PopStatements(name)
	assert.Len(t, popped, 2)
	assert.False(t, e.Has(name))
	assert.Empty(t, e.DefinedProperties())
	assert.Nil(t, e.PopStatements(name))
}

func TestToValueEntity(t *testing.T) {
	e, err := FromStatements([]*statement.Statement{
		ftmtest.Statement(t, "e", "Person", "name", "Harry Smith"),
		ftmtest.Statement(t, "e", "Person", "name", "Harry Smith"),
		ftmtest.Statement(t, "e", "Person", "country", "gb"),
	})
	require.NoError(t, err)
	_, err = e.ComputeChecksum(false)
	require.NoError(t, err)

	ve := e.ToValueEntity()
	person := ftmtest.Schema(t, "Person")
	assert.Equal(t, "e", ve.ID())
	assert.Same(t, person, ve.Schema())
	assert.Equal(t, []string{"Harry Smith"}, ve.Values(person.Property("name")))
	assert.Equal(t, "Harry Smith", ve.Caption())
	assert.Equal(t, []string{"test"}, ve.Datasets())
	assert.Equal(t, ftmtest.FirstSeen, ve.FirstSeen())
	assert.Equal(t, e.LastSeen(), ve.LastSeen())
	assert.Equal(t, e.LastChange(), ve.LastChange())
}
