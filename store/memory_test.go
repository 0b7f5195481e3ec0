package store

import (
	"iter"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	ftmtest "github.com/teranos/ftm/internal/testing"
	"github.com/teranos/ftm/logger"
)

func newView(t *testing.T) *MemoryView[*entity.ValueEntity] {
	t.Helper()
	v, err := NewMemoryView[*entity.ValueEntity]()
	require.NoError(t, err)
	return v
}

func person(t *testing.T, id, name string) *entity.ValueEntity {
	t.Helper()
	schema := ftmtest.Schema(t, "Person")
	e := entity.NewValueEntity(id, schema)
	e.AddValue(schema.Property("name"), name)
	return e
}

func company(t *testing.T, id, name string) *entity.ValueEntity {
	t.Helper()
	schema := ftmtest.Schema(t, "Company")
	e := entity.NewValueEntity(id, schema)
	e.AddValue(schema.Property("name"), name)
	return e
}

func ownership(t *testing.T, id, owner, asset string) *entity.ValueEntity {
	t.Helper()
	schema := ftmtest.Schema(t, "Ownership")
	e := entity.NewValueEntity(id, schema)
	e.AddValue(schema.Property("owner"), owner)
	e.AddValue(schema.Property("asset"), asset)
	return e
}

func inverted(t *testing.T, v *MemoryView[*entity.ValueEntity], id string) []Adjacency[*entity.ValueEntity] {
	t.Helper()
	return slices.Collect(collectSeq(t, v, id))
}

func TestMemoryViewCRUD(t *testing.T) {
	v := newView(t)
	harry := person(t, "harry", "Harry")
	require.NoError(t, v.Put(harry))

	ok, err := v.HasEntity("harry")
	require.NoError(t, err)
	assert.True(t, ok)

	got, ok, err := v.GetEntity("harry")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, harry, got)

	_, ok, err = v.GetEntity("nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	replacement := person(t, "harry", "Harry Smith")
	require.NoError(t, v.Put(replacement))
	assert.Equal(t, 1, v.Len())
	got, _, _ = v.GetEntity("harry")
	assert.Same(t, replacement, got)

	assert.True(t, v.Delete("harry"))
	assert.False(t, v.Delete("harry"))
	assert.Equal(t, 0, v.Len())

	err = v.Put(person(t, "", "Anonymous"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestMemoryViewAllEntitiesIsSnapshot(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Put(person(t, "a", "A")))
	require.NoError(t, v.Put(person(t, "b", "B")))

	seq, err := v.AllEntities()
	require.NoError(t, err)
	require.NoError(t, v.Put(person(t, "c", "C")))

	var ids []string
	for e := range seq {
		ids = append(ids, e.ID())
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestMemoryViewInverted(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Put(person(t, "harry", "Harry")))
	require.NoError(t, v.Put(company(t, "acme", "Acme")))
	require.NoError(t, v.Put(ownership(t, "own2", "harry", "acme")))
	require.NoError(t, v.Put(ownership(t, "own1", "harry", "acme")))

	inbound := inverted(t, v, "harry")
	require.Len(t, inbound, 2)
	assert.Equal(t, "own1", inbound[0].Entity.ID(), "ordered by referencing id")
	assert.Equal(t, "own2", inbound[1].Entity.ID())
	assert.Equal(t, "Ownership:owner", inbound[0].Property.QName())

	toAcme := inverted(t, v, "acme")
	require.Len(t, toAcme, 2)
	assert.Equal(t, "Ownership:asset", toAcme[0].Property.QName())

	assert.Empty(t, inverted(t, v, "nobody"))
}

func TestMemoryViewDeleteRemovesEmptySets(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))
	assert.Equal(t, 2, v.InvertedKeys())

	require.True(t, v.Delete("own"))
	assert.Equal(t, 0, v.InvertedKeys())
	assert.Empty(t, inverted(t, v, "harry"))
}

func TestMemoryViewPutReindexes(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))
	require.NoError(t, v.Put(ownership(t, "own", "sally", "acme")))

	assert.Empty(t, inverted(t, v, "harry"), "the replaced entity no longer points at harry")
	assert.Len(t, inverted(t, v, "sally"), 1)
	assert.Equal(t, 2, v.InvertedKeys())
}

func TestMemoryViewInvertedDropsDangling(t *testing.T) {
	logs := ftmtest.ObserveLogs(t)
	v := newView(t)
	require.NoError(t, v.Put(person(t, "harry", "Harry")))
	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))

	// corrupt the index: a missing entity and one that does not reference harry
	v.inverted["harry"].ReplaceOrInsert("ghost")
	v.inverted["harry"].ReplaceOrInsert("harry")

	inbound := inverted(t, v, "harry")
	require.Len(t, inbound, 1)
	assert.Equal(t, "own", inbound[0].Entity.ID())
	assert.Equal(t, float64(2), testutil.ToFloat64(v.metrics.dangling))
	assert.Equal(t, 2, logs.FilterMessage("Dropping dangling inverted index entry").Len())
}

func TestMemoryViewClearAndClose(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))
	v.Clear()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.InvertedKeys())

	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))
	require.NoError(t, v.Close())
	assert.Equal(t, 0, v.Len())
}

func TestMemoryViewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	v, err := NewMemoryView[*entity.ValueEntity](WithRegisterer(reg))
	require.NoError(t, err)

	require.NoError(t, v.Put(ownership(t, "own", "harry", "acme")))
	require.NoError(t, v.Put(person(t, "harry", "Harry")))
	v.Delete("harry")

	assert.Equal(t, float64(2), testutil.ToFloat64(v.metrics.puts))
	assert.Equal(t, float64(1), testutil.ToFloat64(v.metrics.deletes))
	assert.Equal(t, float64(1), testutil.ToFloat64(v.metrics.entities))
	assert.Equal(t, float64(2), testutil.ToFloat64(v.metrics.inverted))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)

	// a second view on the same registry collides
	_, err = NewMemoryView[*entity.ValueEntity](WithRegisterer(reg))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrView))
}

// TestMemoryViewIndexInvariant applies a random sequence of puts and deletes
// and checks the inverted index against the stored entities after each step.
func TestMemoryViewIndexInvariant(t *testing.T) {
	v := newView(t)
	rng := rand.New(rand.NewSource(42))
	people := []string{"p0", "p1", "p2", "p3"}
	assets := []string{"a0", "a1", "a2"}

	for step := 0; step < 300; step++ {
		id := "own" + string(rune('0'+rng.Intn(6)))
		if rng.Intn(3) == 0 {
			v.Delete(id)
		} else {
			owner := people[rng.Intn(len(people))]
			asset := assets[rng.Intn(len(assets))]
			require.NoError(t, v.Put(ownership(t, id, owner, asset)))
		}
		checkIndex(t, v)
	}

	for _, id := range []string{"own0", "own1", "own2", "own3", "own4", "own5"} {
		v.Delete(id)
	}
	assert.Equal(t, 0, v.InvertedKeys(), "no empty sets survive")
}

func checkIndex(t *testing.T, v *MemoryView[*entity.ValueEntity]) {
	t.Helper()
	all, err := v.AllEntities()
	require.NoError(t, err)

	expected := make(map[string][]string)
	for e := range all {
		for _, ref := range entity.EntityValues(e) {
			expected[ref] = append(expected[ref], e.ID())
		}
	}
	for ref, ids := range expected {
		var got []string
		for adj := range collectSeq(t, v, ref) {
			got = append(got, adj.Entity.ID())
		}
		slices.Sort(ids)
		assert.Equal(t, ids, got, ref)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	assert.Len(t, v.inverted, len(expected))
	for ref, set := range v.inverted {
		assert.Positive(t, set.Len(), ref)
		set.Ascend(func(id string) bool {
			assert.True(t, strings.HasPrefix(id, "own"))
			return true
		})
	}
}

func collectSeq(t *testing.T, v *MemoryView[*entity.ValueEntity], id string) iter.Seq[Adjacency[*entity.ValueEntity]] {
	t.Helper()
	seq, err := v.Inverted(id)
	require.NoError(t, err)
	return seq
}

func TestLoadValueEntities(t *testing.T) {
	m := ftmtest.DefaultModel(t)
	input := strings.Join([]string{
		`{"id": "harry", "schema": "Person", "caption": "Harry", "properties": {"name": ["Harry"]}}`,
		`{"id": "acme", "schema": "Company", "caption": "Acme"}`,
		`{"id": "own", "schema": "Ownership", "caption": "own", "properties": {"owner": ["harry"], "asset": ["acme"]}}`,
	}, "\n")

	v, err := LoadValueEntities(m, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Len(t, inverted(t, v, "harry"), 1)

	_, err = LoadValueEntities(m, strings.NewReader(`{"id": "x", "schema": "Banana", "caption": "x"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidSchema))
}

func TestLoadValueEntitiesSkipsEntitiesWithoutID(t *testing.T) {
	logs := ftmtest.ObserveLogs(t)
	m := ftmtest.DefaultModel(t)
	input := strings.Join([]string{
		`{"id": "harry", "schema": "Person", "caption": "Harry", "properties": {"name": ["Harry"]}}`,
		`{"schema": "Ownership", "caption": "anonymous", "properties": {"owner": ["harry"]}}`,
		`{"id": "acme", "schema": "Company", "caption": "Acme"}`,
	}, "\n")

	v, err := LoadValueEntities(m, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	assert.Empty(t, inverted(t, v, "harry"))

	skipped := logs.FilterMessage("Skipping entity without id").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Ownership", skipped[0].ContextMap()[logger.FieldSchema])
	assert.Equal(t, "load", skipped[0].ContextMap()[logger.FieldOperation])
	assert.EqualValues(t, 2, skipped[0].ContextMap()["index"])
}
