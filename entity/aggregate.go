package entity

import (
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/model"
	"github.com/teranos/ftm/statement"
)

// Aggregate groups statements by canonical id, in order of first appearance,
// and builds one StatementEntity per group.
func Aggregate(stmts []*statement.Statement) ([]*StatementEntity, error) {
	groups := make(map[string][]*statement.Statement)
	var order []string
	for _, stmt := range stmts {
		id := stmt.CanonicalID()
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], stmt)
	}
	out := make([]*StatementEntity, 0, len(order))
	for _, id := range order {
		e, err := FromStatementsWithID(id, groups[id])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ToStatements explodes an entity into statements: one id-statement whose
// value is the entity id, then one statement per property value. A
// StatementEntity already holds its statements and returns them as they are.
func ToStatements(e Entity, dataset string, firstSeen, lastSeen int64, external bool) ([]*statement.Statement, error) {
	if se, ok := e.(*StatementEntity); ok {
		return se.AllStatements(), nil
	}
	if e.ID() == "" {
		return nil, errors.NewInvalidArgument("cannot create statements for entity without id")
	}
	base := statement.Fields{
		EntityID:  e.ID(),
		Schema:    e.Schema(),
		Dataset:   dataset,
		External:  external,
		FirstSeen: firstSeen,
		LastSeen:  lastSeen,
	}
	idFields := base
	idFields.Property = model.IDProperty
	idFields.Value = e.ID()
	first, err := statement.New(idFields)
	if err != nil {
		return nil, err
	}
	out := []*statement.Statement{first}
	for _, p := range e.DefinedProperties() {
		for _, value := range e.Values(p) {
			f := base
			f.Property = p.Name()
			f.Value = value
			stmt, err := statement.New(f)
			if err != nil {
				return nil, err
			}
			out = append(out, stmt)
		}
	}
	return out, nil
}
