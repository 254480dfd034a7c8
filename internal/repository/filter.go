package repository

import (
	"fmt"
	"strings"
)

// Predicate is a composable filter expression over whitelisted columns
type Predicate interface {
	render(s entitySchema) (string, []interface{}, error)
}

type comparison struct {
	field string
	op    string
	value interface{}
}

func (c comparison) render(s entitySchema) (string, []interface{}, error) {
	if !s.columns[c.field] {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, c.field)
	}
	return c.field + " " + c.op + " ?", []interface{}{c.value}, nil
}

// Eq matches records whose field equals value
func Eq(field string, value interface{}) Predicate { return comparison{field, "=", value} }

// Neq matches records whose field differs from value
func Neq(field string, value interface{}) Predicate { return comparison{field, "<>", value} }

// Gt matches records whose field is greater than value
func Gt(field string, value interface{}) Predicate { return comparison{field, ">", value} }

// Gte matches records whose field is greater than or equal to value
func Gte(field string, value interface{}) Predicate { return comparison{field, ">=", value} }

// Lt matches records whose field is less than value
func Lt(field string, value interface{}) Predicate { return comparison{field, "<", value} }

// Lte matches records whose field is less than or equal to value
func Lte(field string, value interface{}) Predicate { return comparison{field, "<=", value} }

type membership struct {
	field  string
	values []string
	negate bool
}

func (m membership) render(s entitySchema) (string, []interface{}, error) {
	if !s.columns[m.field] {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, m.field)
	}
	if len(m.values) == 0 {
		if m.negate {
			return "1 = 1", nil, nil
		}
		return "1 = 0", nil, nil
	}
	op := " IN ?"
	if m.negate {
		op = " NOT IN ?"
	}
	return m.field + op, []interface{}{m.values}, nil
}

// In matches records whose field is one of values
func In[S ~string](field string, values ...S) Predicate {
	return membership{field: field, values: toStrings(values)}
}

// NotIn matches records whose field is none of values
func NotIn[S ~string](field string, values ...S) Predicate {
	return membership{field: field, values: toStrings(values), negate: true}
}

func toStrings[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

type like struct {
	field  string
	substr string
}

func (l like) render(s entitySchema) (string, []interface{}, error) {
	if !s.columns[l.field] {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, l.field)
	}
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(l.substr)
	return l.field + ` LIKE ? ESCAPE '\'`, []interface{}{"%" + escaped + "%"}, nil
}

// Contains matches records whose field contains substr
func Contains(field, substr string) Predicate { return like{field, substr} }

type presence struct {
	field string
}

func (p presence) render(s entitySchema) (string, []interface{}, error) {
	if !s.columns[p.field] {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, p.field)
	}
	return p.field + " IS NOT NULL", nil, nil
}

// IsSet matches records whose field is not null
func IsSet(field string) Predicate { return presence{field} }

type junction struct {
	op    string
	parts []Predicate
}

func (j junction) render(s entitySchema) (string, []interface{}, error) {
	var sqls []string
	var args []interface{}
	for _, p := range j.parts {
		if p == nil {
			continue
		}
		sql, partArgs, err := p.render(s)
		if err != nil {
			return "", nil, err
		}
		sqls = append(sqls, "("+sql+")")
		args = append(args, partArgs...)
	}
	if len(sqls) == 0 {
		if j.op == "OR" {
			return "1 = 0", nil, nil
		}
		return "1 = 1", nil, nil
	}
	return strings.Join(sqls, " "+j.op+" "), args, nil
}

// And matches records satisfying every predicate
func And(parts ...Predicate) Predicate { return junction{"AND", parts} }

// Or matches records satisfying at least one predicate
func Or(parts ...Predicate) Predicate { return junction{"OR", parts} }
