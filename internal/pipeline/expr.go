package pipeline

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Expr renders a computed field against the pipeline it belongs to.
type Expr func(p *Pipeline) (string, []any, error)

// Eq is a parameterized equality filter. The value reaches the driver
// untouched; squirrel.Eq would run driver.Valuer values such as uuid.UUID
// through Value() first.
func Eq(column string, value any) sq.Sqlizer {
	return sq.Expr(column+" = ?", value)
}

// Size counts the joined documents.
func Size(join string) Expr {
	return func(p *Pipeline) (string, []any, error) {
		j, err := lookup(p, join)
		if err != nil {
			return "", nil, err
		}
		return j.base().Column("COUNT(*)").ToSql()
	}
}

// Contains reports whether any joined document has column equal to value.
func Contains(join, column string, value any) Expr {
	return func(p *Pipeline) (string, []any, error) {
		j, err := lookup(p, join)
		if err != nil {
			return "", nil, err
		}
		sql, args, err := j.base().
			Column("1").
			Where(Eq(j.From.qualify(column), value)).
			ToSql()
		if err != nil {
			return "", nil, err
		}
		return "EXISTS (" + sql + ")", args, nil
	}
}

// Sum adds up an integer column over the joined documents; 0 when empty.
func Sum(join, column string) Expr {
	return func(p *Pipeline) (string, []any, error) {
		j, err := lookup(p, join)
		if err != nil {
			return "", nil, err
		}
		return j.base().
			Column(fmt.Sprintf("COALESCE(SUM(%s), 0)::bigint", j.From.qualify(column))).
			ToSql()
	}
}

// First returns the first joined document as JSON, or NULL when the joined
// set is empty.
func First(join string) Expr {
	return func(p *Pipeline) (string, []any, error) {
		j, err := lookup(p, join)
		if err != nil {
			return "", nil, err
		}
		doc, args, err := j.From.document()
		if err != nil {
			return "", nil, err
		}
		order, err := j.From.orderBy(false)
		if err != nil {
			return "", nil, err
		}

		sb := j.base().Column(sq.Expr(doc, args...))
		if len(order) > 0 {
			sb = sb.OrderBy(order...)
		}
		return sb.Limit(1).ToSql()
	}
}

// Nest returns the joined documents as a JSON array, [] when empty.
func Nest(join string) Expr {
	return func(p *Pipeline) (string, []any, error) {
		j, err := lookup(p, join)
		if err != nil {
			return "", nil, err
		}
		doc, args, err := j.From.document()
		if err != nil {
			return "", nil, err
		}
		order, err := j.From.orderBy(true)
		if err != nil {
			return "", nil, err
		}

		agg := doc
		if len(order) > 0 {
			agg += " ORDER BY " + strings.Join(order, ", ")
		}
		return j.base().
			Column(sq.Expr("COALESCE(json_agg("+agg+"), '[]'::json)", args...)).
			ToSql()
	}
}

// False is the constant false.
func False() Expr {
	return Raw("FALSE")
}

// Raw is a literal SQL expression.
func Raw(sql string, args ...any) Expr {
	return func(*Pipeline) (string, []any, error) {
		return sql, args, nil
	}
}

func lookup(p *Pipeline, name string) (Join, error) {
	j, ok := p.join(name)
	if !ok {
		return Join{}, fmt.Errorf("%w: unknown join %q", ErrInvalidPipeline, name)
	}
	return j, nil
}
