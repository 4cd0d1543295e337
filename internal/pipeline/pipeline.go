// Package pipeline composes viewer-scoped read queries.
//
// A Pipeline describes a read in stages: filter the base collection, look up
// related collections, add computed fields over those lookups, project, sort
// and window. It compiles to a single PostgreSQL statement in which every
// lookup is a correlated subquery, so a missing related record produces an
// empty set (zero count, false flag, empty list, NULL document) rather than
// dropping the base row.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/hszk-dev/vidvault/internal/pagination"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection maps "asc"/"desc" (any case) to a Direction, falling back
// to def for anything else.
func ParseDirection(s string, def Direction) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc
	case "desc":
		return Desc
	default:
		return def
	}
}

// Sort is a single-key ordering. Ties are broken by the primary key.
type Sort struct {
	Key string
	Dir Direction
}

// Field is a computed output column.
type Field struct {
	Name string
	Expr Expr
}

type via struct {
	table string
	alias string
	on    string
}

// Join describes a left-outer lookup of a related collection. From is the
// related collection; it may carry its own filters, inner joins, projection,
// lookups and computed fields, which apply to the joined documents.
// LocalKey and ForeignKey are qualified column names.
type Join struct {
	As         string
	From       *Pipeline
	LocalKey   string
	ForeignKey string
}

// Pipeline is a composable read. The zero value is not usable; start with From.
type Pipeline struct {
	collection string
	alias      string
	vias       []via
	filters    []sq.Sqlizer
	joins      []Join
	project    []string
	fields     []Field
	sort       *Sort
	window     *pagination.Params
	err        error
}

// ErrInvalidPipeline is returned when a pipeline cannot be compiled.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// From starts a pipeline over collection, referred to by alias in SQL.
func From(collection, alias string) *Pipeline {
	return &Pipeline{collection: collection, alias: alias}
}

// Collection returns the base collection name.
func (p *Pipeline) Collection() string {
	return p.collection
}

// Via inner-joins table on the given condition. Unlike Lookup it restricts
// the base set, and it is part of the count query.
func (p *Pipeline) Via(table, alias, on string) *Pipeline {
	p.vias = append(p.vias, via{table: table, alias: alias, on: on})
	return p
}

// Match adds a filter. Multiple filters are AND-combined.
func (p *Pipeline) Match(cond sq.Sqlizer) *Pipeline {
	p.filters = append(p.filters, cond)
	return p
}

// Search adds a case-insensitive substring match of term against any of
// columns. A blank term matches everything.
func (p *Pipeline) Search(term string, columns ...string) *Pipeline {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return p
	}

	pattern := "%" + escapeLike(term) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.ILike{p.qualify(c): pattern})
	}
	return p.Match(or)
}

// Lookup registers a join that computed fields can refer to by j.As.
func (p *Pipeline) Lookup(j Join) *Pipeline {
	if j.From == nil {
		p.fail(fmt.Errorf("join %q has no source", j.As))
		return p
	}
	if _, ok := p.join(j.As); ok {
		p.fail(fmt.Errorf("duplicate join %q", j.As))
		return p
	}
	p.joins = append(p.joins, j)
	return p
}

// AddField adds a computed field. Names are snake_case; nested documents
// expose them in camelCase.
func (p *Pipeline) AddField(name string, expr Expr) *Pipeline {
	p.fields = append(p.fields, Field{Name: name, Expr: expr})
	return p
}

// Project sets the base columns to return, in order. Unqualified columns
// belong to the base collection.
func (p *Pipeline) Project(columns ...string) *Pipeline {
	p.project = append(p.project, columns...)
	return p
}

// SortBy orders by a computed field name or a column.
func (p *Pipeline) SortBy(key string, dir Direction) *Pipeline {
	p.sort = &Sort{Key: key, Dir: dir}
	return p
}

// Paginate restricts the output to one page.
func (p *Pipeline) Paginate(params pagination.Params) *Pipeline {
	p.window = &params
	return p
}

// Compile returns the windowed, enriched query.
func (p *Pipeline) Compile() (string, []any, error) {
	sb, err := p.builder()
	if err != nil {
		return "", nil, err
	}
	return sb.PlaceholderFormat(sq.Dollar).ToSql()
}

// CompileCount returns a query counting the filtered set, ignoring lookups,
// computed fields, sort and window.
func (p *Pipeline) CompileCount() (string, []any, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	sb := p.filtered(sq.Select("COUNT(*)").From(p.source()))
	return sb.PlaceholderFormat(sq.Dollar).ToSql()
}

func (p *Pipeline) builder() (sq.SelectBuilder, error) {
	if p.err != nil {
		return sq.SelectBuilder{}, p.err
	}
	if len(p.project) == 0 {
		return sq.SelectBuilder{}, fmt.Errorf("%w: %s has no projection", ErrInvalidPipeline, p.collection)
	}

	columns := make([]string, len(p.project))
	for i, c := range p.project {
		columns[i] = p.qualify(c)
	}

	sb := sq.Select(columns...).From(p.source())
	for _, f := range p.fields {
		sql, args, err := f.Expr(p)
		if err != nil {
			return sq.SelectBuilder{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		sb = sb.Column(sq.Alias(sq.Expr(sql, args...), f.Name))
	}
	sb = p.filtered(sb)

	order, err := p.orderBy(false)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if len(order) > 0 {
		sb = sb.OrderBy(order...)
	}

	if p.window != nil {
		sb = sb.Limit(uint64(p.window.Limit)).Offset(uint64(p.window.Skip()))
	}
	return sb, nil
}

// filtered applies inner joins and filters to sb.
func (p *Pipeline) filtered(sb sq.SelectBuilder) sq.SelectBuilder {
	for _, v := range p.vias {
		sb = sb.Join(fmt.Sprintf("%s AS %s ON %s", v.table, v.alias, v.on))
	}
	for _, f := range p.filters {
		sb = sb.Where(f)
	}
	return sb
}

// orderBy renders the sort. Inside an aggregate there are no output
// aliases, so nested pipelines may only sort by columns.
func (p *Pipeline) orderBy(nested bool) ([]string, error) {
	if p.sort == nil {
		return nil, nil
	}

	dir := p.sort.Dir
	if dir != Asc && dir != Desc {
		return nil, fmt.Errorf("%w: sort direction %q", ErrInvalidPipeline, dir)
	}

	key := p.qualify(p.sort.Key)
	if p.hasField(p.sort.Key) {
		if nested {
			return nil, fmt.Errorf("%w: nested sort by computed field %q", ErrInvalidPipeline, p.sort.Key)
		}
		key = p.sort.Key
	}

	return []string{
		key + " " + string(dir),
		p.qualify("id") + " " + string(Asc),
	}, nil
}

// document renders the projection and computed fields as a JSON object.
func (p *Pipeline) document() (string, []any, error) {
	if p.err != nil {
		return "", nil, p.err
	}
	if len(p.project) == 0 && len(p.fields) == 0 {
		return "", nil, fmt.Errorf("%w: %s has no projection", ErrInvalidPipeline, p.collection)
	}

	parts := make([]string, 0, len(p.project)+len(p.fields))
	var args []any
	for _, c := range p.project {
		parts = append(parts, fmt.Sprintf("'%s', %s", jsonKey(c), p.qualify(c)))
	}
	for _, f := range p.fields {
		sql, fargs, err := f.Expr(p)
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		parts = append(parts, fmt.Sprintf("'%s', (%s)", jsonKey(f.Name), sql))
		args = append(args, fargs...)
	}
	return "json_build_object(" + strings.Join(parts, ", ") + ")", args, nil
}

func (p *Pipeline) source() string {
	return p.collection + " AS " + p.alias
}

func (p *Pipeline) qualify(column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return p.alias + "." + column
}

func (p *Pipeline) join(name string) (Join, bool) {
	for _, j := range p.joins {
		if j.As == name {
			return j, true
		}
	}
	return Join{}, false
}

func (p *Pipeline) hasField(name string) bool {
	for _, f := range p.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (p *Pipeline) fail(err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %w", ErrInvalidPipeline, err)
	}
}

// base starts a correlated subquery over the joined collection.
func (j Join) base() sq.SelectBuilder {
	return j.From.filtered(
		sq.Select().
			From(j.From.source()).
			Where(j.ForeignKey + " = " + j.LocalKey),
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// jsonKey converts a possibly qualified snake_case column to a camelCase key.
func jsonKey(column string) string {
	if i := strings.LastIndex(column, "."); i >= 0 {
		column = column[i+1:]
	}
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
