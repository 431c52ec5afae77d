// Package ingest adapts a parser's concrete JSON serialization of a T-SQL
// AST into the ast package's node types (spec.md §9: "a small adapter
// layer that normalizes parser variants at the ingestion edge"). The
// lineage engine itself never parses source text (§1); this package is
// the one concrete decoding ABI this repo ships so the CLI has something
// to read, not a mandated wire format (§6.1 "concrete parser ABI is not
// mandated").
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/sql-lineage/tsqllineage/ast"
)

// envelope is a flattened, kind-discriminated representation wide enough
// to cover every node shape named in spec.md §6.1 plus the SPEC_FULL.md
// §C additions (derived tables, PIVOT/UNPIVOT, table-valued functions,
// UPDATE/MERGE/DELETE). Unused fields for a given Kind are simply absent
// in the source document.
type envelope struct {
	Kind     string    `json:"kind"`
	Location *location `json:"location,omitempty"`

	Name      json.RawMessage `json:"name,omitempty"` // string (Declare/SetVariable/VariableRef/WindowFunc/FunctionCall) or MultipartName (ColumnRef) or SchemaObjectName (tables/procs)
	Alias     string          `json:"alias,omitempty"`
	Qualifier string          `json:"qualifier,omitempty"`
	Op        string          `json:"op,omitempty"`
	Text      string          `json:"text,omitempty"`
	Type      string          `json:"type,omitempty"`
	Negate    bool            `json:"negate,omitempty"`
	Desc      bool            `json:"desc,omitempty"`
	Natural   bool            `json:"natural,omitempty"`
	Lateral   bool            `json:"lateral,omitempty"`
	Matched   bool            `json:"matched,omitempty"`
	IsDelete  bool            `json:"is_delete,omitempty"`
	Output    bool            `json:"output,omitempty"`

	Expr      json.RawMessage `json:"expr,omitempty"`
	Left      json.RawMessage `json:"left,omitempty"`
	Right     json.RawMessage `json:"right,omitempty"`
	Pattern   json.RawMessage `json:"pattern,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Else      json.RawMessage `json:"else,omitempty"`
	Style     json.RawMessage `json:"style,omitempty"`
	Condition json.RawMessage `json:"condition,omitempty"`
	Initial   json.RawMessage `json:"initial,omitempty"`
	Subquery  json.RawMessage `json:"subquery,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	Query     json.RawMessage `json:"query,omitempty"`
	Target    json.RawMessage `json:"target,omitempty"`
	Proc      json.RawMessage `json:"proc,omitempty"`
	On        json.RawMessage `json:"on,omitempty"`
	Where     json.RawMessage `json:"where,omitempty"`
	Having    json.RawMessage `json:"having,omitempty"`
	From      json.RawMessage `json:"from,omitempty"`
	Over      *windowSpecEnv  `json:"over,omitempty"`
	Default   json.RawMessage `json:"default,omitempty"`
	ValueCol  json.RawMessage `json:"value_column,omitempty"`
	PivotCol  json.RawMessage `json:"pivot_column,omitempty"`
	NameCol   string          `json:"name_column,omitempty"`

	Args        []json.RawMessage `json:"args,omitempty"`
	List        []json.RawMessage `json:"list,omitempty"`
	Whens       []whenThenEnv     `json:"whens,omitempty"`
	SelectItems []json.RawMessage `json:"select_items,omitempty"`
	GroupBy     []json.RawMessage `json:"group_by,omitempty"`
	OrderBy     []orderByEnv      `json:"order_by,omitempty"`
	Using       []string          `json:"using,omitempty"`
	InValues    []string          `json:"in_values,omitempty"`
	InColumns   []string          `json:"in_columns,omitempty"`
	AggFunc     string            `json:"agg_func,omitempty"`

	With       *withClauseEnv    `json:"with,omitempty"`
	Clause     *withClauseEnv    `json:"clause,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Into       *intoEnv          `json:"into,omitempty"`
	Set        []assignEnv       `json:"set,omitempty"`
	Whens2     []mergeWhenEnv    `json:"merge_whens,omitempty"`
	Parameters []parameterEnv    `json:"parameters,omitempty"`
	ExecArgs   []execArgEnv      `json:"exec_args,omitempty"`
	ExecSource *envelope         `json:"exec_source,omitempty"`

	Statements []json.RawMessage `json:"statements,omitempty"`
	Batches    []json.RawMessage `json:"batches,omitempty"`
	Body       []json.RawMessage `json:"body,omitempty"`
	Then       []json.RawMessage `json:"then,omitempty"`
	ElseBody   []json.RawMessage `json:"else_body,omitempty"`
	Try        []json.RawMessage `json:"try,omitempty"`
	Catch      []json.RawMessage `json:"catch,omitempty"`
}

type location struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

func (l *location) toAST() ast.Location {
	if l == nil {
		return ast.Location{}
	}
	return ast.Location{Line: l.Line, Column: l.Column, Offset: l.Offset, Text: l.Text}
}

type schemaObjectEnv struct {
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Name     string `json:"name"`
}

func (o schemaObjectEnv) toAST() ast.SchemaObjectName {
	return ast.SchemaObjectName{Database: o.Database, Schema: o.Schema, Name: o.Name}
}

type multipartEnv struct {
	Parts []string `json:"parts"`
}

type whenThenEnv struct {
	When json.RawMessage `json:"when"`
	Then json.RawMessage `json:"then"`
}

type orderByEnv struct {
	Expr json.RawMessage `json:"expr"`
	Desc bool            `json:"desc,omitempty"`
}

type windowSpecEnv struct {
	PartitionBy []json.RawMessage `json:"partition_by,omitempty"`
	OrderBy     []orderByEnv      `json:"order_by,omitempty"`
	FrameStart  json.RawMessage   `json:"frame_start,omitempty"`
	FrameEnd    json.RawMessage   `json:"frame_end,omitempty"`
}

type withClauseEnv struct {
	Ctes []cteEnv `json:"ctes"`
}

type cteEnv struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns,omitempty"`
	Query   json.RawMessage `json:"query"`
}

type intoEnv struct {
	Object schemaObjectEnv `json:"object"`
}

type assignEnv struct {
	Column multipartEnv    `json:"column"`
	Expr   json.RawMessage `json:"expr"`
}

type mergeWhenEnv struct {
	Matched    bool            `json:"matched"`
	Condition  json.RawMessage `json:"condition,omitempty"`
	UpdateSet  []assignEnv     `json:"update_set,omitempty"`
	InsertCols []string        `json:"insert_cols,omitempty"`
	InsertVals []json.RawMessage `json:"insert_vals,omitempty"`
	IsDelete   bool            `json:"is_delete,omitempty"`
}

type parameterEnv struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Output  bool            `json:"output,omitempty"`
	Default json.RawMessage `json:"default,omitempty"`
}

type execArgEnv struct {
	Name string          `json:"name,omitempty"`
	Expr json.RawMessage `json:"expr"`
}

// Decode parses a single serialized Script document. It matches the
// batch.Decoder signature so a Source can ingest a directory of these
// documents directly (spec.md §5 batched entry points).
func Decode(data []byte) (*ast.Script, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if env.Kind != string(ast.KindScript) {
		return nil, fmt.Errorf("ingest: expected kind %q at document root, got %q", ast.KindScript, env.Kind)
	}
	return decodeScript(&env)
}

func decodeScript(env *envelope) (*ast.Script, error) {
	s := &ast.Script{Base: ast.NewBase(env.Location.toAST())}
	for _, raw := range env.Batches {
		var bEnv envelope
		if err := json.Unmarshal(raw, &bEnv); err != nil {
			return nil, err
		}
		b, err := decodeBatch(&bEnv)
		if err != nil {
			return nil, err
		}
		s.Batches = append(s.Batches, b)
	}
	return s, nil
}

func decodeBatch(env *envelope) (*ast.Batch, error) {
	b := &ast.Batch{Base: ast.NewBase(env.Location.toAST())}
	for _, raw := range env.Statements {
		stmt, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, stmt)
	}
	return b, nil
}

func decodeRawEnvelope(raw json.RawMessage) (*envelope, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func decodeStatement(raw json.RawMessage) (ast.Statement, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindSelect:
		return decodeSelect(env)
	case ast.KindInsert:
		return decodeInsert(env)
	case ast.KindUpdate:
		return decodeUpdate(env)
	case ast.KindDelete:
		return decodeDelete(env)
	case ast.KindMerge:
		return decodeMerge(env)
	case ast.KindCreateProc:
		return decodeCreateProc(env)
	case ast.KindExec:
		return decodeExec(env)
	case ast.KindDeclare:
		return decodeDeclare(env)
	case ast.KindSetVariable:
		return decodeSetVariable(env)
	case ast.KindIf:
		return decodeIf(env)
	case ast.KindWhile:
		return decodeWhile(env)
	case ast.KindTryCatch:
		return decodeTryCatch(env)
	case ast.KindBeginEnd:
		return decodeBeginEnd(env)
	case ast.KindWith:
		return decodeWith(env)
	case ast.KindSelectInto:
		return decodeSelectInto(env)
	default:
		return nil, fmt.Errorf("ingest: unknown statement kind %q", env.Kind)
	}
}

func decodeStatements(raws []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raws))
	for _, raw := range raws {
		s, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeSchemaObject(raw json.RawMessage) (ast.SchemaObjectName, error) {
	var o schemaObjectEnv
	if len(raw) == 0 {
		return ast.SchemaObjectName{}, nil
	}
	if err := json.Unmarshal(raw, &o); err != nil {
		return ast.SchemaObjectName{}, err
	}
	return o.toAST(), nil
}

func decodeMultipart(raw json.RawMessage) (ast.MultipartName, error) {
	var m multipartEnv
	if len(raw) == 0 {
		return ast.MultipartName{}, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return ast.MultipartName{}, err
	}
	return ast.MultipartName{Parts: m.Parts}, nil
}

func decodeSelect(env *envelope) (*ast.Select, error) {
	sel := &ast.Select{Base: ast.NewBase(env.Location.toAST())}
	if env.With != nil {
		wc, err := decodeWithClause(env.With)
		if err != nil {
			return nil, err
		}
		sel.With = wc
	}
	q, err := decodeQueryExpression(env.Query)
	if err != nil {
		return nil, err
	}
	sel.Query = q
	return sel, nil
}

func decodeWithClause(env *withClauseEnv) (*ast.WithClause, error) {
	wc := &ast.WithClause{}
	for _, c := range env.Ctes {
		var sel *ast.Select
		if len(c.Query) > 0 {
			qEnv, err := decodeRawEnvelope(c.Query)
			if err != nil {
				return nil, err
			}
			sel, err = decodeSelect(qEnv)
			if err != nil {
				return nil, err
			}
		}
		wc.CTEs = append(wc.CTEs, ast.CTE{Name: c.Name, Columns: c.Columns, Query: sel})
	}
	return wc, nil
}

func decodeInsert(env *envelope) (*ast.Insert, error) {
	target, err := decodeSchemaObject(env.Target)
	if err != nil {
		return nil, err
	}
	ins := &ast.Insert{Base: ast.NewBase(env.Location.toAST()), Target: target, Columns: env.Columns}
	if len(env.Source) > 0 {
		srcEnv, err := decodeRawEnvelope(env.Source)
		if err != nil {
			return nil, err
		}
		sel, err := decodeSelect(srcEnv)
		if err != nil {
			return nil, err
		}
		ins.Source = sel
	}
	if env.ExecSource != nil {
		exec, err := decodeExec(env.ExecSource)
		if err != nil {
			return nil, err
		}
		ins.ExecSource = exec
	}
	return ins, nil
}

func decodeAssignItems(envs []assignEnv) ([]ast.AssignItem, error) {
	out := make([]ast.AssignItem, 0, len(envs))
	for _, a := range envs {
		expr, err := decodeExpression(a.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.AssignItem{Column: ast.MultipartName{Parts: a.Column.Parts}, Expr: expr})
	}
	return out, nil
}

func decodeUpdate(env *envelope) (*ast.Update, error) {
	target, err := decodeSchemaObject(env.Target)
	if err != nil {
		return nil, err
	}
	set, err := decodeAssignItems(env.Set)
	if err != nil {
		return nil, err
	}
	u := &ast.Update{Base: ast.NewBase(env.Location.toAST()), Target: target, Alias: env.Alias, Set: set}
	if u.From, err = decodeTableReference(env.From); err != nil {
		return nil, err
	}
	if u.Where, err = decodeBoolean(env.Where); err != nil {
		return nil, err
	}
	return u, nil
}

func decodeDelete(env *envelope) (*ast.Delete, error) {
	target, err := decodeSchemaObject(env.Target)
	if err != nil {
		return nil, err
	}
	d := &ast.Delete{Base: ast.NewBase(env.Location.toAST()), Target: target, Alias: env.Alias}
	if d.Where, err = decodeBoolean(env.Where); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeMerge(env *envelope) (*ast.Merge, error) {
	target, err := decodeSchemaObject(env.Target)
	if err != nil {
		return nil, err
	}
	m := &ast.Merge{Base: ast.NewBase(env.Location.toAST()), Target: target}
	var err2 error
	if m.Source, err2 = decodeTableReference(env.Source); err2 != nil {
		return nil, err2
	}
	if m.On, err2 = decodeBoolean(env.On); err2 != nil {
		return nil, err2
	}
	for _, w := range env.Whens2 {
		when := ast.MergeWhen{Matched: w.Matched, InsertCols: w.InsertCols, IsDelete: w.IsDelete}
		if when.Condition, err2 = decodeBoolean(w.Condition); err2 != nil {
			return nil, err2
		}
		if when.UpdateSet, err2 = decodeAssignItems(w.UpdateSet); err2 != nil {
			return nil, err2
		}
		for _, v := range w.InsertVals {
			expr, err := decodeExpression(v)
			if err != nil {
				return nil, err
			}
			when.InsertVals = append(when.InsertVals, expr)
		}
		m.Whens = append(m.Whens, when)
	}
	return m, nil
}

func decodeCreateProc(env *envelope) (*ast.CreateProc, error) {
	name, err := decodeSchemaObject(env.Name)
	if err != nil {
		return nil, err
	}
	proc := &ast.CreateProc{Base: ast.NewBase(env.Location.toAST()), Name: name}
	for _, p := range env.Parameters {
		def, err := decodeExpression(p.Default)
		if err != nil {
			return nil, err
		}
		proc.Parameters = append(proc.Parameters, ast.Parameter{Name: p.Name, Type: p.Type, Output: p.Output, Default: def})
	}
	if proc.Body, err = decodeStatements(env.Body); err != nil {
		return nil, err
	}
	return proc, nil
}

func decodeExec(env *envelope) (*ast.Exec, error) {
	proc, err := decodeSchemaObject(env.Proc)
	if err != nil {
		return nil, err
	}
	e := &ast.Exec{Base: ast.NewBase(env.Location.toAST()), Proc: proc}
	for _, a := range env.ExecArgs {
		expr, err := decodeExpression(a.Expr)
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, ast.ExecArg{Name: a.Name, Expr: expr})
	}
	return e, nil
}

func decodeDeclare(env *envelope) (*ast.Declare, error) {
	name, err := decodeNameString(env.Name)
	if err != nil {
		return nil, err
	}
	d := &ast.Declare{Base: ast.NewBase(env.Location.toAST()), Name: name, Type: env.Type}
	if d.Initial, err = decodeExpression(env.Initial); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeSetVariable(env *envelope) (*ast.SetVariable, error) {
	name, err := decodeNameString(env.Name)
	if err != nil {
		return nil, err
	}
	s := &ast.SetVariable{Base: ast.NewBase(env.Location.toAST()), Name: name}
	if s.Expr, err = decodeExpression(env.Expr); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeIf(env *envelope) (*ast.If, error) {
	cond, err := decodeBoolean(env.Condition)
	if err != nil {
		return nil, err
	}
	i := &ast.If{Base: ast.NewBase(env.Location.toAST()), Condition: cond}
	if i.Then, err = decodeStatements(env.Then); err != nil {
		return nil, err
	}
	if i.Else, err = decodeStatements(env.ElseBody); err != nil {
		return nil, err
	}
	return i, nil
}

func decodeWhile(env *envelope) (*ast.While, error) {
	cond, err := decodeBoolean(env.Condition)
	if err != nil {
		return nil, err
	}
	w := &ast.While{Base: ast.NewBase(env.Location.toAST()), Condition: cond}
	if w.Body, err = decodeStatements(env.Body); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeTryCatch(env *envelope) (*ast.TryCatch, error) {
	tc := &ast.TryCatch{Base: ast.NewBase(env.Location.toAST())}
	var err error
	if tc.Try, err = decodeStatements(env.Try); err != nil {
		return nil, err
	}
	if tc.Catch, err = decodeStatements(env.Catch); err != nil {
		return nil, err
	}
	return tc, nil
}

func decodeBeginEnd(env *envelope) (*ast.BeginEnd, error) {
	b := &ast.BeginEnd{Base: ast.NewBase(env.Location.toAST())}
	body, err := decodeStatements(env.Body)
	if err != nil {
		return nil, err
	}
	b.Body = body
	return b, nil
}

func decodeWith(env *envelope) (*ast.With, error) {
	clause := ast.WithClause{}
	if env.Clause != nil {
		wc, err := decodeWithClause(env.Clause)
		if err != nil {
			return nil, err
		}
		clause = *wc
	}
	w := &ast.With{Base: ast.NewBase(env.Location.toAST()), Clause: clause}
	if len(env.Query) > 0 { // the wrapped body is carried in the Query field to reuse the same envelope shape as Select
		body, err := decodeStatement(env.Query)
		if err != nil {
			return nil, err
		}
		w.Body = body
	}
	return w, nil
}

func decodeSelectInto(env *envelope) (*ast.SelectInto, error) {
	si := &ast.SelectInto{Base: ast.NewBase(env.Location.toAST())}
	if len(env.Query) > 0 {
		qEnv, err := decodeRawEnvelope(env.Query)
		if err != nil {
			return nil, err
		}
		sel, err := decodeSelect(qEnv)
		if err != nil {
			return nil, err
		}
		si.Query = sel
	}
	return si, nil
}

func decodeQueryExpression(raw json.RawMessage) (ast.QueryExpression, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindQuerySpecification:
		return decodeQuerySpec(env)
	case ast.KindBinaryQuery:
		left, err := decodeQueryExpression(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeQueryExpression(env.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryQuery{Base: ast.NewBase(env.Location.toAST()), Op: ast.SetOp(env.Op), Left: left, Right: right}, nil
	case ast.KindParenthesized:
		q, err := decodeQueryExpression(env.Query)
		if err != nil {
			return nil, err
		}
		return &ast.Parenthesized{Base: ast.NewBase(env.Location.toAST()), Query: q}, nil
	default:
		return nil, fmt.Errorf("ingest: unknown query expression kind %q", env.Kind)
	}
}

func decodeQuerySpec(env *envelope) (*ast.QuerySpecification, error) {
	q := &ast.QuerySpecification{Base: ast.NewBase(env.Location.toAST())}
	for _, raw := range env.SelectItems {
		item, err := decodeSelectItem(raw)
		if err != nil {
			return nil, err
		}
		q.SelectItems = append(q.SelectItems, item)
	}
	if env.Into != nil {
		obj := env.Into.Object.toAST()
		q.Into = &ast.IntoClause{Object: obj}
	}
	var err error
	if q.From, err = decodeTableReference(env.From); err != nil {
		return nil, err
	}
	if q.Where, err = decodeBoolean(env.Where); err != nil {
		return nil, err
	}
	for _, raw := range env.GroupBy {
		expr, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		q.GroupBy = append(q.GroupBy, ast.GroupByItem{Expr: expr})
	}
	if q.Having, err = decodeBoolean(env.Having); err != nil {
		return nil, err
	}
	if q.OrderBy, err = decodeOrderBy(env.OrderBy); err != nil {
		return nil, err
	}
	return q, nil
}

func decodeOrderBy(envs []orderByEnv) ([]ast.OrderByItem, error) {
	out := make([]ast.OrderByItem, 0, len(envs))
	for _, o := range envs {
		expr, err := decodeExpression(o.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.OrderByItem{Expr: expr, Desc: o.Desc})
	}
	return out, nil
}

func decodeSelectItem(raw json.RawMessage) (ast.SelectItem, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindSelectItemStar:
		return &ast.StarItem{Base: ast.NewBase(env.Location.toAST()), Qualifier: env.Qualifier}, nil
	case ast.KindSelectItemScalar:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ScalarItem{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Alias: env.Alias}, nil
	default:
		return nil, fmt.Errorf("ingest: unknown select item kind %q", env.Kind)
	}
}

func decodeTableReference(raw json.RawMessage) (ast.TableReference, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindNamedTable:
		obj, err := decodeSchemaObject(env.Name)
		if err != nil {
			return nil, err
		}
		return &ast.NamedTable{Base: ast.NewBase(env.Location.toAST()), Object: obj, Alias: env.Alias}, nil

	case ast.KindJoinedTable:
		left, err := decodeTableReference(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeTableReference(env.Right)
		if err != nil {
			return nil, err
		}
		on, err := decodeBoolean(env.On)
		if err != nil {
			return nil, err
		}
		return &ast.JoinedTable{
			Base: ast.NewBase(env.Location.toAST()), Left: left, Right: right,
			JoinKind: ast.JoinKind(env.Op), On: on, Using: env.Using, Natural: env.Natural,
		}, nil

	case ast.KindDerivedTable:
		var sel *ast.Select
		if len(env.Query) > 0 {
			qEnv, err := decodeRawEnvelope(env.Query)
			if err != nil {
				return nil, err
			}
			sel, err = decodeSelect(qEnv)
			if err != nil {
				return nil, err
			}
		}
		return &ast.DerivedTable{Base: ast.NewBase(env.Location.toAST()), Query: sel, Alias: env.Alias, Lateral: env.Lateral}, nil

	case ast.KindPivotTable:
		src, err := decodeTableReference(env.Source)
		if err != nil {
			return nil, err
		}
		valueCol, err := decodeMultipart(env.ValueCol)
		if err != nil {
			return nil, err
		}
		pivotCol, err := decodeMultipart(env.PivotCol)
		if err != nil {
			return nil, err
		}
		return &ast.PivotTable{
			Base: ast.NewBase(env.Location.toAST()), Source: src, AggFunc: env.AggFunc,
			ValueColumn: valueCol, PivotColumn: pivotCol, InValues: env.InValues, Alias: env.Alias,
		}, nil

	case ast.KindUnpivotTable:
		src, err := decodeTableReference(env.Source)
		if err != nil {
			return nil, err
		}
		return &ast.UnpivotTable{
			Base: ast.NewBase(env.Location.toAST()), Source: src,
			ValueColumn: env.Text, NameColumn: env.NameCol, InColumns: env.InColumns, Alias: env.Alias,
		}, nil

	case ast.KindTableValuedFunction:
		name, err := decodeSchemaObject(env.Name)
		if err != nil {
			return nil, err
		}
		var args []ast.Expression
		for _, raw := range env.Args {
			a, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &ast.TableValuedFunction{Base: ast.NewBase(env.Location.toAST()), Name: name, Args: args, Alias: env.Alias}, nil

	default:
		return nil, fmt.Errorf("ingest: unknown table reference kind %q", env.Kind)
	}
}

func decodeNameString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeExpression(raw json.RawMessage) (ast.Expression, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindColumnRef:
		name, err := decodeMultipart(env.Name)
		if err != nil {
			return nil, err
		}
		return &ast.ColumnRef{Base: ast.NewBase(env.Location.toAST()), Name: name}, nil

	case ast.KindVariableRef:
		name, err := decodeNameString(env.Name)
		if err != nil {
			return nil, err
		}
		return &ast.VariableRef{Base: ast.NewBase(env.Location.toAST()), Name: name}, nil

	case ast.KindLiteral:
		return &ast.Literal{Base: ast.NewBase(env.Location.toAST()), Text: env.Text}, nil

	case ast.KindFunctionCall:
		name, err := decodeNameString(env.Name)
		if err != nil {
			return nil, err
		}
		var args []ast.Expression
		for _, raw := range env.Args {
			a, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &ast.FunctionCall{Base: ast.NewBase(env.Location.toAST()), Name: name, Args: args}, nil

	case ast.KindBinary:
		left, err := decodeExpression(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(env.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Base: ast.NewBase(env.Location.toAST()), Op: env.Op, Left: left, Right: right}, nil

	case ast.KindUnary:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(env.Location.toAST()), Op: env.Op, Expr: expr}, nil

	case ast.KindParen:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Base: ast.NewBase(env.Location.toAST()), Expr: expr}, nil

	case ast.KindSearchedCase:
		c := &ast.SearchedCase{Base: ast.NewBase(env.Location.toAST())}
		for _, w := range env.Whens {
			when, err := decodeBoolean(w.When)
			if err != nil {
				return nil, err
			}
			then, err := decodeExpression(w.Then)
			if err != nil {
				return nil, err
			}
			c.Whens = append(c.Whens, ast.WhenThen{When: when, Then: then})
		}
		var err error
		if c.Else, err = decodeExpression(env.Else); err != nil {
			return nil, err
		}
		return c, nil

	case ast.KindSimpleCase:
		c := &ast.SimpleCase{Base: ast.NewBase(env.Location.toAST())}
		var err error
		if c.Input, err = decodeExpression(env.Input); err != nil {
			return nil, err
		}
		for _, w := range env.Whens {
			whenExpr, err := decodeExpression(w.When)
			if err != nil {
				return nil, err
			}
			then, err := decodeExpression(w.Then)
			if err != nil {
				return nil, err
			}
			c.Whens = append(c.Whens, ast.WhenThen{When: whenExpr, Then: then})
		}
		if c.Else, err = decodeExpression(env.Else); err != nil {
			return nil, err
		}
		return c, nil

	case ast.KindWindowFunc:
		name, err := decodeNameString(env.Name)
		if err != nil {
			return nil, err
		}
		w := &ast.WindowFunc{Base: ast.NewBase(env.Location.toAST()), Name: name}
		for _, raw := range env.Args {
			a, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			w.Args = append(w.Args, a)
		}
		if env.Over != nil {
			for _, raw := range env.Over.PartitionBy {
				p, err := decodeExpression(raw)
				if err != nil {
					return nil, err
				}
				w.Over.PartitionBy = append(w.Over.PartitionBy, p)
			}
			if w.Over.OrderBy, err = decodeOrderBy(env.Over.OrderBy); err != nil {
				return nil, err
			}
			if w.Over.FrameStart, err = decodeExpression(env.Over.FrameStart); err != nil {
				return nil, err
			}
			if w.Over.FrameEnd, err = decodeExpression(env.Over.FrameEnd); err != nil {
				return nil, err
			}
		}
		return w, nil

	case ast.KindCast:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Cast{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Type: env.Type}, nil

	case ast.KindConvert:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		style, err := decodeExpression(env.Style)
		if err != nil {
			return nil, err
		}
		return &ast.Convert{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Type: env.Type, Style: style}, nil

	default:
		return nil, fmt.Errorf("ingest: unknown expression kind %q", env.Kind)
	}
}

func decodeBoolean(raw json.RawMessage) (ast.BooleanExpression, error) {
	env, err := decodeRawEnvelope(raw)
	if err != nil || env == nil {
		return nil, err
	}
	switch ast.Kind(env.Kind) {
	case ast.KindComparison:
		left, err := decodeExpression(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(env.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Base: ast.NewBase(env.Location.toAST()), Op: env.Op, Left: left, Right: right}, nil

	case ast.KindBoolBinary:
		left, err := decodeBoolean(env.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeBoolean(env.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BoolBinary{Base: ast.NewBase(env.Location.toAST()), Op: env.Op, Left: left, Right: right}, nil

	case ast.KindBoolNot:
		expr, err := decodeBoolean(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.BoolNot{Base: ast.NewBase(env.Location.toAST()), Expr: expr}, nil

	case ast.KindParen:
		expr, err := decodeBoolean(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ParenBool{Base: ast.NewBase(env.Location.toAST()), Expr: expr}, nil

	case ast.KindIsNull:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.IsNull{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Negate: env.Negate}, nil

	case ast.KindIn:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		in := &ast.In{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Negate: env.Negate}
		for _, raw := range env.List {
			v, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			in.List = append(in.List, v)
		}
		if len(env.Subquery) > 0 {
			sqEnv, err := decodeRawEnvelope(env.Subquery)
			if err != nil {
				return nil, err
			}
			in.Subquery, err = decodeSelect(sqEnv)
			if err != nil {
				return nil, err
			}
		}
		return in, nil

	case ast.KindLike:
		expr, err := decodeExpression(env.Expr)
		if err != nil {
			return nil, err
		}
		pattern, err := decodeExpression(env.Pattern)
		if err != nil {
			return nil, err
		}
		return &ast.Like{Base: ast.NewBase(env.Location.toAST()), Expr: expr, Pattern: pattern, Negate: env.Negate}, nil

	case ast.KindExists:
		e := &ast.Exists{Base: ast.NewBase(env.Location.toAST()), Negate: env.Negate}
		if len(env.Subquery) > 0 {
			sqEnv, err := decodeRawEnvelope(env.Subquery)
			if err != nil {
				return nil, err
			}
			sel, err := decodeSelect(sqEnv)
			if err != nil {
				return nil, err
			}
			e.Subquery = sel
		}
		return e, nil

	default:
		return nil, fmt.Errorf("ingest: unknown boolean expression kind %q", env.Kind)
	}
}
