/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"bzwparse/internal/bzw"
	applog "bzwparse/internal/log"
)

// DocumentRow is one indexed parse.
type DocumentRow struct {
	ID          int64
	Source      string
	ParsedAt    time.Time
	OK          bool
	Diagnostics int
}

// ObjectRow is one indexed object. Nested objects carry their parent's ID
// and use the field name as Kind.
type ObjectRow struct {
	ID         int64
	DocumentID int64
	ParentID   int64 // 0 for top-level objects
	Kind       string
	Name       string
	Ordinal    int
	Line       int
}

// ParameterRow is one indexed parameter occurrence with its values.
type ParameterRow struct {
	ID     int64
	Name   string
	Line   int
	Values []bzw.Value
}

// inserter holds the prepared statements of one SaveDocument transaction.
type inserter struct {
	obj, param, value *sql.Stmt
}

// SaveDocument stores doc under source in one transaction and returns the
// new document ID. Earlier documents with the same source are replaced.
func (ix *Index) SaveDocument(ctx context.Context, source string, doc *bzw.Document) (int64, error) {
	l := applog.WithOperation(ix.log, "save_document").With(slog.String("source", source))
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ix.deleteSource(ctx, tx, source); err != nil {
		return 0, err
	}
	var docID int64
	err = tx.QueryRowContext(ctx,
		ix.d.rebind(`INSERT INTO documents(source, parsed_at, ok, diagnostics) VALUES(?,?,?,?) RETURNING id`),
		source, time.Now().UTC().Format(time.RFC3339), boolInt(doc.Err() == nil), len(doc.Diagnostics()),
	).Scan(&docID)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}

	var ins inserter
	for q, dst := range map[string]**sql.Stmt{
		`INSERT INTO objects(document_id, parent_id, kind, name, ordinal, line) VALUES(?,?,?,?,?,?) RETURNING id`: &ins.obj,
		`INSERT INTO parameters(object_id, name, ordinal, line) VALUES(?,?,?,?) RETURNING id`:                     &ins.param,
		`INSERT INTO param_values(parameter_id, ordinal, kind, num, text) VALUES(?,?,?,?,?)`:                      &ins.value,
	} {
		st, err := tx.PrepareContext(ctx, ix.d.rebind(q))
		if err != nil {
			return 0, fmt.Errorf("prepare insert: %w", err)
		}
		defer st.Close()
		*dst = st
	}

	ord := 0
	for kind, obj := range doc.Objects().All() {
		if err := ins.object(ctx, docID, sql.NullInt64{}, kind, ord, obj); err != nil {
			return 0, err
		}
		ord++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	l.Debug("document indexed", slog.Int64("id", docID), slog.Int("objects", ord))
	return docID, nil
}

func (ins inserter) object(ctx context.Context, docID int64, parent sql.NullInt64, kind string, ord int, o *bzw.ObjectInstance) error {
	var id int64
	if err := ins.obj.QueryRowContext(ctx, docID, parent, kind, o.Name(), ord, o.Line()).Scan(&id); err != nil {
		return fmt.Errorf("insert object %s: %w", kind, err)
	}
	i := 0
	for name, f := range o.Fields().All() {
		switch f.Kind() {
		case bzw.FieldParameter:
			if err := ins.parameter(ctx, id, name, i, f.Parameter()); err != nil {
				return err
			}
		case bzw.FieldObject:
			if err := ins.object(ctx, docID, sql.NullInt64{Int64: id, Valid: true}, name, i, f.Object()); err != nil {
				return err
			}
		}
		i++
	}
	return nil
}

func (ins inserter) parameter(ctx context.Context, objID int64, name string, ord int, p *bzw.ParameterInstance) error {
	var id int64
	if err := ins.param.QueryRowContext(ctx, objID, name, ord, p.Line()).Scan(&id); err != nil {
		return fmt.Errorf("insert parameter %s: %w", name, err)
	}
	for i, v := range p.Values() {
		var num sql.NullFloat64
		var text sql.NullString
		if v.Kind() == bzw.Real {
			num = sql.NullFloat64{Float64: v.Real(), Valid: true}
		} else {
			text = sql.NullString{String: v.Text(), Valid: true}
		}
		if _, err := ins.value.ExecContext(ctx, id, i, v.Kind().String(), num, text); err != nil {
			return fmt.Errorf("insert value %s[%d]: %w", name, i, err)
		}
	}
	return nil
}

// deleteSource removes every row belonging to documents indexed from
// source. Children are deleted explicitly so the result does not depend on
// foreign key enforcement.
func (ix *Index) deleteSource(ctx context.Context, tx *sql.Tx, source string) error {
	docs := `SELECT id FROM documents WHERE source = ?`
	objs := `SELECT id FROM objects WHERE document_id IN (` + docs + `)`
	params := `SELECT id FROM parameters WHERE object_id IN (` + objs + `)`
	for _, q := range []string{
		`DELETE FROM param_values WHERE parameter_id IN (` + params + `)`,
		`DELETE FROM parameters WHERE object_id IN (` + objs + `)`,
		`DELETE FROM objects WHERE document_id IN (` + docs + `)`,
		`DELETE FROM documents WHERE source = ?`,
	} {
		if _, err := tx.ExecContext(ctx, ix.d.rebind(q), source); err != nil {
			return fmt.Errorf("clear %s: %w", source, err)
		}
	}
	return nil
}

// Documents lists indexed documents, newest first.
func (ix *Index) Documents(ctx context.Context) ([]DocumentRow, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT id, source, parsed_at, ok, diagnostics FROM documents ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		var ts string
		var ok int
		if err := rows.Scan(&r.ID, &r.Source, &ts, &ok, &r.Diagnostics); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		r.ParsedAt, _ = time.Parse(time.RFC3339, ts)
		r.OK = ok != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByKind counts the top-level objects of a document per kind.
func (ix *Index) CountByKind(ctx context.Context, docID int64) (map[string]int, error) {
	rows, err := ix.db.QueryContext(ctx,
		ix.d.rebind(`SELECT kind, COUNT(*) FROM objects WHERE document_id = ? AND parent_id IS NULL GROUP BY kind`), docID)
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// FindObjects returns objects of the given kind across all documents. An
// empty name matches any name.
func (ix *Index) FindObjects(ctx context.Context, kind, name string) ([]ObjectRow, error) {
	q := `SELECT id, document_id, parent_id, kind, name, ordinal, line FROM objects WHERE kind = ?`
	args := []any{kind}
	if name != "" {
		q += ` AND name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY document_id, id`
	rows, err := ix.db.QueryContext(ctx, ix.d.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("find objects: %w", err)
	}
	defer rows.Close()
	var out []ObjectRow
	for rows.Next() {
		var r ObjectRow
		var parent sql.NullInt64
		if err := rows.Scan(&r.ID, &r.DocumentID, &parent, &r.Kind, &r.Name, &r.Ordinal, &r.Line); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		r.ParentID = parent.Int64
		out = append(out, r)
	}
	return out, rows.Err()
}

// Parameters loads the parameter occurrences of one object in input order.
func (ix *Index) Parameters(ctx context.Context, objectID int64) ([]ParameterRow, error) {
	rows, err := ix.db.QueryContext(ctx, ix.d.rebind(`
		SELECT p.id, p.name, p.line, v.kind, v.num, v.text
		FROM parameters p LEFT JOIN param_values v ON v.parameter_id = p.id
		WHERE p.object_id = ?
		ORDER BY p.ordinal, v.ordinal`), objectID)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	defer rows.Close()
	var out []ParameterRow
	for rows.Next() {
		var (
			id         int64
			name       string
			line       int
			kind, text sql.NullString
			num        sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &line, &kind, &num, &text); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, ParameterRow{ID: id, Name: name, Line: line})
		}
		if !kind.Valid {
			continue // Nothing parameter
		}
		v, err := decodeValue(kind.String, num, text)
		if err != nil {
			return nil, err
		}
		cur := &out[len(out)-1]
		cur.Values = append(cur.Values, v)
	}
	return out, rows.Err()
}

func decodeValue(kind string, num sql.NullFloat64, text sql.NullString) (bzw.Value, error) {
	t, err := bzw.ParseValueType(kind)
	if err != nil {
		return bzw.Value{}, fmt.Errorf("stored value: %w", err)
	}
	switch t {
	case bzw.Real:
		return bzw.RealValue(num.Float64), nil
	case bzw.String:
		return bzw.StringValue(text.String), nil
	case bzw.EndlessString:
		return bzw.EndlessValue(text.String), nil
	}
	return bzw.Value{}, fmt.Errorf("stored value: unexpected kind %q", kind)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
