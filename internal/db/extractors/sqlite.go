package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
)

// sqliteExtractor implements Extractor for SQLite.
type sqliteExtractor struct{}

func (sqliteExtractor) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
	    SELECT name
	    FROM sqlite_master
	    WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	    ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (sqliteExtractor) Columns(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.Column, error) {
	pr, err := dbConn.QueryContext(ctx, `
	    SELECT name, type, "notnull", dflt_value, pk
	    FROM pragma_table_info(?)
	    ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer pr.Close()

	var cols []introspect.Column
	for pr.Next() {
		var (
			name, ctype string
			notnull, pk int
			dflt        sql.NullString
		)
		if err := pr.Scan(&name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		col := newColumn(name, ctype, notnull == 0 && pk == 0, sql.NullInt64{}, dflt)
		col.MaxLength = declaredLength(ctype)
		col.PrimaryKey = pk != 0
		cols = append(cols, col)
	}
	return cols, pr.Err()
}

func (sqliteExtractor) Indexed(ctx context.Context, dbConn *sql.DB, table string) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
	    SELECT DISTINCT ii.name
	    FROM pragma_index_list(?) il, pragma_index_info(il.name) ii
	    WHERE il.origin <> 'pk' AND ii.name IS NOT NULL
	    ORDER BY ii.name`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s: %w", table, err)
	}
	return scanNames(rows)
}

func (e sqliteExtractor) ForeignKeys(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.ForeignKey, error) {
	fkRows, err := dbConn.QueryContext(ctx, `
	    SELECT id, "table", "from", "to"
	    FROM pragma_foreign_key_list(?)
	    ORDER BY id, seq`, table)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys for %s: %w", table, err)
	}
	defer fkRows.Close()

	var (
		fks  []introspect.ForeignKey
		byID = map[int]int{}
	)
	for fkRows.Next() {
		var (
			id       int
			to       sql.NullString
			ref, frm string
		)
		if err := fkRows.Scan(&id, &ref, &frm, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key for %s: %w", table, err)
		}
		// a reference without a column list points at the primary key
		key := "id"
		if to.Valid && to.String != "" {
			key = to.String
		}
		i, ok := byID[id]
		if !ok {
			i = len(fks)
			byID[id] = i
			fks = append(fks, introspect.ForeignKey{Table: ref})
		}
		fks[i].Columns = append(fks[i].Columns, frm)
		fks[i].Keys = append(fks[i].Keys, key)
	}
	if err := fkRows.Err(); err != nil {
		return nil, err
	}

	// sqlite numbers foreign keys in reverse declaration order; follow the
	// column order instead
	cols, err := e.Columns(ctx, dbConn, table)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[c.Name] = i
	}
	sort.SliceStable(fks, func(a, b int) bool {
		return pos[fks[a].Columns[0]] < pos[fks[b].Columns[0]]
	})
	return fks, nil
}

var lengthArg = regexp.MustCompile(`\(\s*(\d+)\s*\)\s*$`)

// declaredLength reads n from a declared type such as varchar(n).
func declaredLength(ctype string) *int {
	m := lengthArg.FindStringSubmatch(ctype)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}
