package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// pgExtractor implements Extractor using information_schema + pg_catalog queries.
type pgExtractor struct{}

// An unqualified table name resolves against current_schema().
const pgSchema = `COALESCE(NULLIF($1, ''), current_schema())`

func (pgExtractor) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema = current_schema()
        ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (pgExtractor) Columns(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.Column, error) {
	schema, name := splitQualified(table)

	// arrays report udt names such as _int4
	cr, err := dbConn.QueryContext(ctx, `
        SELECT column_name,
               CASE WHEN data_type IN ('ARRAY', 'USER-DEFINED') THEN udt_name ELSE data_type END,
               is_nullable = 'YES',
               character_maximum_length,
               column_default
        FROM information_schema.columns
        WHERE table_schema = `+pgSchema+` AND table_name = $2
        ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer cr.Close()

	var cols []introspect.Column
	for cr.Next() {
		var (
			colName, dataType string
			nullable          bool
			maxLen            sql.NullInt64
			dflt              sql.NullString
		)
		if err := cr.Scan(&colName, &dataType, &nullable, &maxLen, &dflt); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		cols = append(cols, newColumn(colName, dataType, nullable, maxLen, dflt))
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}

	pkr, err := dbConn.QueryContext(ctx, `
        SELECT a.attname
        FROM pg_index i
        JOIN pg_class c ON i.indrelid = c.oid
        JOIN pg_namespace ns ON c.relnamespace = ns.oid
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
        WHERE ns.nspname = `+pgSchema+` AND c.relname = $2 AND i.indisprimary`, schema, name)
	if err != nil {
		logger.Error("query primary key: %v", err)
		return cols, nil
	}
	pks, err := scanNames(pkr)
	if err != nil {
		logger.Error("scan primary key: %v", err)
	}
	markPrimaryKeys(cols, pks)
	return cols, nil
}

func (pgExtractor) Indexed(ctx context.Context, dbConn *sql.DB, table string) ([]string, error) {
	schema, name := splitQualified(table)
	rows, err := dbConn.QueryContext(ctx, `
        SELECT DISTINCT a.attname
        FROM pg_index i
        JOIN pg_class c ON i.indrelid = c.oid
        JOIN pg_namespace ns ON c.relnamespace = ns.oid
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
        WHERE ns.nspname = `+pgSchema+` AND c.relname = $2 AND NOT i.indisprimary
        ORDER BY a.attname`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s: %w", table, err)
	}
	return scanNames(rows)
}

func (pgExtractor) ForeignKeys(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.ForeignKey, error) {
	schema, name := splitQualified(table)

	// ordered by the position of the first local column so joins follow schema order
	fkr, err := dbConn.QueryContext(ctx, `
        SELECT con.conname,
               (SELECT string_agg(a.attname, ',' ORDER BY k.n)
                  FROM unnest(con.conkey) WITH ORDINALITY k(attnum, n)
                  JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum) AS from_columns,
               ft.relname AS to_table,
               (SELECT string_agg(a.attname, ',' ORDER BY k.n)
                  FROM unnest(con.confkey) WITH ORDINALITY k(attnum, n)
                  JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum) AS to_columns
        FROM pg_constraint con
        JOIN pg_class t ON t.oid = con.conrelid
        JOIN pg_namespace ns ON ns.oid = t.relnamespace
        JOIN pg_class ft ON ft.oid = con.confrelid
        WHERE con.contype = 'f' AND ns.nspname = `+pgSchema+` AND t.relname = $2
        ORDER BY con.conkey[1], con.conname`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys for %s: %w", table, err)
	}
	defer fkr.Close()

	var fks []introspect.ForeignKey
	for fkr.Next() {
		var constraint, from, toTable, to string
		if err := fkr.Scan(&constraint, &from, &toTable, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key for %s: %w", table, err)
		}
		fks = append(fks, introspect.ForeignKey{
			Columns:    db.SplitColumnList(from),
			Keys:       db.SplitColumnList(to),
			Table:      toTable,
			Constraint: constraint,
		})
	}
	return fks, fkr.Err()
}

func init() {
	db.Register("postgres", pgExtractor{})
	db.Register("postgresql", pgExtractor{})
	db.Register("pgx", pgExtractor{})
}
