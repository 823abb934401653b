package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
)

// mysqlExtractor implements Extractor for MySQL / MariaDB.
type mysqlExtractor struct{}

// An unqualified table name resolves against the connection's database.
const mysqlSchema = `COALESCE(NULLIF(?, ''), DATABASE())`

func (mysqlExtractor) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()
        ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (mysqlExtractor) Columns(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.Column, error) {
	schema, name := splitQualified(table)

	// column_type keeps tinyint(1) and unsigned visible to NormalizeType
	cr, err := dbConn.QueryContext(ctx, `
        SELECT column_name, column_type, is_nullable = 'YES', character_maximum_length, column_default, column_key = 'PRI'
        FROM information_schema.columns
        WHERE table_schema = `+mysqlSchema+` AND table_name = ?
        ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer cr.Close()

	var cols []introspect.Column
	for cr.Next() {
		var (
			colName, colType string
			nullable, pk     bool
			maxLen           sql.NullInt64
			dflt             sql.NullString
		)
		if err := cr.Scan(&colName, &colType, &nullable, &maxLen, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		col := newColumn(colName, colType, nullable, maxLen, dflt)
		col.PrimaryKey = pk
		cols = append(cols, col)
	}
	return cols, cr.Err()
}

func (mysqlExtractor) Indexed(ctx context.Context, dbConn *sql.DB, table string) ([]string, error) {
	schema, name := splitQualified(table)
	rows, err := dbConn.QueryContext(ctx, `
        SELECT DISTINCT column_name
        FROM information_schema.statistics
        WHERE table_schema = `+mysqlSchema+` AND table_name = ? AND index_name <> 'PRIMARY'
        ORDER BY column_name`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s: %w", table, err)
	}
	return scanNames(rows)
}

func (mysqlExtractor) ForeignKeys(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.ForeignKey, error) {
	schema, name := splitQualified(table)
	fkr, err := dbConn.QueryContext(ctx, `
        SELECT k.constraint_name,
               GROUP_CONCAT(k.column_name ORDER BY k.ordinal_position) AS from_columns,
               k.referenced_table_name,
               GROUP_CONCAT(k.referenced_column_name ORDER BY k.ordinal_position) AS to_columns
        FROM information_schema.key_column_usage k
        JOIN information_schema.columns c
          ON c.table_schema = k.table_schema AND c.table_name = k.table_name AND c.column_name = k.column_name
        WHERE k.table_schema = `+mysqlSchema+` AND k.table_name = ?
          AND k.referenced_table_name IS NOT NULL
        GROUP BY k.constraint_name, k.referenced_table_name
        ORDER BY MIN(c.ordinal_position), k.constraint_name`, schema, name)
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
	db.Register("mysql", mysqlExtractor{})
	db.Register("mariadb", mysqlExtractor{})
}
