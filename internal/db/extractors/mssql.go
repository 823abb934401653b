package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

// An unqualified table name resolves against the default schema of the login.
const mssqlSchema = `COALESCE(NULLIF(@schema, ''), SCHEMA_NAME())`

func (mssqlExtractor) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
        SELECT t.name
        FROM sys.tables AS t
        WHERE t.schema_id = SCHEMA_ID()
        ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (mssqlExtractor) Columns(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.Column, error) {
	schema, name := splitQualified(table)
	cr, err := dbConn.QueryContext(ctx, `
        SELECT COLUMN_NAME, DATA_TYPE, CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END,
               CHARACTER_MAXIMUM_LENGTH, COLUMN_DEFAULT
        FROM INFORMATION_SCHEMA.COLUMNS
        WHERE TABLE_SCHEMA = `+mssqlSchema+` AND TABLE_NAME = @table
        ORDER BY ORDINAL_POSITION`, sql.Named("schema", schema), sql.Named("table", name))
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer cr.Close()

	var cols []introspect.Column
	for cr.Next() {
		var (
			colName, dataType string
			nullableInt       int
			maxLen            sql.NullInt64
			dflt              sql.NullString
		)
		if err := cr.Scan(&colName, &dataType, &nullableInt, &maxLen, &dflt); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		cols = append(cols, newColumn(colName, dataType, nullableInt == 1, maxLen, dflt))
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}

	pkr, err := dbConn.QueryContext(ctx, `
        SELECT k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY' AND k.TABLE_SCHEMA = `+mssqlSchema+` AND k.TABLE_NAME = @table`,
		sql.Named("schema", schema), sql.Named("table", name))
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

func (mssqlExtractor) Indexed(ctx context.Context, dbConn *sql.DB, table string) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
        SELECT DISTINCT c.name
        FROM sys.indexes i
        JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
        JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
        WHERE i.object_id = OBJECT_ID(@table) AND i.is_primary_key = 0
        ORDER BY c.name`, sql.Named("table", table))
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s: %w", table, err)
	}
	return scanNames(rows)
}

func (mssqlExtractor) ForeignKeys(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.ForeignKey, error) {
	fkr, err := dbConn.QueryContext(ctx, `
        SELECT
            fk.name AS constraint_name,
            STRING_AGG(c.name, ',') WITHIN GROUP (ORDER BY fkc.constraint_column_id) AS from_columns,
            OBJECT_NAME(fk.referenced_object_id) AS to_table,
            STRING_AGG(rc.name, ',') WITHIN GROUP (ORDER BY fkc.constraint_column_id) AS to_columns
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        WHERE fk.parent_object_id = OBJECT_ID(@table)
        GROUP BY fk.name, fk.referenced_object_id
        ORDER BY MIN(c.column_id), fk.name`, sql.Named("table", table))
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
	db.Register("sqlserver", mssqlExtractor{})
	db.Register("mssql", mssqlExtractor{})
}
