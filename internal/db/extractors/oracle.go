package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// oracleExtractor implements Extractor for Oracle. Identifiers are folded to
// lower case on the way out and upper case on the way in.
type oracleExtractor struct{}

const oracleOwner = `NVL(UPPER(:1), SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))`

func (oracleExtractor) Tables(ctx context.Context, dbConn *sql.DB) ([]string, error) {
	rows, err := dbConn.QueryContext(ctx, `
	    SELECT LOWER(table_name)
	    FROM user_tables
	    ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (oracleExtractor) Columns(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.Column, error) {
	owner, name := splitQualified(table)
	cr, err := dbConn.QueryContext(ctx, `
            SELECT LOWER(column_name), data_type, data_precision, data_scale, nullable, char_length, data_default
            FROM all_tab_columns
            WHERE owner = `+oracleOwner+` AND table_name = UPPER(:2)
            ORDER BY column_id`, owner, name)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer cr.Close()

	var cols []introspect.Column
	for cr.Next() {
		var (
			colName, dataType, nullable string
			precision, scale, maxLen    sql.NullInt64
			dflt                        sql.NullString
		)
		if err := cr.Scan(&colName, &dataType, &precision, &scale, &nullable, &maxLen, &dflt); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		if strings.EqualFold(dataType, "NUMBER") && precision.Valid {
			dataType = fmt.Sprintf("NUMBER(%d,%d)", precision.Int64, scale.Int64)
		}
		if dflt.Valid {
			dflt.String = strings.TrimSpace(dflt.String)
		}
		cols = append(cols, newColumn(colName, dataType, nullable == "Y", maxLen, dflt))
	}
	if err := cr.Err(); err != nil {
		return nil, err
	}

	pkr, err := dbConn.QueryContext(ctx, `
            SELECT LOWER(acc.column_name)
            FROM all_cons_columns acc
            JOIN all_constraints ac ON acc.owner = ac.owner AND acc.constraint_name = ac.constraint_name
            WHERE ac.constraint_type = 'P' AND acc.owner = `+oracleOwner+` AND acc.table_name = UPPER(:2)`, owner, name)
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

func (oracleExtractor) Indexed(ctx context.Context, dbConn *sql.DB, table string) ([]string, error) {
	owner, name := splitQualified(table)
	rows, err := dbConn.QueryContext(ctx, `
	    SELECT DISTINCT LOWER(aic.column_name)
	    FROM all_ind_columns aic
	    WHERE aic.table_owner = `+oracleOwner+` AND aic.table_name = UPPER(:2)
	      AND NOT EXISTS (SELECT 1 FROM all_constraints ac
	                      WHERE ac.owner = aic.index_owner AND ac.index_name = aic.index_name
	                        AND ac.constraint_type = 'P')
	    ORDER BY 1`, owner, name)
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s: %w", table, err)
	}
	return scanNames(rows)
}

func (oracleExtractor) ForeignKeys(ctx context.Context, dbConn *sql.DB, table string) ([]introspect.ForeignKey, error) {
	owner, name := splitQualified(table)
	fkr, err := dbConn.QueryContext(ctx, `
        SELECT LOWER(a.constraint_name),
               LOWER(listagg(acc.column_name, ',') within group (order by acc.position)) AS from_columns,
               LOWER(rcc.table_name) AS to_table,
               LOWER(listagg(rcc.column_name, ',') within group (order by rcc.position)) AS to_columns
        FROM all_constraints a
        JOIN all_cons_columns acc
          ON a.owner = acc.owner
         AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
          ON a.r_owner = rcc.owner
         AND a.r_constraint_name = rcc.constraint_name
         AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        JOIN all_tab_columns atc
          ON atc.owner = acc.owner AND atc.table_name = acc.table_name AND atc.column_name = acc.column_name
        WHERE a.constraint_type = 'R'
          AND a.owner = `+oracleOwner+` AND a.table_name = UPPER(:2)
        GROUP BY a.constraint_name, rcc.table_name
        ORDER BY MIN(atc.column_id), a.constraint_name`, owner, name)
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
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}
