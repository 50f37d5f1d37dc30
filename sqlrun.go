package routelog

import (
	"database/sql"
	"fmt"
	"time"
)

// ExecResult defines the result structure of sql execution.
type ExecResult struct {
	Error        error
	CostTime     time.Duration
	RowsAffected int64
	LastInsertID int64
}

// MiniDB wraps Exec and Query methods.
type MiniDB interface {
	// Exec executes update.
	Exec(query string, args ...interface{}) (sql.Result, error)
	// Query performs query.
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// SQLExec is used to execute updates and the schema query.
type SQLExec struct {
	MiniDB
}

// NewSQLExec creates a new SQLExec.
func NewSQLExec(db MiniDB) *SQLExec {
	return &SQLExec{MiniDB: db}
}

// DoUpdate does the update.
func (s *SQLExec) DoUpdate(query string, vars ...interface{}) (result ExecResult) {
	start := time.Now()
	r, err := s.Exec(query, vars...)

	if r != nil && err == nil {
		result.RowsAffected, _ = r.RowsAffected()
		result.LastInsertID, _ = r.LastInsertId()
	}

	result.Error = err
	result.CostTime = time.Since(start)

	return result
}

const tableColsSQL = `select column_name, column_comment, data_type,
	 character_maximum_length max_length, ordinal_position column_seq
	 from information_schema.columns
	 where table_schema = database()
	 and table_name = ?
	 order by ordinal_position`

// QueryTableCols reads the columns of tableName from the MySQL information schema.
func (s *SQLExec) QueryTableCols(tableName string) ([]TableCol, error) {
	rows, err := s.Query(tableColsSQL, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", tableName, err)
	}

	defer rows.Close()

	var cols []TableCol

	for rows.Next() {
		var (
			c         TableCol
			comment   sql.NullString
			maxLength sql.NullInt64
		)

		if err := rows.Scan(&c.Name, &comment, &c.DataType, &maxLength, &c.Seq); err != nil {
			return nil, fmt.Errorf("scan columns of %s: %w", tableName, err)
		}

		c.Comment = comment.String
		c.MaxLength = int(maxLength.Int64)
		cols = append(cols, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", tableName, err)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableName)
	}

	return cols, nil
}
