package routelog

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// SQLStore stores the records into MySQL tables. Each column is filled by the
// value its name, or the httplog tag in its comment, refers to.
type SQLStore struct {
	DB         MiniDB
	DriverName string
	LogTables  []string

	schemas map[string]*tableSchema
	mu      sync.RWMutex
}

// NewSQLStore creates a new SQLStore writing to defaultLogTables unless a route
// registers its own Tables.
func NewSQLStore(db *sql.DB, defaultLogTables ...string) *SQLStore {
	s := newSQLStore(db, defaultLogTables)
	s.DriverName = LookupDriverName(db.Driver())

	if s.DriverName != "mysql" {
		logrus.Warnf("routelog: SQLStore reads MySQL information_schema, driver is %q", s.DriverName)
	}

	return s
}

func newSQLStore(db MiniDB, tables []string) *SQLStore {
	return &SQLStore{
		DB:        db,
		LogTables: nonEmpty(tables),
		schemas:   make(map[string]*tableSchema),
	}
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))

	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}

// Store inserts l into every table of its route, or the default tables.
func (s *SQLStore) Store(l *Record) {
	tables := l.tables()
	if len(tables) == 0 {
		tables = s.LogTables
	}

	for _, t := range tables {
		schema, err := s.loadTableSchema(t)
		if err != nil {
			logrus.Warnf("routelog: load schema of %s: %v", t, err)
			continue
		}

		if result := schema.log(s.DB, l); result.Error != nil {
			logrus.Warnf("routelog: insert record %s into %s: %v", l.ID, t, result.Error)
		}
	}
}

func (s *SQLStore) loadTableSchema(tableName string) (*tableSchema, error) {
	s.mu.RLock()
	v, ok := s.schemas[tableName]
	s.mu.RUnlock()

	if ok {
		return v, nil
	}

	cols, err := NewSQLExec(s.DB).QueryTableCols(tableName)
	if err != nil {
		return nil, err
	}

	v = newTableSchema(tableName, cols)

	s.mu.Lock()
	s.schemas[tableName] = v
	s.mu.Unlock()

	return v, nil
}

type tableSchema struct {
	Name      string
	Cols      []TableCol
	InsertSQL string
	getters   []col
}

func newTableSchema(name string, cols []TableCol) *tableSchema {
	t := &tableSchema{Name: name, Cols: cols}
	t.createInsertSQL()

	return t
}

func (t *tableSchema) log(db MiniDB, l *Record) ExecResult {
	params := make([]interface{}, len(t.getters))
	for i, vg := range t.getters {
		params[i] = vg.get(l)
	}

	result := NewSQLExec(db).DoUpdate(t.InsertSQL, params...)
	logrus.Debugf("log result %+v", result)

	return result
}

func (t *tableSchema) createInsertSQL() {
	getters := make([]col, 0, len(t.Cols))
	columns := make([]string, 0, len(t.Cols))
	marks := make([]string, 0, len(t.Cols))

	for i := range t.Cols {
		c := &t.Cols[i]
		c.parseComment()

		if c.getter == nil {
			continue
		}

		columns = append(columns, c.Name)
		marks = append(marks, "?")
		getters = append(getters, c.getter)
	}

	t.InsertSQL = "insert into " + t.Name + "(" +
		strings.Join(columns, ",") +
		") values(" +
		strings.Join(marks, ",") + ")"
	t.getters = getters
}
