package routelog

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"sync"
)

// nolint:gochecknoglobals
var (
	sqlDriverNamesByType = map[reflect.Type]string{}
	sqlDriverNamesOnce   = sync.Once{}
)

// LookupDriverName gets the registered name of a driver instance, like "mysql".
// The database/sql API doesn't provide a way to get the registry name for
// a driver from the driver type.
// from https://github.com/golang/go/issues/12600
func LookupDriverName(d driver.Driver) string {
	sqlDriverNamesOnce.Do(func() {
		for _, name := range sql.Drivers() {
			// sql.Open only validates its arguments, an empty DSN never connects.
			if db, _ := sql.Open(name, ""); db != nil {
				sqlDriverNamesByType[reflect.TypeOf(db.Driver())] = name
				_ = db.Close()
			}
		}
	})

	return sqlDriverNamesByType[reflect.TypeOf(d)]
}
