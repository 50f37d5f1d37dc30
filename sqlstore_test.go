package routelog

import (
	"database/sql"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/bingoohuang/ip"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeDB struct {
	mu    sync.Mutex
	calls []execCall
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 1, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

func (f *fakeDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, execCall{query: query, args: args})

	return fakeResult{}, nil
}

func (f *fakeDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func bizLogCols() []TableCol {
	return []TableCol{
		{Name: "id", DataType: "varchar", MaxLength: 60, Seq: 1},
		{Name: "biz", DataType: "varchar", MaxLength: 100, Seq: 2},
		{Name: "user_name", Comment: `登录用户 httplog:"ctx_username"`, DataType: "varchar", MaxLength: 60, Seq: 3},
		{Name: "req_method", DataType: "varchar", MaxLength: 10, Seq: 4},
		{Name: "req_url", DataType: "varchar", MaxLength: 8, Seq: 5},
		{Name: "req_body", DataType: "text", Seq: 6},
		{Name: "rsp_body", DataType: "text", Seq: 7},
		{Name: "rsp_status", DataType: "int", Seq: 8},
		{Name: "user_id", Comment: `httplog:"rsp_json_data.id"`, DataType: "varchar", MaxLength: 20, Seq: 9},
		{Name: "auth", Comment: `httplog:"req_head_Authorization"`, DataType: "varchar", MaxLength: 100, Seq: 10},
		{Name: "remark", Comment: `httplog:"-"`, DataType: "varchar", Seq: 11},
		{Name: "unknown_col", DataType: "varchar", Seq: 12},
	}
}

func TestCreateInsertSQL(t *testing.T) {
	schema := newTableSchema("biz_log", bizLogCols())

	assert.Equal(t,
		"insert into biz_log(id,biz,user_name,req_method,req_url,req_body,rsp_body,rsp_status,user_id,auth) "+
			"values(?,?,?,?,?,?,?,?,?,?)",
		schema.InsertSQL)
}

func TestSQLStore(t *testing.T) {
	db := &fakeDB{}
	store := newSQLStore(db, []string{"biz_log", " "})
	store.schemas["biz_log"] = newTableSchema("biz_log", bizLogCols())
	store.schemas["audit_log"] = newTableSchema("audit_log", []TableCol{
		{Name: "id", DataType: "varchar"},
		{Name: "handler", DataType: "varchar"},
	})

	mux := http.NewServeMux()
	d := New(mux, []string{"/api/"}, WithStore(store))

	d.HandleFunc("POST /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = ioutil.ReadAll(r.Body)
		PutAttr(r, "username", "bingoohuang")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"data":{"id":"u-1","name":"bingoo"}}`))
	}, Name("创建用户"))

	d.HandleFunc("/api/audit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, Tables("audit_log"))

	body := JSONVar(`{"name":"bingoo"}`)
	auth := HeaderVar("Authorization", "Bearer abc")

	rr := PerformRequest("POST", "/api/users/u-1", d, body, auth)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = PerformRequest("GET", "/api/audit", d)
	require.Equal(t, http.StatusNoContent, rr.Code)

	require.Len(t, db.calls, 2)
	assert.Equal(t, store.schemas["biz_log"].InsertSQL, db.calls[0].query)

	args := db.calls[0].args
	require.Len(t, args, 10)
	assert.NotEmpty(t, args[0])
	assert.Equal(t, "创建用户", args[1])
	assert.Equal(t, "bingoohuang", args[2])
	assert.Equal(t, "POST", args[3])
	assert.Equal(t, "/api/...", args[4])
	assert.Equal(t, `{"name":"bingoo"}`, args[5])
	assert.Equal(t, `{"data":{"id":"u-1","name":"bingoo"}}`, args[6])
	assert.Equal(t, http.StatusOK, args[7])
	assert.Equal(t, "u-1", args[8])
	assert.Equal(t, "Bearer abc", args[9])

	assert.Equal(t, "insert into audit_log(id,handler) values(?,?)", db.calls[1].query)
	assert.Equal(t, "ANY /api/audit", strings.SplitN(db.calls[1].args[1].(string), " (", 2)[0])
}

func TestHostIPColumn(t *testing.T) {
	c := TableCol{Name: "ip", DataType: "varchar", MaxLength: 60}
	c.parseComment()

	if assert.NotNil(t, c.getter) {
		assert.Equal(t, ip.Outbound(), c.getter.get(&Record{}))
		assert.Equal(t, hostIP(), c.getter.get(&Record{}))
	}
}

func TestSQLStoreSkipsUnreadableTable(t *testing.T) {
	db := &fakeDB{}
	store := newSQLStore(db, []string{"missing_log"})

	store.Store(&Record{ID: "1"})

	assert.Empty(t, db.calls)
	assert.Empty(t, store.schemas)
}

func TestNewSQLStore(t *testing.T) {
	dsn := os.Getenv("ROUTELOG_MYSQL_DSN")
	if dsn == "" {
		t.Skip("ROUTELOG_MYSQL_DSN is not set")
	}

	db, err := sql.Open("mysql", dsn)
	require.Nil(t, err)

	defer db.Close()

	_, err = db.Exec(`create table if not exists biz_log(
		id varchar(60) not null primary key,
		created datetime,
		biz varchar(100),
		req_url varchar(200),
		req_body text,
		rsp_body text,
		rsp_status int,
		cost int comment '耗时毫秒'
	)`)
	require.Nil(t, err)

	store := NewSQLStore(db, "")
	assert.Equal(t, "mysql", store.DriverName)

	mux := http.NewServeMux()
	d := New(mux, []string{"/echo"}, WithStore(store))
	d.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("echo"))
	}, Name("回显处理"), Tables("biz_log"))

	rr := PerformRequest("GET", "/echo", d, JSONVar(`{}`))
	assert.Equal(t, "echo", rr.Body.String())

	var biz string

	err = db.QueryRow(`select biz from biz_log order by created desc limit 1`).Scan(&biz)
	require.Nil(t, err)
	assert.Equal(t, "回显处理", biz)
}
