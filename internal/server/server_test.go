package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	_ "scaffoldgen/internal/db/extractors"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const shopYAML = `
tables:
  orders:
    columns:
      - {name: id, type: integer, pk: true}
      - {name: customer_id, type: integer, allow_null: true}
      - {name: reference, type: "character varying(30)", max_length: 30}
      - {name: order_date, type: date}
    indexed: [customer_id]
    foreign_keys:
      - {columns: [customer_id], keys: [id], table: customers}
  customers:
    columns:
      - {name: id, type: integer, pk: true}
      - {name: name, type: text}
`

func staticServer(t *testing.T) *Server {
	t.Helper()
	sp, err := introspect.ParseStatic([]byte(shopYAML))
	require.NoError(t, err)
	return New(config.Default(), WithProvider(sp))
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestNoProvider(t *testing.T) {
	r := New(config.Default()).Router()
	for _, path := range []string{"/api/tables", "/api/tables/orders"} {
		t.Run(path, func(t *testing.T) {
			code, env := do(t, r, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "error", env.Status)
			assert.Contains(t, env.Error, "/api/connect")
		})
	}
}

func TestGetConnect(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Type = "PostgreSQL"
	cfg.Database.Host = "db.local"
	r := New(cfg).Router()

	code, env := do(t, r, http.MethodGet, "/api/getConnect", nil)
	assert.Equal(t, http.StatusOK, code)

	var got config.DBConfig
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "postgres", got.Type)
	assert.Equal(t, "db.local", got.Host)
}

func TestListTables(t *testing.T) {
	code, env := do(t, staticServer(t).Router(), http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, code)

	var tables []string
	require.NoError(t, json.Unmarshal(env.Data, &tables))
	assert.Equal(t, []string{"customers", "orders"}, tables)
}

func TestDescribeTable(t *testing.T) {
	r := staticServer(t).Router()

	code, env := do(t, r, http.MethodGet, "/api/tables/orders", nil)
	require.Equal(t, http.StatusOK, code)
	var view TableView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "reference", view.LikelyLabelField)
	require.Len(t, view.Columns, 4)
	assert.Equal(t, "select", view.Columns[1].Control)
	assert.True(t, view.Columns[1].Indexed)
	assert.Equal(t, "time.Time", view.Columns[3].EntityType)

	code, _ = do(t, r, http.MethodGet, "/api/tables/ghosts", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestScaffold(t *testing.T) {
	r := staticServer(t).Router()

	var tests = []struct {
		name string
		body map[string]string
		code int
	}{
		{"complete", map[string]string{"table": "orders", "short_name": "orders", "applet": "sales", "program": "orders"}, http.StatusOK},
		{"missing program", map[string]string{"table": "orders", "short_name": "orders", "applet": "sales"}, http.StatusBadRequest},
		{"other without name", map[string]string{"table": "orders", "short_name": "orders", "applet": "other", "program": "orders"}, http.StatusBadRequest},
		{"unknown table", map[string]string{"table": "ghosts", "short_name": "ghosts", "applet": "sales", "program": "ghosts"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, r, http.MethodPost, "/api/scaffold", tt.body)
			assert.Equal(t, tt.code, code, env.Error)
		})
	}

	_, env := do(t, r, http.MethodPost, "/api/scaffold", tests[0].body)
	var got struct {
		ClassNames struct {
			Class string `json:"class"`
		} `json:"classnames"`
		Query      string            `json:"query"`
		Files      map[string]string `json:"files"`
		ReportYAML string            `json:"report_yaml"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Order", got.ClassNames.Class)
	assert.Contains(t, got.Query, "LEFT JOIN customers")
	assert.Contains(t, got.Files, "lib/sales/entities/order.go")
	assert.Contains(t, got.ReportYAML, "query_parameter_definitions:")
}

func TestConnect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s := New(config.Default())
	t.Cleanup(func() { s.Close() })
	r := s.Router()

	code, env := do(t, r, http.MethodPost, "/api/connect", config.DBConfig{Type: "sqlite", DatabaseName: path})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"customers"`)

	code, env = do(t, r, http.MethodGet, "/api/tables", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["customers"]`, string(env.Data))

	code, _ = do(t, r, http.MethodPost, "/api/connect", config.DBConfig{Type: "cobol"})
	assert.Equal(t, http.StatusBadRequest, code)
}
