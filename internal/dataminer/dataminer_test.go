package dataminer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/report"
	"scaffoldgen/internal/scaffold"
	"scaffoldgen/internal/tablemeta"
)

// countingProvider records how often each table was introspected.
type countingProvider struct {
	introspect.Provider
	calls map[string]int
}

func (p *countingProvider) TableColumns(ctx context.Context, table string) ([]introspect.Column, error) {
	p.calls[table]++
	return p.Provider.TableColumns(ctx, table)
}

func newSnapshot(t *testing.T) (*tablemeta.Snapshot, *countingProvider) {
	t.Helper()
	sp, err := introspect.LoadStaticFile("testdata/schema.yaml")
	require.NoError(t, err)
	cp := &countingProvider{Provider: sp, calls: map[string]int{}}
	return tablemeta.NewSnapshot(cp, ""), cp
}

func configFor(t *testing.T, snap *tablemeta.Snapshot, table string) *scaffold.Config {
	t.Helper()
	meta, err := snap.Table(context.Background(), table)
	require.NoError(t, err)
	return scaffold.New(scaffold.Params{Table: table, ShortName: table, Applet: "sales", Program: table}, meta, "WebApp")
}

func makeQuery(t *testing.T, snap *tablemeta.Snapshot, table string) (*report.Report, *scaffold.Config) {
	t.Helper()
	cfg := configFor(t, snap, table)
	rep, err := NewQueryMaker(snap, DefaultPolymorphicLookup()).Make(context.Background(), cfg)
	require.NoError(t, err)
	return rep, cfg
}

func TestQueryMaker(t *testing.T) {
	var tests = []struct {
		table   string
		caption string
		want    []string
	}{
		{
			"orders", "Orders",
			[]string{
				"SELECT orders.id, orders.customer_id, orders.order_date, orders.status, orders.notes, orders.created_at, orders.updated_at, customers.name",
				"FROM orders",
				"LEFT JOIN customers ON customers.id = orders.customer_id",
			},
		},
		{
			// repeated references get numbered aliases, a required key an inner join
			"shipments", "Shipments",
			[]string{
				"SELECT shipments.id, shipments.code, shipments.from_address_id, shipments.to_address_id, shipments.warehouse_id, addresses.line1, addresses2.line1 AS addresses2_line1, warehouses.code AS warehouses_code",
				"FROM shipments",
				"LEFT JOIN addresses ON addresses.id = shipments.from_address_id",
				"LEFT JOIN addresses addresses2 ON addresses2.id = shipments.to_address_id",
				"JOIN warehouses ON warehouses.id = shipments.warehouse_id",
			},
		},
		{
			// the role lookup becomes a function call and a self reference never reuses the table name
			"contracts", "Contracts",
			[]string{
				"SELECT contracts.id, contracts.contract_no, contracts.owner_party_role_id, contracts.parent_id, contracts.signed_on, fn_party_role_name(contracts.owner_party_role_id) AS owner_party_role, contracts2.contract_no AS contracts2_contract_no",
				"FROM contracts",
				"LEFT JOIN contracts contracts2 ON contracts2.id = contracts.parent_id",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			snap, _ := newSnapshot(t)
			rep, _ := makeQuery(t, snap, tt.table)
			assert.Equal(t, tt.caption, rep.Caption)
			if diff := cmp.Diff(strings.Join(tt.want, "\n"), rep.SQL); diff != "" {
				t.Errorf("sql mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryMakerCompositeKeyAndLookupCollision(t *testing.T) {
	snap, _ := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "lines")

	want := strings.Join([]string{
		"SELECT lines.id, lines.customer, lines.customer_id, lines.order_no, lines.order_rev, fn_party_role_name(lines.customer_id) AS party_roles_customer, revisions.title",
		"FROM lines",
		// the join kind follows the first key column only
		"JOIN revisions ON revisions.no = lines.order_no AND revisions.rev = lines.order_rev",
	}, "\n")
	if diff := cmp.Diff(want, rep.SQL); diff != "" {
		t.Errorf("sql mismatch (-want +got):\n%s", diff)
	}

	dm, _ := makeDm(t, snap, rep, "lines", nil)
	b, err := dm.ToYAML()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(b, &doc))

	_, ok := dm.Column("customer")
	assert.True(t, ok)
	_, ok = dm.Column("party_roles_customer")
	assert.True(t, ok)
}

func TestQueryMakerColumnCompleteness(t *testing.T) {
	snap, _ := newSnapshot(t)
	for _, table := range []string{"orders", "shipments", "contracts", "lines"} {
		t.Run(table, func(t *testing.T) {
			rep, cfg := makeQuery(t, snap, table)
			want := len(cfg.Meta.Columns()) + len(cfg.Meta.ForeignKeys())
			assert.Len(t, rep.Selected, want)

			seen := map[string]bool{}
			for _, s := range rep.Selected {
				assert.False(t, seen[s.Name], "duplicate result column %s", s.Name)
				seen[s.Name] = true
			}
		})
	}
}

func TestQueryMakerIsDeterministic(t *testing.T) {
	a, _ := newSnapshot(t)
	b, _ := newSnapshot(t)
	for _, table := range []string{"orders", "shipments", "contracts", "lines"} {
		ra, _ := makeQuery(t, a, table)
		rb, _ := makeQuery(t, b, table)
		assert.Equal(t, ra.SQL, rb.SQL)

		da, _ := makeDm(t, a, ra, table, nil)
		db, _ := makeDm(t, b, rb, table, nil)
		ya, err := da.ToYAML()
		require.NoError(t, err)
		yb, err := db.ToYAML()
		require.NoError(t, err)
		assert.Equal(t, string(ya), string(yb))
	}
}

func TestQueryMakerUnknownReference(t *testing.T) {
	meta := tablemeta.New("orphans", []introspect.Column{
		{Name: "id", Type: introspect.TypeInteger},
		{Name: "ghost_id", Type: introspect.TypeInteger},
	}, nil, []introspect.ForeignKey{{Columns: []string{"ghost_id"}, Keys: []string{"id"}, Table: "ghosts"}})
	snap, _ := newSnapshot(t)
	cfg := scaffold.New(scaffold.Params{Table: "orphans", ShortName: "orphans", Applet: "x", Program: "x"}, meta, "WebApp")

	_, err := NewQueryMaker(snap, DefaultPolymorphicLookup()).Make(context.Background(), cfg)
	assert.True(t, errors.Is(err, introspect.ErrTableNotFound))
}

func TestSnapshotSharedAcrossMakers(t *testing.T) {
	snap, cp := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "orders")
	_, _ = makeDm(t, snap, rep, "orders", nil)
	assert.Equal(t, 1, cp.calls["customers"])
	assert.Equal(t, 1, cp.calls["orders"])
}

func makeDm(t *testing.T, snap *tablemeta.Snapshot, rep *report.Report, table string, in ColumnIntrospector) (*report.Report, *scaffold.Config) {
	t.Helper()
	cfg := configFor(t, snap, table)
	out, err := NewDmQueryMaker(snap, in, DefaultPolymorphicLookup()).Make(context.Background(), rep, cfg)
	require.NoError(t, err)
	return out, cfg
}

func TestDmQueryMakerOrders(t *testing.T) {
	snap, _ := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "orders")
	dm, _ := makeDm(t, snap, rep, "orders", nil)

	hidden := map[string]bool{}
	for _, c := range dm.Columns {
		hidden[c.Name] = c.Hide
	}
	assert.Equal(t, map[string]bool{
		"id": true, "customer_id": true, "order_date": false, "status": false, "notes": false,
		"created_at": true, "updated_at": true, "name": false,
	}, hidden)

	p, ok := dm.Parameter("orders.customer_id")
	require.True(t, ok)
	assert.Equal(t, report.ControlList, p.ControlType)
	assert.Equal(t, "SELECT name, id FROM customers ORDER BY name", p.ListDef)
	assert.False(t, p.NeedsCompletion)

	p, ok = dm.Parameter("orders.order_date")
	require.True(t, ok)
	assert.Equal(t, report.ControlDateRange, p.ControlType)
	assert.Equal(t, introspect.TypeDate, p.DataType)

	// indexed but neither a key nor temporal
	p, ok = dm.Parameter("orders.status")
	require.True(t, ok)
	assert.Equal(t, report.ControlText, p.ControlType)

	_, ok = dm.Parameter("orders.notes")
	assert.False(t, ok)
	_, ok = dm.Parameter("customers.name")
	assert.False(t, ok)

	// created_at and updated_at are temporal too
	assert.Len(t, dm.Parameters, 5)

	// the input query is left alone
	assert.Empty(t, rep.Columns)
	assert.Equal(t, rep.SQL, dm.SQL)
}

func TestDmQueryMakerRoleLookup(t *testing.T) {
	snap, _ := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "contracts")
	dm, _ := makeDm(t, snap, rep, "contracts", nil)

	p, ok := dm.Parameter("contracts.owner_party_role_id")
	require.True(t, ok)
	assert.Equal(t, report.ControlList, p.ControlType)
	assert.True(t, p.NeedsCompletion)
	assert.Equal(t,
		"SELECT fn_party_role_name(id), id FROM party_roles WHERE role_id = (SELECT id FROM roles WHERE name = 'ROLE_NAME_GOES_HERE')",
		p.ListDef)

	p, ok = dm.Parameter("contracts.parent_id")
	require.True(t, ok)
	assert.Equal(t, "SELECT contract_no, id FROM contracts ORDER BY contract_no", p.ListDef)

	p, ok = dm.Parameter("contracts.signed_on")
	require.True(t, ok)
	assert.Equal(t, report.ControlDateRange, p.ControlType)

	col, ok := dm.Column("owner_party_role")
	require.True(t, ok)
	assert.False(t, col.Hide)
}

func TestDmQueryMakerUnresolvedKeyAndUnmappedType(t *testing.T) {
	snap, _ := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "counters")
	dm, _ := makeDm(t, snap, rep, "counters", nil)

	p, ok := dm.Parameter("counters.region_id")
	require.True(t, ok)
	assert.Equal(t, report.ControlText, p.ControlType)
	assert.Empty(t, p.ListDef)

	b, err := dm.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(b), "??? (bytea)")
}

// stubIntrospector answers like a database would: no namespaced names.
type stubIntrospector struct {
	cols []report.Column
	err  error
	sql  string
}

func (s *stubIntrospector) Columns(_ context.Context, sql string) ([]report.Column, error) {
	s.sql = sql
	return s.cols, s.err
}

func TestDmQueryMakerWithIntrospector(t *testing.T) {
	snap, _ := newSnapshot(t)
	rep, _ := makeQuery(t, snap, "orders")

	live := &stubIntrospector{}
	live.cols, _ = SelectedColumns(rep.Selected).Columns(context.Background(), "")
	for i := range live.cols {
		live.cols[i].NamespacedName = ""
	}
	dm, _ := makeDm(t, snap, rep, "orders", live)
	assert.Equal(t, rep.SQL, live.sql)

	col, ok := dm.Column("name")
	require.True(t, ok)
	assert.Equal(t, "customers.name", col.NamespacedName)
	_, ok = dm.Parameter("orders.customer_id")
	assert.True(t, ok)

	failing := &stubIntrospector{err: errors.New("connection reset")}
	cfg := configFor(t, snap, "orders")
	_, err := NewDmQueryMaker(snap, failing, DefaultPolymorphicLookup()).Make(context.Background(), rep, cfg)
	assert.Error(t, err)
}
