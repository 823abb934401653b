package tablemeta

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaffoldgen/internal/introspect"
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

func loadFixture(t *testing.T) *introspect.StaticProvider {
	t.Helper()
	p, err := introspect.LoadStaticFile("testdata/schema.yaml")
	require.NoError(t, err)
	return p
}

func loadMeta(t *testing.T, table string) *Meta {
	t.Helper()
	m, err := Load(context.Background(), loadFixture(t), table)
	require.NoError(t, err)
	return m
}

func TestLoadUnknownTable(t *testing.T) {
	_, err := Load(context.Background(), loadFixture(t), "missing")
	assert.True(t, errors.Is(err, introspect.ErrTableNotFound))
}

func TestColumnsWithout(t *testing.T) {
	m := loadMeta(t, "orders")
	assert.Equal(t,
		[]string{"customer_id", "order_date", "status", "notes"},
		m.ColumnsWithout("id", "created_at", "updated_at", "active"))
	assert.Equal(t, m.ColumnNames(), m.ColumnsWithout())
}

func TestLikelyLabelField(t *testing.T) {
	var tests = []struct {
		table string
		want  string
	}{
		// account_id is a string but carries the key suffix
		{"customers", "name"},
		{"orders", "status"},
		{"addresses", "line1"},
		// no string column at all
		{"counters", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, loadMeta(t, tt.table).LikelyLabelField())
		})
	}
}

func TestLikelyLabelFieldUsesFlaggedPrimaryKey(t *testing.T) {
	m := New("codes", []introspect.Column{
		{Name: "code", Type: introspect.TypeString, PrimaryKey: true},
		{Name: "qty", Type: introspect.TypeInteger},
	}, nil, nil)
	assert.Equal(t, "code", m.LikelyLabelField())

	m = New("codes", []introspect.Column{
		{Name: "code", Type: introspect.TypeString, PrimaryKey: true},
		{Name: "description", Type: introspect.TypeString},
	}, nil, nil)
	assert.Equal(t, "description", m.LikelyLabelField())
}

func TestActiveColumnPresent(t *testing.T) {
	assert.True(t, loadMeta(t, "customers").ActiveColumnPresent())
	assert.False(t, loadMeta(t, "orders").ActiveColumnPresent())
}

func TestForeignKeyLookupFirstWins(t *testing.T) {
	m := loadMeta(t, "shipments")

	ref, ok := m.ForeignKeyFor("to_address_id")
	require.True(t, ok)
	assert.Equal(t, "addresses", ref.Table)
	assert.Equal(t, []string{"id"}, ref.Keys)

	require.Len(t, m.Diagnostics(), 1)
	assert.Contains(t, m.Diagnostics()[0], "to_address_id")
	assert.Contains(t, m.Diagnostics()[0], "keeping addresses")

	// all declared edges are still reported
	assert.Len(t, m.ForeignKeys(), 3)

	_, ok = m.ForeignKeyFor("tags")
	assert.False(t, ok)
}

func TestIndexed(t *testing.T) {
	m := loadMeta(t, "orders")
	assert.True(t, m.IsIndexed("customer_id"))
	assert.False(t, m.IsIndexed("notes"))
	assert.Equal(t, []string{"customer_id"}, m.IndexedColumns())
}

func TestColumnMappings(t *testing.T) {
	m := loadMeta(t, "orders")

	typ, err := m.ColumnEntityType("order_date")
	require.NoError(t, err)
	assert.Equal(t, "time.Time", typ)

	vt, err := m.ColumnValidationType("status")
	require.NoError(t, err)
	assert.Equal(t, "*string", vt)

	exp, err := m.ColumnValidationExpect("customer_id")
	require.NoError(t, err)
	assert.Equal(t, "numeric", exp)

	ctl, err := m.ColumnControl("customer_id")
	require.NoError(t, err)
	assert.Equal(t, "select", ctl)

	ctl, err = m.ColumnControl("order_date")
	require.NoError(t, err)
	assert.Equal(t, "date", ctl)

	_, err = m.ColumnEntityType("nope")
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	extra, err := loadMeta(t, "shipments").ColumnValidationArrayExtra("tags")
	require.NoError(t, err)
	assert.Equal(t, "dive", extra)
}

func TestUnmappedTypeProducesPlaceholder(t *testing.T) {
	m := loadMeta(t, "counters")

	typ, err := m.ColumnEntityType("payload")
	require.NoError(t, err)
	assert.Equal(t, "??? (bytea)", typ)

	vt, err := m.ColumnValidationType("payload")
	require.NoError(t, err)
	assert.Equal(t, "??? (bytea)", vt)

	ctl, err := m.ColumnControl("payload")
	require.NoError(t, err)
	assert.Equal(t, "??? (bytea)", ctl)
}

func TestMappingsCoverEveryStorageType(t *testing.T) {
	for _, st := range introspect.StorageTypes() {
		t.Run(st.String(), func(t *testing.T) {
			assert.NotContains(t, EntityType(st, "x"), "???")
			assert.NotContains(t, ValidationType(st, "x"), "???")
			assert.NotContains(t, ValidationExpect(st, "x"), "???")
			assert.NotContains(t, ControlKind(st, "x"), "???")
		})
	}
}

func TestSnapshotMemoizes(t *testing.T) {
	p := &countingProvider{Provider: loadFixture(t), calls: map[string]int{}}
	s := NewSnapshot(p, "")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f, err := s.LabelFieldFor(ctx, "customers")
		require.NoError(t, err)
		assert.Equal(t, "name", f)
	}
	assert.Equal(t, 1, p.calls["customers"])

	// failures are not cached
	_, err := s.Table(ctx, "missing")
	require.Error(t, err)
	_, err = s.Table(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, 2, p.calls["missing"])
}

func TestSnapshotKeySuffix(t *testing.T) {
	s := NewSnapshot(loadFixture(t), "_fk")
	m, err := s.Table(context.Background(), "customers")
	require.NoError(t, err)
	assert.Equal(t, "_fk", m.KeySuffix())
	// with a different suffix account_id is an ordinary string column
	assert.Equal(t, "account_id", m.LikelyLabelField())
}
