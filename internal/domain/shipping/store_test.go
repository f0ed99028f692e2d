package shipping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier serves canned zone rows for Lookup without a live pool.
type fakeQuerier struct {
	zones    []*Zone
	queryErr error
	lastSQL  string
	lastArgs []any
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected Exec")
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeZoneRows{zones: f.zones, idx: -1}, nil
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("unexpected QueryRow")
}

type fakeZoneRows struct {
	zones []*Zone
	idx   int
}

func (r *fakeZoneRows) Close()                                       {}
func (r *fakeZoneRows) Err() error                                   { return nil }
func (r *fakeZoneRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeZoneRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeZoneRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeZoneRows) RawValues() [][]byte                          { return nil }
func (r *fakeZoneRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeZoneRows) Next() bool {
	r.idx++
	return r.idx < len(r.zones)
}

func (r *fakeZoneRows) Scan(dest ...any) error {
	z := r.zones[r.idx]
	*dest[0].(*int64) = z.ID
	*dest[1].(*string) = z.Country
	*dest[2].(**string) = z.City
	*dest[3].(**string) = z.Continent
	*dest[4].(*int64) = z.PriceCents
	*dest[5].(**string) = z.Details
	*dest[6].(*time.Time) = z.CreatedAt
	*dest[7].(*time.Time) = z.UpdatedAt
	return nil
}

func TestLookupCityOverrideBeatsCountryDefault(t *testing.T) {
	q := &fakeQuerier{zones: []*Zone{
		{ID: 1, Country: "Saudi Arabia", City: nil, PriceCents: 1500},
		{ID: 2, Country: "Saudi Arabia", City: strptr("Riyadh"), PriceCents: 1000},
	}}
	repo := NewRepository(q)

	rate, err := repo.Lookup(context.Background(), "Saudi Arabia", "Riyadh")
	require.NoError(t, err)
	assert.True(t, rate.Resolved)
	assert.Equal(t, int64(1000), rate.PriceCents)

	// Unknown city falls back to the country default row.
	rate, err = repo.Lookup(context.Background(), "Saudi Arabia", "Jeddah")
	require.NoError(t, err)
	assert.True(t, rate.Resolved)
	assert.Equal(t, int64(1500), rate.PriceCents)
}

func TestLookupMatchesCaseInsensitively(t *testing.T) {
	q := &fakeQuerier{zones: []*Zone{
		{ID: 1, Country: "Saudi Arabia", City: strptr("Riyadh"), PriceCents: 1000},
	}}
	repo := NewRepository(q)

	rate, err := repo.Lookup(context.Background(), "saudi arabia", "RIYADH")
	require.NoError(t, err)
	assert.True(t, rate.Resolved)
	assert.Equal(t, int64(1000), rate.PriceCents)
}

func TestLookupUnmappedDestinationIsNotAnError(t *testing.T) {
	q := &fakeQuerier{}
	repo := NewRepository(q)

	rate, err := repo.Lookup(context.Background(), "France", "Paris")
	require.NoError(t, err)
	assert.False(t, rate.Resolved)
	assert.Equal(t, int64(0), rate.PriceCents)
	assert.Equal(t, []any{"France"}, q.lastArgs)
}

func TestLookupQueryErrorIsSurfaced(t *testing.T) {
	q := &fakeQuerier{queryErr: errors.New("connection refused")}
	repo := NewRepository(q)

	_, err := repo.Lookup(context.Background(), "Kuwait", "")
	assert.ErrorContains(t, err, "lookup shipping rate")
}
