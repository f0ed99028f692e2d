package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier replays the repository's SQL conversation in memory: the order
// insert hands back an id, item inserts are recorded, and the verification
// count can be forced below the number of inserted rows.
type fakeQuerier struct {
	orderID      int64
	lockedStatus Status
	storedCount  *int // overrides the post-insert item count when set

	itemInserts   [][]any
	statusUpdates []any
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO order_items"):
		f.itemInserts = append(f.itemInserts, args)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "UPDATE orders SET status"):
		f.statusUpdates = append(f.statusUpdates, args[1])
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected Exec: " + sql)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query: " + sql)
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO orders"):
		return scanFunc(func(dest ...any) error {
			*dest[0].(*int64) = f.orderID
			*dest[1].(*time.Time) = time.Now()
			return nil
		})
	case strings.Contains(sql, "SELECT COUNT(*) FROM order_items"):
		return scanFunc(func(dest ...any) error {
			n := len(f.itemInserts)
			if f.storedCount != nil {
				n = *f.storedCount
			}
			*dest[0].(*int) = n
			return nil
		})
	case strings.Contains(sql, "FOR UPDATE"):
		return scanFunc(func(dest ...any) error {
			*dest[0].(*Status) = f.lockedStatus
			return nil
		})
	case strings.Contains(sql, "FROM orders WHERE id ="):
		return scanFunc(func(dest ...any) error {
			*dest[0].(*int64) = f.orderID
			*dest[12].(*Status) = f.lockedStatus
			if len(f.statusUpdates) > 0 {
				*dest[12].(*Status) = f.statusUpdates[len(f.statusUpdates)-1].(Status)
			}
			return nil
		})
	}
	return scanFunc(func(dest ...any) error {
		return errors.New("unexpected QueryRow: " + sql)
	})
}

func testRepo(t *testing.T, q *fakeQuerier) *Repository {
	t.Helper()
	gen, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)
	return NewRepository(q, gen)
}

func testItems() []OrderItem {
	label := "50ml"
	pid := int64(11)
	return []OrderItem{
		{ProductID: &pid, Name: "Oud Royale", VariantLabel: &label, Quantity: 2, UnitPriceCents: 4500},
		{Name: "Amber Musk", Quantity: 1, UnitPriceCents: 3000},
	}
}

func TestCreateWritesOneRowPerItem(t *testing.T) {
	q := &fakeQuerier{orderID: 42}
	repo := testRepo(t, q)

	items := testItems()
	o, err := repo.Create(context.Background(), &Order{CustomerName: "Sara"}, items)
	require.NoError(t, err)

	assert.Equal(t, int64(42), o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.IsVerified)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "PRF-"), o.OrderNumber)

	// Every cart line lands as its own order_items row, tied to the new order.
	require.Len(t, q.itemInserts, len(items))
	for _, args := range q.itemInserts {
		assert.Equal(t, int64(42), args[0])
	}

	// Line totals are snapshots of unit price times quantity.
	assert.Equal(t, int64(9000), items[0].TotalCents)
	assert.Equal(t, int64(3000), items[1].TotalCents)
}

func TestCreateReportsIncompleteItems(t *testing.T) {
	stored := 1
	q := &fakeQuerier{orderID: 42, storedCount: &stored}
	repo := testRepo(t, q)

	_, err := repo.Create(context.Background(), &Order{CustomerName: "Sara"}, testItems())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrItemsIncomplete)
	assert.ErrorContains(t, err, "expected 2, stored 1")
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	q := &fakeQuerier{orderID: 42}
	repo := testRepo(t, q)

	_, err := repo.Create(context.Background(), &Order{CustomerName: "Sara"}, nil)
	require.Error(t, err)
	assert.Empty(t, q.itemInserts)
}

func TestCancelAlreadyCancelledOrder(t *testing.T) {
	q := &fakeQuerier{orderID: 7, lockedStatus: StatusCancelled}
	repo := testRepo(t, q)

	err := repo.Cancel(context.Background(), 7)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Empty(t, q.statusUpdates, "no UPDATE may run for a repeat cancel")
}

func TestCancelPendingOrder(t *testing.T) {
	q := &fakeQuerier{orderID: 7, lockedStatus: StatusPending}
	repo := testRepo(t, q)

	err := repo.Cancel(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, q.statusUpdates, 1)
	assert.Equal(t, StatusCancelled, q.statusUpdates[0])
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	q := &fakeQuerier{orderID: 7, lockedStatus: StatusDelivered}
	repo := testRepo(t, q)

	_, err := repo.UpdateStatus(context.Background(), 7, StatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, q.statusUpdates)
}
