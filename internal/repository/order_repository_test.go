package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/quangtd/restaurant-table-orders/internal/model"
)

const testOrderID = "3f2a9c7e-1111-4222-8333-944455566677"

func newMockRepo(t *testing.T) (*OrderRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewOrderRepo(db), mock
}

func TestCreatePopulatesNumberAndTimestamp(t *testing.T) {
    repo, mock := newMockRepo(t)
    created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO orders").
        WithArgs(testOrderID, uint64(1), 3, model.StatusPending, uint32(165000)).
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO order_items").
        WithArgs(testOrderID, uint64(10), "Phở Bò", uint32(2), uint32(60000), "",
            testOrderID, uint64(11), "Trà Đá", uint32(1), uint32(45000), "no ice").
        WillReturnResult(sqlmock.NewResult(1, 2))
    mock.ExpectQuery("SELECT created_at FROM orders").
        WithArgs(testOrderID).
        WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
    mock.ExpectCommit()

    o := &model.Order{
        ID:          testOrderID,
        TableID:     1,
        TableNumber: 3,
        Status:      model.StatusPending,
        TotalCents:  165000,
        Items: []model.OrderItem{
            {MenuItemID: 10, Name: "Phở Bò", Quantity: 2, PriceCents: 60000},
            {MenuItemID: 11, Name: "Trà Đá", Quantity: 1, PriceCents: 45000, Instructions: "no ice"},
        },
    }
    require.NoError(t, repo.Create(context.Background(), o))

    assert.Equal(t, uint64(42), o.Number, "auto-increment order number comes back via LastInsertId")
    assert.Equal(t, created, o.CreatedAt)
    assert.Equal(t, testOrderID, o.Items[0].OrderID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackOnItemFailure(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO orders").
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectExec("INSERT INTO order_items").
        WillReturnError(assert.AnError)
    mock.ExpectRollback()

    o := &model.Order{
        ID:          testOrderID,
        TableID:     1,
        TableNumber: 3,
        Status:      model.StatusPending,
        TotalCents:  60000,
        Items:       []model.OrderItem{{MenuItemID: 10, Name: "Phở Bò", Quantity: 1, PriceCents: 60000}},
    }
    require.Error(t, repo.Create(context.Background(), o))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceStatusSwapsOnMatchingStatus(t *testing.T) {
    repo, mock := newMockRepo(t)
    at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

    mock.ExpectExec(`UPDATE orders SET status = \?, ready_at = COALESCE\(ready_at, \?\) WHERE id = \? AND status = \?`).
        WithArgs(model.StatusReady, at, testOrderID, model.StatusPreparing).
        WillReturnResult(sqlmock.NewResult(0, 1))

    err := repo.AdvanceStatus(context.Background(), testOrderID, model.StatusPreparing, model.StatusReady, at)
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceStatusReportsStaleWhenRowUnmatched(t *testing.T) {
    repo, mock := newMockRepo(t)
    at := time.Now().UTC()

    // The conditional UPDATE matches nothing: a concurrent writer
    // already moved the order on. The follow-up EXISTS distinguishes
    // stale from missing.
    mock.ExpectExec("UPDATE orders SET status").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT EXISTS").
        WithArgs(testOrderID).
        WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

    err := repo.AdvanceStatus(context.Background(), testOrderID, model.StatusPending, model.StatusPreparing, at)
    assert.ErrorIs(t, err, ErrStaleStatus)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceStatusReportsMissingOrder(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectExec("UPDATE orders SET status").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT EXISTS").
        WithArgs(testOrderID).
        WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

    err := repo.AdvanceStatus(context.Background(), testOrderID, model.StatusPending, model.StatusPreparing, time.Now().UTC())
    assert.ErrorIs(t, err, ErrOrderNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDLoadsItems(t *testing.T) {
    repo, mock := newMockRepo(t)
    created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

    orderRows := sqlmock.NewRows([]string{
        "id", "order_number", "table_id", "table_number", "status",
        "total_cents", "created_at", "ready_at", "delivered_at",
    }).AddRow(testOrderID, 42, 1, 3, "preparing", 60000, created, nil, nil)
    mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = ?").
        WithArgs(testOrderID).
        WillReturnRows(orderRows)

    itemRows := sqlmock.NewRows([]string{
        "id", "order_id", "menu_item_id", "name", "quantity", "price_cents", "instructions",
    }).AddRow(1, testOrderID, 10, "Phở Bò", 1, 60000, nil)
    mock.ExpectQuery("SELECT (.+) FROM order_items").
        WithArgs(testOrderID).
        WillReturnRows(itemRows)

    o, err := repo.GetByID(context.Background(), testOrderID)
    require.NoError(t, err)
    assert.Equal(t, model.StatusPreparing, o.Status)
    assert.Nil(t, o.ReadyAt)
    require.Len(t, o.Items, 1)
    assert.Equal(t, "Phở Bò", o.Items[0].Name)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = ?").
        WithArgs("missing").
        WillReturnRows(sqlmock.NewRows([]string{"id"}))

    _, err := repo.GetByID(context.Background(), "missing")
    assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCountActiveByTable(t *testing.T) {
    repo, mock := newMockRepo(t)

    mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders").
        WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

    n, err := repo.CountActiveByTable(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, 2, n)
}
