package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
)

func dueRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "property_id", "tenant_id", "period", "amount", "paid_amount", "status",
		"due_date", "paid_at", "method", "receipt_no", "created_at", "updated_at",
		"tenant_name", "room_number",
	}).AddRow("due-1", "prop-1", "tenant-1", "2026-08", 12000, 0, models.DueStatusPending,
		now, nil, nil, nil, now, now, "Asha Verma", "101")
}

func TestDueRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDueRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM dues d JOIN tenants t").
		WithArgs("prop-1", "PENDING").
		WillReturnRows(dueRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dues d JOIN tenants t ON t.id = d.tenant_id LEFT JOIN rooms rm ON rm.id = t.room_id WHERE 1=1 AND d.property_id = $1 AND d.status = $2")).
		WithArgs("prop-1", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	dues, total, err := repo.List(context.Background(), models.DueFilter{PropertyID: "prop-1", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, dues, 1)
	assert.Equal(t, "due-1", dues[0].ID)
	assert.Equal(t, "Asha Verma", dues[0].TenantName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueRepositoryListOverdueOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDueRepository(db)

	mock.ExpectQuery(`d\.status <> 'PAID' AND d\.due_date < NOW\(\)`).
		WillReturnRows(dueRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.DueFilter{OverdueOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDueRepository(db)

	mock.ExpectExec("INSERT INTO dues").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	due := &models.Due{
		PropertyID: "prop-1",
		TenantID:   "tenant-1",
		Period:     "2026-08",
		Amount:     12000,
		Status:     models.DueStatusPending,
		DueDate:    time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), due)
	require.NoError(t, err)
	assert.NotEmpty(t, due.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueRepositoryExistsForPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDueRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("tenant-1", "2026-08").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForPeriod(context.Background(), "tenant-1", "2026-08")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueRepositoryRecordPayment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDueRepository(db)

	mock.ExpectExec("UPDATE dues SET paid_amount").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	method := models.PaymentMethodUPI
	receipt := "RCPT-2026-08-due-1"
	paidAt := time.Now().UTC()
	due := &models.Due{
		ID:         "due-1",
		PaidAmount: 12000,
		Status:     models.DueStatusPaid,
		PaidAt:     &paidAt,
		Method:     &method,
		ReceiptNo:  &receipt,
	}
	err := repo.RecordPayment(context.Background(), due)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
