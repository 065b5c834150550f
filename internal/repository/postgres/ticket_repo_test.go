package postgres

import (
	"context"
	"errors"
	"testing"

	"doorlist/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		ticketID string
		mock     func(mock sqlmock.Sqlmock)
		wantErr  error
	}{
		{
			name:     "pending ticket confirmed",
			ticketID: "tk-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", 2500, "pay_abc").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: nil,
		},
		{
			name:     "already confirmed",
			ticketID: "tk-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", 2500, "pay_abc").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("tk-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:     "unknown ticket",
			ticketID: "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("missing", 2500, "pay_abc").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("missing").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewTicketRepository(db)
			err = repo.ConfirmPayment(ctx, tt.ticketID, 2500, "pay_abc")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketRepository_UpdateStatusIf(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "transition applied",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", string(domain.TicketStatusConfirmed), string(domain.TicketStatusCheckedIn)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: nil,
		},
		{
			name: "state changed underneath",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs("tk-1", string(domain.TicketStatusConfirmed), string(domain.TicketStatusCheckedIn)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("tk-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewTicketRepository(db)
			err = repo.UpdateStatusIf(ctx, "tk-1", domain.TicketStatusConfirmed, domain.TicketStatusCheckedIn)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketRepository_SumLiveQuantityForGuest(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\)`).
		WithArgs("tier-1", "guest@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(3))

	repo := NewTicketRepository(db)
	total, err := repo.SumLiveQuantityForGuest(ctx, "tier-1", "guest@example.com", "")
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
