package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmd/pharmd/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const walletCols = `id, patient_id, balance, created_at, updated_at`

func scanWallet(row pgx.Row) (*Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.PatientID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *repoPG) Create(ctx context.Context, w *Wallet) error {
	w.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO wallets (id, patient_id, balance)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		w.ID, w.PatientID, w.Balance).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *repoPG) getByPatient(ctx context.Context, patientID uuid.UUID, suffix string) (*Wallet, error) {
	w, err := scanWallet(r.conn(ctx).QueryRow(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE patient_id = $1`+suffix, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Wallet, error) {
	return r.getByPatient(ctx, patientID, ``)
}

func (r *repoPG) GetByPatientForUpdate(ctx context.Context, patientID uuid.UUID) (*Wallet, error) {
	return r.getByPatient(ctx, patientID, ` FOR UPDATE`)
}

func (r *repoPG) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE wallets SET balance = $2, updated_at = NOW() WHERE id = $1`, id, balance)
	return err
}

type txRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository { return &txRepoPG{pool: pool} }

func (r *txRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const txCols = `id, wallet_id, type, amount, description, reference_id, balance_before, balance_after, created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Description,
		&t.ReferenceID, &t.BalanceBefore, &t.BalanceAfter, &t.CreatedAt)
	return &t, err
}

func (r *txRepoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO transactions (id, wallet_id, type, amount, description, reference_id, balance_before, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		t.ID, t.WalletID, t.Type, t.Amount, t.Description,
		t.ReferenceID, t.BalanceBefore, t.BalanceAfter).Scan(&t.CreatedAt)
}

func (r *txRepoPG) ListByWallet(ctx context.Context, walletID uuid.UUID, typeFilter TransactionType, limit, offset int) ([]*Transaction, int, error) {
	where := ` WHERE wallet_id = $1 AND ($2 = '' OR type = $2)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions`+where, walletID, string(typeFilter)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+txCols+` FROM transactions`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		walletID, string(typeFilter), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *txRepoPG) ListRecent(ctx context.Context, walletID uuid.UUID, n int) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+txCols+` FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`,
		walletID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *txRepoPG) Totals(ctx context.Context, walletID uuid.UUID) (*Totals, error) {
	var t Totals
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0),
		       COUNT(*)
		FROM transactions WHERE wallet_id = $1`, walletID).Scan(&t.Credits, &t.Debits, &t.Count)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
