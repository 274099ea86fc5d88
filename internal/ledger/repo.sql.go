package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/platform/db"
)

// PostgresRepository persists companies, charts and journals. Account
// and entry writes replace the affected rows wholesale, matching the
// snapshot contract of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, fiscal_year_start FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.FiscalYearStart); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *PostgresRepository) GetCompany(ctx context.Context, id uuid.UUID) (Company, error) {
	var company Company
	err := r.pool.QueryRow(ctx, `SELECT id, name, fiscal_year_start FROM companies WHERE id=$1`, id).
		Scan(&company.ID, &company.Name, &company.FiscalYearStart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}
	accounts, err := r.listAccounts(ctx, id)
	if err != nil {
		return Company{}, err
	}
	entries, err := r.listEntries(ctx, id)
	if err != nil {
		return Company{}, err
	}
	company.Accounts = accounts
	company.Entries = entries
	return company, nil
}

func (r *PostgresRepository) CreateCompany(ctx context.Context, company Company) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO companies (id, name, fiscal_year_start) VALUES ($1,$2,$3)`,
			company.ID, company.Name, company.FiscalYearStart)
		if err != nil {
			return err
		}
		return insertAccounts(ctx, tx, company.ID, company.Accounts)
	})
}

// ReplaceAccounts swaps the company's chart in one transaction.
// Postings reference accounts without a foreign key, so the
// delete-and-reinsert does not disturb existing entries; the service
// layer guards against removing a posted-to account.
func (r *PostgresRepository) ReplaceAccounts(ctx context.Context, companyID uuid.UUID, accounts []Account) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE company_id=$1`, companyID); err != nil {
			return err
		}
		return insertAccounts(ctx, tx, companyID, accounts)
	})
}

func (r *PostgresRepository) AppendEntries(ctx context.Context, companyID uuid.UUID, entries []JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		for _, entry := range entries {
			if err := insertEntry(ctx, tx, companyID, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) UpdateEntry(ctx context.Context, companyID uuid.UUID, entry JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1 AND company_id=$2`, entry.ID, companyID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrEntryNotFound
		}
		return insertEntry(ctx, tx, companyID, entry)
	})
}

func (r *PostgresRepository) SetEntryDeleted(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID, deleted bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE journal_entries SET is_deleted=$3, updated_at=NOW() WHERE id=$1 AND company_id=$2`,
		entryID, companyID, deleted)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteClosingEntries(ctx context.Context, companyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM journal_entries WHERE company_id=$1 AND is_closing`, companyID)
	return err
}

func (r *PostgresRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if r == nil || r.pool == nil {
		return errors.New("ledger: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, fn)
}

func (r *PostgresRepository) listAccounts(ctx context.Context, companyID uuid.UUID) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, description, nature, kind, parent_id, is_contra, income_class, cash_flow_class
FROM accounts WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Nature, &a.Kind, &a.ParentID, &a.IsContra, &a.IncomeClass, &a.CashFlowClass); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresRepository) listEntries(ctx context.Context, companyID uuid.UUID) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, date, description, is_deleted, is_closing
FROM journal_entries WHERE company_id=$1 ORDER BY date, created_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Description, &e.IsDeleted, &e.IsClosing); err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.pool.Query(ctx, `SELECT p.entry_id, p.account_id, p.side, p.amount
FROM postings p JOIN journal_entries e ON e.id = p.entry_id
WHERE e.company_id=$1 ORDER BY p.id`, companyID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var entryID, accountID uuid.UUID
		var side Side
		var amount decimal.Decimal
		if err := prows.Scan(&entryID, &accountID, &side, &amount); err != nil {
			return nil, err
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		entries[i].Postings = append(entries[i].Postings, Posting{AccountID: accountID, Side: side, Amount: amount})
	}
	return entries, prows.Err()
}

func insertAccounts(ctx context.Context, tx pgx.Tx, companyID uuid.UUID, accounts []Account) error {
	for _, a := range accounts {
		_, err := tx.Exec(ctx, `INSERT INTO accounts (id, company_id, code, name, description, nature, kind, parent_id, is_contra, income_class, cash_flow_class)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			a.ID, companyID, a.Code, a.Name, a.Description, a.Nature, a.Kind, a.ParentID, a.IsContra, a.IncomeClass, a.CashFlowClass)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, a.Code)
			}
			return err
		}
	}
	return nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, companyID uuid.UUID, entry JournalEntry) error {
	_, err := tx.Exec(ctx, `INSERT INTO journal_entries (id, company_id, date, description, is_deleted, is_closing)
VALUES ($1,$2,$3,$4,$5,$6)`, entry.ID, companyID, entry.Date, entry.Description, entry.IsDeleted, entry.IsClosing)
	if err != nil {
		return err
	}
	for _, p := range entry.Postings {
		if _, err := tx.Exec(ctx, `INSERT INTO postings (entry_id, account_id, side, amount) VALUES ($1,$2,$3,$4)`,
			entry.ID, p.AccountID, p.Side, p.Amount); err != nil {
			return err
		}
	}
	return nil
}
