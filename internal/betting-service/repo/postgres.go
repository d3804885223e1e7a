package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// queryable é satisfeito por *sql.DB e *sql.Tx
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implementa Store sobre database/sql + lib/pq.
// Quando db é nil a instância já está presa a uma transação.
type Postgres struct {
	db *sql.DB
	q  queryable
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db, q: db} }

func (p *Postgres) Accounts() AccountStore { return pgAccounts{q: p.q} }
func (p *Postgres) Bets() BetStore         { return pgBets{q: p.q} }

func (p *Postgres) InTx(ctx context.Context, fn func(tx Store) error) error {
	if p.db == nil {
		return fn(p)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&Postgres{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type pgAccounts struct{ q queryable }

func (a pgAccounts) GetOrCreate(ctx context.Context, userID string, opening decimal.Decimal) (Account, error) {
	if _, err := a.q.ExecContext(ctx,
		`INSERT INTO accounts(user_id, balance) VALUES($1, $2::numeric) ON CONFLICT (user_id) DO NOTHING`,
		userID, opening); err != nil {
		return Account{}, err
	}

	var acc Account
	err := a.q.QueryRowContext(ctx,
		`SELECT user_id, balance, created_at FROM accounts WHERE user_id=$1`, userID).
		Scan(&acc.UserID, &acc.Balance, &acc.CreatedAt)
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Debit usa UPDATE condicional: a checagem de saldo e o desconto são um único statement
func (a pgAccounts) Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := a.q.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance - $1::numeric, updated_at = NOW()
		 WHERE user_id=$2 AND balance >= $1::numeric
		 RETURNING balance`, amount, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		exists, xerr := a.exists(ctx, userID)
		if xerr != nil {
			return decimal.Zero, xerr
		}
		if !exists {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

func (a pgAccounts) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := a.q.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $1::numeric, updated_at = NOW()
		 WHERE user_id=$2
		 RETURNING balance`, amount, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

func (a pgAccounts) exists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := a.q.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE user_id=$1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

type pgBets struct{ q queryable }

const betColumns = `id, user_id, match_id, sport, amount, odds, selected_team, status,
	potential_winnings, home_team, away_team, start_time, snapshot_sport, created_at, settled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(row rowScanner) (*Bet, error) {
	var (
		b         Bet
		status    string
		startTime sql.NullTime
		settledAt sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.MatchID, &b.Sport, &b.Amount, &b.Odds, &b.SelectedTeam, &status,
		&b.PotentialWinnings, &b.Match.HomeTeam, &b.Match.AwayTeam, &startTime, &b.Match.Sport,
		&b.CreatedAt, &settledAt); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	if startTime.Valid {
		b.Match.StartTime = startTime.Time
	}
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	return &b, nil
}

func (s pgBets) Create(ctx context.Context, b *Bet) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	var start sql.NullTime
	if !b.Match.StartTime.IsZero() {
		start = sql.NullTime{Time: b.Match.StartTime, Valid: true}
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO bets(id, user_id, match_id, sport, amount, odds, selected_team, status,
			potential_winnings, home_team, away_team, start_time, snapshot_sport, created_at)
		 VALUES($1,$2,$3,$4,$5::numeric,$6::numeric,$7,$8,$9::numeric,$10,$11,$12,$13,$14)`,
		b.ID, b.UserID, b.MatchID, b.Sport, b.Amount, b.Odds, b.SelectedTeam, string(b.Status),
		b.PotentialWinnings, b.Match.HomeTeam, b.Match.AwayTeam, start, b.Match.Sport, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

func (s pgBets) GetPending(ctx context.Context, userID, betID string) (*Bet, error) {
	// id é UUID no banco; texto inválido simplesmente não existe
	if _, err := uuid.Parse(betID); err != nil {
		return nil, ErrNotFound
	}
	b, err := scanBet(s.q.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE id=$1 AND user_id=$2 AND status='pending'`, betID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Resolve faz compare-and-set em status='pending'
func (s pgBets) Resolve(ctx context.Context, userID, betID string, status Status, at time.Time) (*Bet, error) {
	if _, err := uuid.Parse(betID); err != nil {
		return nil, ErrNotFound
	}
	b, err := scanBet(s.q.QueryRowContext(ctx,
		`UPDATE bets SET status=$1, settled_at=$2
		 WHERE id=$3 AND user_id=$4 AND status='pending'
		 RETURNING `+betColumns, string(status), at, betID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s pgBets) List(ctx context.Context, f BetFilter) ([]Bet, int, error) {
	where := `WHERE user_id=$1`
	args := []any{f.UserID}
	if f.Status != "" {
		where += ` AND status=$2`
		args = append(args, string(f.Status))
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM bets %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		betColumns, where, n+1, n+2)
	rows, err := s.q.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}
