package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Memory é o driver em memória (STORE_DRIVER=memory). Um único mutex serializa
// todas as operações; dentro de InTx o lock fica preso até fn terminar.
type Memory struct {
	mu sync.Mutex
	st memState
}

func NewMemory() *Memory {
	return &Memory{st: newMemState()}
}

func (m *Memory) Accounts() AccountStore { return memAccounts{r: m} }
func (m *Memory) Bets() BetStore         { return memBets{r: m} }

// InTx tira um snapshot do estado e o restaura se fn falhar
func (m *Memory) InTx(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(memTx{st: &m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *Memory) run(fn func(st *memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&m.st)
}

// memTx é a visão do estado usada dentro de InTx; o lock já está com o chamador
type memTx struct{ st *memState }

func (t memTx) Accounts() AccountStore { return memAccounts{r: t} }
func (t memTx) Bets() BetStore         { return memBets{r: t} }

func (t memTx) InTx(_ context.Context, fn func(tx Store) error) error { return fn(t) }

func (t memTx) run(fn func(st *memState) error) error { return fn(t.st) }

type runner interface {
	run(fn func(st *memState) error) error
}

type memState struct {
	accounts map[string]Account
	bets     map[string]Bet
	seq      map[string]int64 // ordem de inserção, desempate do histórico
	next     int64
}

func newMemState() memState {
	return memState{
		accounts: make(map[string]Account),
		bets:     make(map[string]Bet),
		seq:      make(map[string]int64),
	}
}

func (s *memState) clone() memState {
	c := memState{
		accounts: make(map[string]Account, len(s.accounts)),
		bets:     make(map[string]Bet, len(s.bets)),
		seq:      make(map[string]int64, len(s.seq)),
		next:     s.next,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.bets {
		c.bets[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

type memAccounts struct{ r runner }

func (a memAccounts) GetOrCreate(ctx context.Context, userID string, opening decimal.Decimal) (Account, error) {
	var acc Account
	err := a.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur, ok := st.accounts[userID]
		if !ok {
			cur = Account{UserID: userID, Balance: opening, CreatedAt: time.Now().UTC()}
			st.accounts[userID] = cur
		}
		acc = cur
		return nil
	})
	return acc, err
}

func (a memAccounts) Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := a.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur, ok := st.accounts[userID]
		if !ok {
			return ErrNotFound
		}
		if cur.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		cur.Balance = cur.Balance.Sub(amount)
		st.accounts[userID] = cur
		bal = cur.Balance
		return nil
	})
	return bal, err
}

func (a memAccounts) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := a.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur, ok := st.accounts[userID]
		if !ok {
			return ErrNotFound
		}
		cur.Balance = cur.Balance.Add(amount)
		st.accounts[userID] = cur
		bal = cur.Balance
		return nil
	})
	return bal, err
}

type memBets struct{ r runner }

func (b memBets) Create(ctx context.Context, bet *Bet) error {
	return b.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := st.accounts[bet.UserID]; !ok {
			return ErrNotFound
		}
		if bet.CreatedAt.IsZero() {
			bet.CreatedAt = time.Now().UTC()
		}
		st.next++
		st.bets[bet.ID] = *bet
		st.seq[bet.ID] = st.next
		return nil
	})
}

func (b memBets) GetPending(ctx context.Context, userID, betID string) (*Bet, error) {
	var out *Bet
	err := b.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bet, ok := st.bets[betID]
		if !ok || bet.UserID != userID || bet.Status != StatusPending {
			return ErrNotFound
		}
		out = &bet
		return nil
	})
	return out, err
}

func (b memBets) Resolve(ctx context.Context, userID, betID string, status Status, at time.Time) (*Bet, error) {
	var out *Bet
	err := b.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bet, ok := st.bets[betID]
		if !ok || bet.UserID != userID || bet.Status != StatusPending {
			return ErrNotFound
		}
		settled := at
		bet.Status = status
		bet.SettledAt = &settled
		st.bets[betID] = bet
		out = &bet
		return nil
	})
	return out, err
}

func (b memBets) List(ctx context.Context, f BetFilter) ([]Bet, int, error) {
	var (
		page  []Bet
		total int
	)
	err := b.r.run(func(st *memState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var matched []Bet
		for _, bet := range st.bets {
			if bet.UserID != f.UserID {
				continue
			}
			if f.Status != "" && bet.Status != f.Status {
				continue
			}
			matched = append(matched, bet)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return st.seq[matched[i].ID] > st.seq[matched[j].ID]
		})

		total = len(matched)
		page = []Bet{}
		if f.Offset >= total {
			return nil
		}
		end := total
		if f.Limit > 0 && f.Offset+f.Limit < end {
			end = f.Offset + f.Limit
		}
		page = append(page, matched[f.Offset:end]...)
		return nil
	})
	return page, total, err
}
