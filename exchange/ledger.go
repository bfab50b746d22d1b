/*
ledger.go - Credit movement primitives

PURPOSE:
  The Ledger owns every balance change in the system. It exposes a
  two-sided Transfer built on Credit/Debit primitives, plus the one-time
  seed Grant a new user receives. Each operation adjusts the balance and
  appends an audit entry; callers that need several operations to commit
  together run them inside TxStore.WithTx.

TRANSFER CONTRACT:
  Transfer(from, to, amount):
    - amount must be positive
    - fails with ErrInsufficientCredit when from's balance < amount,
      performing no mutation
    - debit and credit apply together or not at all when run inside a
      transactional unit; there is no observable state where only one
      side changed

IDEMPOTENCY:
  Entry idempotency keys derive from the reference (session id) and the
  direction, so replaying a booking's transfer cannot double-move credits:
  the second append fails with ErrDuplicateEntry and rolls the unit back.
*/
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger performs credit movements against a Store. It is stateless;
// the store passed per call decides whether the operation is part of a
// larger atomic unit.
type Ledger struct {
	now func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Transfer moves amount from one user to another, appending a balanced
// debit/credit entry pair that shares ref as its reference.
func (l *Ledger) Transfer(ctx context.Context, s Store, from, to UserID, amount Credits, ref, reason string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer amount must be positive, got %v", amount.Value)
	}
	if from == to {
		return fmt.Errorf("transfer endpoints must differ")
	}

	if err := l.Debit(ctx, s, from, amount, ref, reason); err != nil {
		return err
	}
	return l.Credit(ctx, s, to, amount, ref, reason)
}

// Debit removes amount from the user's balance. Fails with
// ErrInsufficientCredit (carrying the available balance) rather than
// letting the balance go negative.
func (l *Ledger) Debit(ctx context.Context, s Store, id UserID, amount Credits, ref, reason string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount must be positive, got %v", amount.Value)
	}

	if err := s.AdjustBalance(ctx, id, amount.Neg()); err != nil {
		if errors.Is(err, ErrInsufficientCredit) {
			u, lookupErr := s.GetUser(ctx, id)
			if lookupErr == nil && u != nil {
				return &InsufficientCreditError{UserID: id, Available: u.Balance, Requested: amount}
			}
		}
		return err
	}

	return s.AppendEntry(ctx, LedgerEntry{
		ID:             EntryID(uuid.NewString()),
		UserID:         id,
		Delta:          amount.Neg(),
		Type:           EntryDebit,
		ReferenceID:    ref,
		Reason:         reason,
		IdempotencyKey: entryKey(ref, EntryDebit, id),
		CreatedAt:      l.now().UTC(),
	})
}

// Credit adds amount to the user's balance.
func (l *Ledger) Credit(ctx context.Context, s Store, id UserID, amount Credits, ref, reason string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive, got %v", amount.Value)
	}

	if err := s.AdjustBalance(ctx, id, amount); err != nil {
		return err
	}

	return s.AppendEntry(ctx, LedgerEntry{
		ID:             EntryID(uuid.NewString()),
		UserID:         id,
		Delta:          amount,
		Type:           EntryCredit,
		ReferenceID:    ref,
		Reason:         reason,
		IdempotencyKey: entryKey(ref, EntryCredit, id),
		CreatedAt:      l.now().UTC(),
	})
}

// Grant seeds a user's balance outside any transfer, e.g. the signup
// grant every new marketplace account receives.
func (l *Ledger) Grant(ctx context.Context, s Store, id UserID, amount Credits, reason string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("grant amount must be positive, got %v", amount.Value)
	}

	if err := s.AdjustBalance(ctx, id, amount); err != nil {
		return err
	}

	return s.AppendEntry(ctx, LedgerEntry{
		ID:             EntryID(uuid.NewString()),
		UserID:         id,
		Delta:          amount,
		Type:           EntryGrant,
		Reason:         reason,
		IdempotencyKey: entryKey("signup-"+string(id), EntryGrant, id),
		CreatedAt:      l.now().UTC(),
	})
}

func entryKey(ref string, typ EntryType, id UserID) string {
	return fmt.Sprintf("%s-%s-%s", ref, typ, id)
}
