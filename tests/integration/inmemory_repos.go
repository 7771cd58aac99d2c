package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"

	"github.com/shopspring/decimal"
)

// inMemoryStore backs both repositories with one mutex so that
// CreditAndComplete observes the same atomicity the SQL transaction gives
// the real implementation: status flip and balance credit commit together,
// and racing triggers serialize on the lock.
type inMemoryStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	txns  map[string]*domain.Transaction
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{
		users: make(map[string]*domain.User),
		txns:  make(map[string]*domain.Transaction),
	}
}

func (s *inMemoryStore) addUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *inMemoryStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u.WalletBalance
	}
	return decimal.Zero
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	store *inMemoryStore
}

func newInMemoryTransactionRepo(store *inMemoryStore) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{store: store}
}

func (r *inMemoryTransactionRepo) CreatePending(ctx context.Context, txn *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *txn
	r.store.txns[txn.TxRef] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByTxRef(ctx context.Context, txRef string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[txRef]
	if !ok {
		return nil, nil
	}
	cp := *txn
	return &cp, nil
}

func (r *inMemoryTransactionRepo) CreditAndComplete(ctx context.Context, txRef, userID string, amount decimal.Decimal, method string) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	txn, ok := r.store.txns[txRef]
	if ok {
		if txn.Status == domain.TransactionStatusCompleted {
			return decimal.Zero, ports.ErrAlreadyCompleted
		}
	} else {
		txn = &domain.Transaction{
			TxRef:         txRef,
			UserID:        userID,
			Type:          domain.TransactionTypeDeposit,
			Amount:        amount,
			Currency:      domain.Currency,
			PaymentMethod: method,
			CreatedAt:     now,
		}
		r.store.txns[txRef] = txn
	}

	user, ok := r.store.users[userID]
	if !ok {
		return decimal.Zero, ports.ErrUserMissing
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.Amount = amount
	txn.CompletedAt = &now
	user.WalletBalance = user.WalletBalance.Add(amount)
	user.LastUpdated = now
	return user.WalletBalance, nil
}

func (r *inMemoryTransactionRepo) MarkFailed(ctx context.Context, txRef string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if txn, ok := r.store.txns[txRef]; ok && txn.Status == domain.TransactionStatusPending {
		txn.Status = domain.TransactionStatusFailed
	}
	return nil
}

func (r *inMemoryTransactionRepo) ListForUser(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var all []domain.Transaction
	for _, txn := range r.store.txns {
		if txn.UserID == params.UserID {
			all = append(all, *txn)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].TxRef > all[j].TxRef
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	start := params.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], "", nil
}

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	store *inMemoryStore
}

func newInMemoryUserRepo(store *inMemoryStore) *inMemoryUserRepo {
	return &inMemoryUserRepo{store: store}
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, ports.ErrUserMissing
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) UpdateEmail(ctx context.Context, id, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return ports.ErrUserMissing
	}
	u.Email = email
	u.LastUpdated = time.Now().UTC()
	return nil
}

// --- Fake Payment Gateway ---

// fakeGateway stands in for Chapa. Verify answers from the results map keyed
// by tx_ref; unknown refs get a failed result, matching how the provider
// answers for references it never saw.
type fakeGateway struct {
	mu          sync.Mutex
	results     map[string]*ports.VerifyResult
	initialized []ports.InitializeRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{results: make(map[string]*ports.VerifyResult)}
}

func (g *fakeGateway) Initialize(ctx context.Context, req ports.InitializeRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = append(g.initialized, req)
	return "https://checkout.chapa.co/checkout/payment/" + req.TxRef, nil
}

func (g *fakeGateway) Verify(ctx context.Context, txRef string) (*ports.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if res, ok := g.results[txRef]; ok {
		cp := *res
		return &cp, nil
	}
	return &ports.VerifyResult{Status: "failed", Currency: domain.Currency}, nil
}

func (g *fakeGateway) settle(txRef string, amount decimal.Decimal, metadata map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results[txRef] = &ports.VerifyResult{
		Status:   "success",
		Amount:   amount,
		Currency: domain.Currency,
		Metadata: metadata,
	}
}

func (g *fakeGateway) lastInitialized() *ports.InitializeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.initialized) == 0 {
		return nil
	}
	cp := g.initialized[len(g.initialized)-1]
	return &cp
}
