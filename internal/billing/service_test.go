package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"homebiz_backend/internal/model"
)

// fakeRepository mirrors the durable store's contract, including the
// conditional settle: under concurrent callers at most one wins the
// pending→terminal transition.
type fakeRepository struct {
	mu            sync.Mutex
	transactions  map[string]*model.PaymentTransaction // keyed by session id
	subscriptions map[uint]*model.Subscription
	upsertCount   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		transactions:  make(map[string]*model.PaymentTransaction),
		subscriptions: make(map[uint]*model.Subscription),
	}
}

func (r *fakeRepository) CreateTransaction(txn *model.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *txn
	r.transactions[txn.SessionID] = &cp
	return nil
}

func (r *fakeRepository) GetTransactionBySession(sessionID string, userID uint) (*model.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.transactions[sessionID]
	if !ok || txn.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *fakeRepository) SettleTransaction(sessionID string, to model.PaymentStatus, settledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.transactions[sessionID]
	if !ok || txn.Status != model.PaymentStatusPending {
		return false, nil
	}
	txn.Status = to
	txn.SettledAt = &settledAt
	return true, nil
}

func (r *fakeRepository) UpsertSubscription(sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.subscriptions[sub.UserID] = &cp
	r.upsertCount++
	return nil
}

func (r *fakeRepository) GetSubscriptionByUser(userID uint) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscriptions[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeRepository) transaction(sessionID string) *model.PaymentTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn := r.transactions[sessionID]
	if txn == nil {
		return nil
	}
	cp := *txn
	return &cp
}

type fakeGateway struct {
	mu         sync.Mutex
	status     *SessionStatus
	statusErr  error
	createErr  error
	lastParams CreateSessionParams
	getCalls   int
}

func (g *fakeGateway) CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.lastParams = params
	return &CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil
}

func (g *fakeGateway) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	cp := *g.status
	return &cp, nil
}

func paidStatus() *SessionStatus {
	return &SessionStatus{
		Status:        SessionStatusComplete,
		PaymentStatus: PaymentStatusPaid,
		AmountTotal:   1999,
		Currency:      "sgd",
	}
}

func newTestService(repo Repository, gw CheckoutGateway) *Service {
	return NewService(repo, gw, DefaultCatalog())
}

func TestStartCheckoutCreatesPendingTransaction(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{}
	svc := newTestService(repo, gw)

	result, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)
	assert.Equal(t, "cs_test_123", result.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", result.CheckoutURL)

	txn := repo.transaction("cs_test_123")
	assert.NotNil(t, txn)
	assert.Equal(t, model.PaymentStatusPending, txn.Status)
	assert.Equal(t, uint(7), txn.UserID)
	assert.Equal(t, "basic", txn.PackageID)
	assert.Equal(t, 19.99, txn.Amount)
	assert.Equal(t, "sgd", txn.Currency)
	assert.NotEmpty(t, txn.TransactionID)

	// Callback URLs derive from the caller's origin.
	assert.Equal(t, int64(1999), gw.lastParams.Amount)
	assert.Equal(t, "https://homebiz.example/subscription/success?session_id={CHECKOUT_SESSION_ID}", gw.lastParams.SuccessURL)
	assert.Equal(t, "https://homebiz.example/subscription/cancel", gw.lastParams.CancelURL)
	assert.Equal(t, "7", gw.lastParams.Metadata["user_id"])
	assert.Equal(t, "basic", gw.lastParams.Metadata["package_id"])
}

func TestStartCheckoutUnknownPackage(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeGateway{})

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "enterprise", "https://homebiz.example")
	assert.ErrorIs(t, err, ErrPackageNotFound)
	assert.Empty(t, repo.transactions)
}

func TestStartCheckoutBuyerForbidden(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeGateway{})

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleBuyer, "basic", "https://homebiz.example")
	assert.ErrorIs(t, err, ErrSellerOnly)
	assert.Empty(t, repo.transactions)
}

func TestStartCheckoutInvalidOrigin(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeGateway{})

	for _, origin := range []string{"", "not-a-url", "/relative/path"} {
		_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", origin)
		assert.ErrorIs(t, err, ErrInvalidOrigin)
	}
	assert.Empty(t, repo.transactions)
}

func TestStartCheckoutGatewayDownLeavesNoLedgerEntry(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{createErr: ErrPaymentUnavailable}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.Empty(t, repo.transactions, "no pending row without a confirmed gateway session")
}

func TestCheckoutStatusSettlesOnce(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.Equal(t, PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, int64(1999), result.AmountTotal)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusCompleted, txn.Status)

	sub, err := repo.GetSubscriptionByUser(7)
	assert.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "basic", sub.PackageID)
	assert.Equal(t, now, sub.StartedAt)
	assert.Equal(t, now.AddDate(0, 0, 30), sub.ExpiresAt)
}

func TestCheckoutStatusIdempotent(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	first, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.True(t, first.Activated)

	subAfterFirst, _ := repo.GetSubscriptionByUser(7)

	for i := 0; i < 5; i++ {
		result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
		assert.NoError(t, err)
		assert.False(t, result.Activated, "repeat call %d must not re-grant", i+1)
		assert.Equal(t, first.Status, result.Status)
		assert.Equal(t, first.PaymentStatus, result.PaymentStatus)
	}

	assert.Equal(t, 1, repo.upsertCount, "exactly one entitlement upsert")
	subAfterAll, _ := repo.GetSubscriptionByUser(7)
	assert.Equal(t, subAfterFirst, subAfterAll, "subscription record identical regardless of N")

	// Each poll still refreshed the gateway view.
	assert.Equal(t, 6, gw.getCalls)
}

func TestCheckoutStatusConcurrentReconciles(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	activations := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
			if err == nil {
				activations <- result.Activated
			}
		}()
	}
	wg.Wait()
	close(activations)

	won := 0
	for activated := range activations {
		if activated {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one caller wins the transition")
	assert.Equal(t, 1, repo.upsertCount, "exactly one expiry window recorded")
}

func TestCheckoutStatusForeignSession(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	// Seller B probes seller A's session: NotFound, not Forbidden.
	_, err = svc.CheckoutStatus(context.Background(), 8, "cs_test_123")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusPending, txn.Status)
}

func TestCheckoutStatusGatewayDownThenRetry(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	gw.statusErr = ErrPaymentUnavailable
	_, err = svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.ErrorIs(t, err, ErrPaymentUnavailable)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusPending, txn.Status, "local state untouched on gateway failure")
	assert.Equal(t, 0, repo.upsertCount)

	// A later retry still transitions correctly.
	gw.statusErr = nil
	result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.Equal(t, model.PaymentStatusCompleted, repo.transaction("cs_test_123").Status)
}

func TestCheckoutStatusExpiredSessionFails(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: &SessionStatus{
		Status:        SessionStatusExpired,
		PaymentStatus: PaymentStatusUnpaid,
		AmountTotal:   1999,
		Currency:      "sgd",
	}}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.False(t, result.Activated)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusFailed, txn.Status)
	assert.Equal(t, 0, repo.upsertCount, "no entitlement for an expired session")
}

func TestAmountCapturedAtCheckoutNeverChanges(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	// Catalog price changes after the checkout was priced.
	repriced := NewCatalog(Package{
		ID:           "basic",
		Name:         "Basic Plan",
		Price:        29.99,
		Currency:     "sgd",
		DurationDays: 30,
	})
	svcAfterEdit := NewService(repo, gw, repriced)

	_, err = svcAfterEdit.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, 19.99, txn.Amount, "ledger keeps the amount captured at creation")
	assert.Equal(t, "sgd", txn.Currency)
}

func TestHasActiveSubscriptionGating(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// No completed transaction yet.
	active, err := svc.HasActiveSubscription(7)
	assert.NoError(t, err)
	assert.False(t, active)

	_, err = svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)
	_, err = svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)

	active, err = svc.HasActiveSubscription(7)
	assert.NoError(t, err)
	assert.True(t, active, "active immediately after settlement")

	// Clock passes the recorded expiry; no sweep needed to deny access.
	svc.now = func() time.Time { return now.AddDate(0, 0, 31) }
	active, err = svc.HasActiveSubscription(7)
	assert.NoError(t, err)
	assert.False(t, active)
}

func TestCurrentSubscriptionNone(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakeGateway{})

	sub, err := svc.CurrentSubscription(7)
	assert.NoError(t, err)
	assert.Nil(t, sub)
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakeGateway{status: paidStatus()})

	_, err := svc.CheckoutStatus(context.Background(), 7, "cs_unknown")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.False(t, errors.Is(err, ErrPaymentUnavailable))
}

func TestCheckoutStatusCatalogDriftKeepsRowPending(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: paidStatus()}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	// A redeploy dropped the purchased package from the catalog before the
	// client polled. The reconcile must fail without settling the row.
	drifted := NewService(repo, gw, NewCatalog(
		Package{ID: "premium", Name: "Premium", Price: 39.99, Currency: "sgd", DurationDays: 30},
	))
	_, err = drifted.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.Error(t, err)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusPending, txn.Status, "failed reconcile must leave the row pending")
	assert.Equal(t, 0, repo.upsertCount)

	// Once the package is back, a retry still grants.
	result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.True(t, result.Activated)

	sub, err := repo.GetSubscriptionByUser(7)
	assert.NoError(t, err)
	assert.Equal(t, "basic", sub.PackageID)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
}

func TestCheckoutStatusOpenSessionLeavesPending(t *testing.T) {
	repo := newFakeRepository()
	gw := &fakeGateway{status: &SessionStatus{
		Status:        SessionStatusOpen,
		PaymentStatus: PaymentStatusUnpaid,
	}}
	svc := newTestService(repo, gw)

	_, err := svc.StartCheckout(context.Background(), 7, model.RoleSeller, "basic", "https://homebiz.example")
	assert.NoError(t, err)

	result, err := svc.CheckoutStatus(context.Background(), 7, "cs_test_123")
	assert.NoError(t, err)
	assert.False(t, result.Activated)
	assert.Equal(t, SessionStatusOpen, result.Status)

	txn := repo.transaction("cs_test_123")
	assert.Equal(t, model.PaymentStatusPending, txn.Status)
	assert.Equal(t, 0, repo.upsertCount)
}
