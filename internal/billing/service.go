package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"homebiz_backend/internal/model"
)

// Service owns the subscription entitlement lifecycle: checkout initiation,
// payment status reconciliation and the access gate the listing endpoints
// check before publishing.
type Service struct {
	repo    Repository
	gateway CheckoutGateway
	catalog *Catalog
	now     func() time.Time
}

func NewService(repo Repository, gateway CheckoutGateway, catalog *Catalog) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		catalog: catalog,
		now:     time.Now,
	}
}

// Packages returns the sellable catalog.
func (s *Service) Packages() []Package {
	return s.catalog.List()
}

// Package looks up a single catalog entry.
func (s *Service) Package(id string) (Package, bool) {
	return s.catalog.Get(id)
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// StartCheckout opens a hosted checkout session for the given package and
// records the pending ledger entry. The ledger write happens only after the
// gateway confirmed the session, so a gateway failure leaves no orphaned
// pending row behind.
func (s *Service) StartCheckout(ctx context.Context, userID uint, role model.UserRole, packageID, originURL string) (*CheckoutResult, error) {
	if role != model.RoleSeller {
		return nil, ErrSellerOnly
	}

	pkg, ok := s.catalog.Get(packageID)
	if !ok {
		return nil, ErrPackageNotFound
	}

	origin, err := url.Parse(originURL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, ErrInvalidOrigin
	}
	base := strings.TrimRight(originURL, "/")

	sess, err := s.gateway.CreateSession(ctx, CreateSessionParams{
		Amount:      pkg.PriceMinorUnits(),
		Currency:    pkg.Currency,
		ProductName: pkg.Name,
		SuccessURL:  base + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   base + "/subscription/cancel",
		Metadata: map[string]string{
			"type":       string(model.PaymentTypeSubscription),
			"user_id":    strconv.FormatUint(uint64(userID), 10),
			"package_id": pkg.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	txn := &model.PaymentTransaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		SessionID:     sess.ID,
		Type:          model.PaymentTypeSubscription,
		PackageID:     pkg.ID,
		Amount:        pkg.Price,
		Currency:      pkg.Currency,
		Status:        model.PaymentStatusPending,
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return nil, err
	}

	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

type StatusResult struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`

	// Activated is set on the one call that won the pending→completed
	// transition and granted the entitlement. Not part of the response
	// body; callers use it for side effects like notification mail.
	Activated bool `json:"-"`
}

// CheckoutStatus reconciles the local ledger and entitlement state with the
// gateway's authoritative view of a session. It is safe to call any number
// of times: the pending→terminal transition is a conditional update, so at
// most one call per session performs the ledger and entitlement writes.
// Every call returns the freshly queried gateway status.
func (s *Service) CheckoutStatus(ctx context.Context, userID uint, sessionID string) (*StatusResult, error) {
	txn, err := s.repo.GetTransactionBySession(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	st, err := s.gateway.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Status:        st.Status,
		PaymentStatus: st.PaymentStatus,
		AmountTotal:   st.AmountTotal,
		Currency:      st.Currency,
	}

	if txn.IsTerminal() {
		return result, nil
	}

	switch {
	case st.PaymentStatus == PaymentStatusPaid:
		// Expiry comes from the package recorded on the original
		// transaction, not from anything request-supplied. Resolved before
		// the ledger transition: if the package vanished from the catalog
		// the row stays pending and a later reconcile can still grant.
		pkg, ok := s.catalog.Get(txn.PackageID)
		if !ok {
			return nil, fmt.Errorf("package %q missing from catalog", txn.PackageID)
		}
		now := s.now()
		won, err := s.repo.SettleTransaction(sessionID, model.PaymentStatusCompleted, now)
		if err != nil {
			return nil, err
		}
		if won {
			sub := &model.Subscription{
				UserID:    txn.UserID,
				PackageID: pkg.ID,
				Status:    model.SubscriptionStatusActive,
				StartedAt: now,
				ExpiresAt: now.AddDate(0, 0, pkg.DurationDays),
			}
			if err := s.repo.UpsertSubscription(sub); err != nil {
				return nil, err
			}
			result.Activated = true
		}

	case st.Status == SessionStatusExpired:
		if _, err := s.repo.SettleTransaction(sessionID, model.PaymentStatusFailed, s.now()); err != nil {
			return nil, err
		}

	case st.Status == SessionStatusOpen:
		// Oturum hâlâ açık, ödeme yok; kayıt pending kalır.
	}

	return result, nil
}

// CurrentSubscription returns the user's subscription record, or nil when
// none exists. Display only; access decisions go through
// HasActiveSubscription.
func (s *Service) CurrentSubscription(userID uint) (*model.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// HasActiveSubscription is the access gate. It always re-evaluates the
// expiry timestamp; there is no trusted cached flag and no background
// expiry job it could rely on.
func (s *Service) HasActiveSubscription(userID uint) (bool, error) {
	sub, err := s.CurrentSubscription(userID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.IsActiveAt(s.now()), nil
}
