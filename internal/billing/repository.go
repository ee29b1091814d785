package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homebiz_backend/internal/model"
)

// Repository is the durable store behind the ledger and the entitlement
// record. SettleTransaction is the only mutation of a ledger row after
// creation and it is conditional: callers learn whether they won the
// pending→terminal transition.
type Repository interface {
	CreateTransaction(txn *model.PaymentTransaction) error
	GetTransactionBySession(sessionID string, userID uint) (*model.PaymentTransaction, error)
	SettleTransaction(sessionID string, to model.PaymentStatus, settledAt time.Time) (bool, error)
	UpsertSubscription(sub *model.Subscription) error
	GetSubscriptionByUser(userID uint) (*model.Subscription, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateTransaction(txn *model.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

func (r *gormRepository) GetTransactionBySession(sessionID string, userID uint) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SettleTransaction moves a pending row to a terminal status. The status
// guard in the WHERE clause makes the transition a single compare-and-swap:
// when two reconcile calls race, exactly one sees RowsAffected == 1.
func (r *gormRepository) SettleTransaction(sessionID string, to model.PaymentStatus, settledAt time.Time) (bool, error) {
	res := r.db.Model(&model.PaymentTransaction{}).
		Where("session_id = ? AND status = ?", sessionID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     to,
			"settled_at": settledAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormRepository) UpsertSubscription(sub *model.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"package_id",
			"status",
			"started_at",
			"expires_at",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *gormRepository) GetSubscriptionByUser(userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
