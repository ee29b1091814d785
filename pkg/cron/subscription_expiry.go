package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"homebiz_backend/internal/billing"
	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/email"
)

// StartSubscriptionExpiry runs the daily subscription housekeeping: flip
// stored statuses of lapsed subscriptions to expired and warn sellers whose
// subscriptions are about to lapse. The access gate never depends on this
// sweep; it only keeps displayed statuses honest.
func StartSubscriptionExpiry(db *gorm.DB, catalog *billing.Catalog, mailer *email.Service) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		sweepExpiredSubscriptions(db)
		sendExpiryWarnings(db, catalog, mailer)
	})
	if err != nil {
		log.Printf("Could not initialize subscription expiry cron: %v", err)
		return c
	}

	c.Start()
	return c
}

func sweepExpiredSubscriptions(db *gorm.DB) {
	res := db.Model(&model.Subscription{}).
		Where("status = ? AND expires_at <= ?", model.SubscriptionStatusActive, time.Now()).
		Update("status", model.SubscriptionStatusExpired)
	if res.Error != nil {
		log.Printf("Error sweeping expired subscriptions: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d subscriptions as expired", res.RowsAffected)
	}
}

func sendExpiryWarnings(db *gorm.DB, catalog *billing.Catalog, mailer *email.Service) {
	if mailer == nil {
		return
	}

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		windowStart := time.Now().AddDate(0, 0, days)
		windowEnd := windowStart.Add(24 * time.Hour)

		var subs []model.Subscription
		err := db.Where("status = ? AND expires_at >= ? AND expires_at < ?",
			model.SubscriptionStatusActive, windowStart, windowEnd).
			Preload("User").
			Find(&subs).Error
		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		for _, sub := range subs {
			packageName := sub.PackageID
			if pkg, ok := catalog.Get(sub.PackageID); ok {
				packageName = pkg.Name
			}

			err := mailer.SendSubscriptionExpiryWarning(sub.User.Email, email.SubscriptionExpiryWarningData{
				Name:        sub.User.Name,
				PackageName: packageName,
				ExpiresAt:   sub.ExpiresAt,
				DaysLeft:    days,
			})
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", sub.User.Email, err)
			} else {
				log.Printf("Sent expiry warning to %s for subscription expiring in %d days", sub.User.Email, days)
			}
		}
	}
}
