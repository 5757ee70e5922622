package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/models"
)

// LeadFilter narrows a lead listing beyond the access scope.
type LeadFilter struct {
	Status     string
	AssignedTo string
	Limit      int
	Offset     int
}

// LeadStore is the read side of the leads resource. Every query is
// parameterized by the caller's AccessScope so list and detail endpoints
// cannot diverge in what they expose.
type LeadStore struct{ DB *gorm.DB }

func NewLeadStore(db *gorm.DB) *LeadStore { return &LeadStore{DB: db} }

// ListLeads returns the leads visible under scope, most recent first.
func (s *LeadStore) ListLeads(ctx context.Context, scope authz.AccessScope, f LeadFilter) ([]models.Lead, error) {
	q := s.DB.WithContext(ctx).Model(&models.Lead{})
	q = scope.Apply(q)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var leads []models.Lead
	err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&leads).Error
	return leads, err
}

// GetLead fetches one lead under scope. Scope is applied in the query
// itself, so an out-of-scope id reads the same as a missing one here;
// callers distinguish via Gate.CanAccess when they need to.
func (s *LeadStore) GetLead(ctx context.Context, scope authz.AccessScope, id int64) (*models.Lead, bool, error) {
	var lead models.Lead
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Lead{}))
	err := q.Where("id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &lead, true, nil
}

// TradingAccountStore is the read side of the trading_accounts resource.
type TradingAccountStore struct{ DB *gorm.DB }

func NewTradingAccountStore(db *gorm.DB) *TradingAccountStore {
	return &TradingAccountStore{DB: db}
}

// ListTradingAccounts returns the accounts visible under scope, optionally
// restricted to one lead.
func (s *TradingAccountStore) ListTradingAccounts(ctx context.Context, scope authz.AccessScope, leadID int64, limit, offset int) ([]models.TradingAccount, error) {
	q := s.DB.WithContext(ctx).Model(&models.TradingAccount{})
	q = scope.Apply(q)
	if leadID > 0 {
		q = q.Where("lead_id = ?", leadID)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var accounts []models.TradingAccount
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&accounts).Error
	return accounts, err
}
