package server

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brokercrm/crm-service/auth"
	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/bulk"
	"github.com/brokercrm/crm-service/store"
)

// Server wires the identity resolver, permission aggregator, authorization
// gate and the persistence stores behind the HTTP API.
type Server struct {
	Config *AppConfig
	Log    *zap.Logger
	DB     *gorm.DB

	Resolver   *auth.Resolver
	Aggregator *authz.Aggregator
	Gate       *authz.Gate
	Verifier   *auth.JWTVerifier
	Revoker    auth.TokenRevoker

	Users    *store.UserStore
	Roles    *store.RoleStore
	Perms    *store.PermissionStore
	Leads    *store.LeadStore
	Accounts *store.TradingAccountStore
	Activity *store.ActivityStore
	Mutator  *bulk.Mutator

	TokenTTL time.Duration
}

// NewServer builds a Server on top of an open database handle. revoked may be
// nil when no denylist backend is configured.
func NewServer(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, revoked auth.RevocationChecker) *Server {
	verifier := auth.NewJWTVerifier([]byte(cfg.JWTSecret()), revoked)

	identities := store.NewIdentityStore(db)
	perms := store.NewPermissionStore(db)
	resources := store.NewResourceStore(db)
	activity := store.NewActivityStore(db)
	sink := store.NewBestEffortSink(activity, logger)

	return &Server{
		Config:     cfg,
		Log:        logger,
		DB:         db,
		Resolver:   auth.NewResolver(verifier, identities),
		Aggregator: authz.NewAggregator(perms),
		Gate:       authz.NewGate(resources),
		Verifier:   verifier,
		Users:      store.NewUserStore(db),
		Roles:      store.NewRoleStore(db),
		Perms:      perms,
		Leads:      store.NewLeadStore(db),
		Accounts:   store.NewTradingAccountStore(db),
		Activity:   activity,
		Mutator:    bulk.NewMutator(resources, resources, sink, logger),
		TokenTTL:   cfg.TokenTTL(),
	}
}
