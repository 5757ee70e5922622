package auth

import (
	"context"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// ValkeyRevocationStore keeps revoked token ids in Valkey with a TTL
// matching the token lifetime, so the denylist cleans itself up.
type ValkeyRevocationStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyRevocationStore connects to a Valkey node.
// addr example: "127.0.0.1:6379".
func NewValkeyRevocationStore(addr, prefix string) (*ValkeyRevocationStore, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "crm:revoked:"
	}
	return &ValkeyRevocationStore{client: cli, prefix: prefix}, nil
}

func (s *ValkeyRevocationStore) key(tokenID string) string { return s.prefix + tokenID }

// Revoke marks a token id revoked until it would have expired anyway.
func (s *ValkeyRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Do(ctx, s.client.B().Set().Key(s.key(tokenID)).Value("1").Ex(ttl).Build()).Error()
}

// IsRevoked reports whether the token id is on the denylist.
func (s *ValkeyRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(s.key(tokenID)).Build()).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ValkeyRevocationStore) Close() { s.client.Close() }
