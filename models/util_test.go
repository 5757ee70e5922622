package models

import "testing"

func TestNewIDRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 32 {
			t.Fatalf("expected 32-char id, got %d: %s", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestDecodeID(t *testing.T) {
	raw := uint64(0x0123456789ABCDEF) & 0xFFFF_FFFF_FFFF_FFFF
	enc := encodeID(raw)
	dec, err := DecodeID(enc)
	if err != nil {
		t.Fatal(err)
	}
	if dec != raw {
		t.Fatalf("round trip mismatch: got %x want %x", dec, raw)
	}

	if _, err := DecodeID("short"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestIdentityPredicates(t *testing.T) {
	ident := &Identity{ID: "u1", DeskIDs: []int64{7, 9}, Roles: []string{RoleSales}}
	if !ident.HasRole(RoleSales) {
		t.Fatal("expected sales role")
	}
	if ident.HasRole(RoleAdmin) {
		t.Fatal("unexpected admin role")
	}
	if !ident.InDesk(7) || ident.InDesk(3) {
		t.Fatal("desk membership mismatch")
	}
}
