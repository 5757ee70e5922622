package bulk

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/brokercrm/crm-service/authz"
)

// Request-level failures. These reject the whole bulk call before any
// transaction is opened.
var (
	ErrNoTargets   = errors.New("bulk request has no target ids")
	ErrEmptyPatch  = errors.New("bulk patch has no allowed columns")
	ErrBadResource = errors.New("unknown bulk resource")
	ErrMalformed   = errors.New("malformed bulk patch")
)

// Patch is the tagged union of the two patch shapes. The shape is decided
// once, at the request-parsing boundary; the mutator never re-inspects raw
// JSON.
type Patch interface {
	isPatch()
	empty() bool
}

// UniformPatch applies the same column values to every target.
type UniformPatch map[string]any

func (UniformPatch) isPatch()      {}
func (p UniformPatch) empty() bool { return len(p) == 0 }

// TargetPatch is one per-target entry.
type TargetPatch struct {
	ID  int64
	Set map[string]any
}

// PerTargetPatch applies a distinct column set per target.
type PerTargetPatch []TargetPatch

func (PerTargetPatch) isPatch() {}
func (p PerTargetPatch) empty() bool {
	for _, t := range p {
		if len(t.Set) > 0 {
			return false
		}
	}
	return true
}

// collapse merges duplicate entries for the same id into one, later columns
// winning, so each target carries at most one entry. Entry order follows the
// first occurrence of each id; the input and its maps are left untouched.
func (p PerTargetPatch) collapse() PerTargetPatch {
	index := make(map[int64]int, len(p))
	out := make(PerTargetPatch, 0, len(p))
	for _, t := range p {
		i, ok := index[t.ID]
		if !ok {
			index[t.ID] = len(out)
			out = append(out, t)
			continue
		}
		set := make(map[string]any, len(out[i].Set)+len(t.Set))
		for col, v := range out[i].Set {
			set[col] = v
		}
		for col, v := range t.Set {
			set[col] = v
		}
		out[i].Set = set
	}
	return out
}

// columns statically declared per resource. Mirrors the migration schema;
// ValidateAllowLists keeps the two honest at startup instead of probing the
// database at call time.
var resourceColumns = map[string][]string{
	authz.ResourceLeads: {
		"id", "desk_id", "assigned_to", "status", "source", "campaign",
		"email", "phone", "country", "created_at", "updated_at",
	},
	authz.ResourceTradingAccounts: {
		"id", "lead_id", "desk_id", "login", "currency", "group_name",
		"leverage", "status", "created_at", "updated_at",
	},
}

// allowLists are the columns a bulk patch may touch, per resource. Keys,
// ids and desk assignment columns are deliberately absent.
var allowLists = map[string][]string{
	authz.ResourceLeads:           {"status", "assigned_to", "source", "campaign", "country"},
	authz.ResourceTradingAccounts: {"status", "leverage", "group_name"},
}

// AllowedColumns returns the patchable columns for a resource, sorted.
func AllowedColumns(resource string) []string {
	cols := append([]string(nil), allowLists[resource]...)
	sort.Strings(cols)
	return cols
}

// ValidateAllowLists verifies every allow-listed column exists in its
// resource's declared schema. Called once from main; a failure here is a
// programming error, not a runtime condition.
func ValidateAllowLists() error {
	for resource, cols := range allowLists {
		declared, ok := resourceColumns[resource]
		if !ok {
			return fmt.Errorf("allow-list for undeclared resource %q", resource)
		}
		set := make(map[string]bool, len(declared))
		for _, c := range declared {
			set[c] = true
		}
		for _, c := range cols {
			if !set[c] {
				return fmt.Errorf("resource %q: allow-listed column %q not in schema", resource, c)
			}
			if c == "id" || c == "desk_id" {
				return fmt.Errorf("resource %q: column %q must never be patchable", resource, c)
			}
		}
	}
	return nil
}

// ParsePatch decodes the raw patch field and restricts it to the resource's
// allow-list. A JSON object becomes a UniformPatch, a JSON array becomes a
// PerTargetPatch whose entries carry an "id" field.
func ParsePatch(resource string, raw json.RawMessage) (Patch, error) {
	allowed, ok := allowLists[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadResource, resource)
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}

	switch firstToken(raw) {
	case '{':
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return UniformPatch(restrict(m, allowedSet)), nil
	case '[':
		var entries []map[string]any
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out := make(PerTargetPatch, 0, len(entries))
		for i, e := range entries {
			id, err := numericID(e["id"])
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
			}
			out = append(out, TargetPatch{ID: id, Set: restrict(e, allowedSet)})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: patch must be an object or an array", ErrMalformed)
	}
}

func firstToken(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b
		}
	}
	return 0
}

func restrict(m map[string]any, allowed map[string]bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}

func numericID(v any) (int64, error) {
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, fmt.Errorf("missing or non-integer id: %v", v)
	}
	return int64(f), nil
}

// DedupeTargets drops duplicate ids preserving first-seen order.
func DedupeTargets(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
