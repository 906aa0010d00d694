package cart

import (
	"strings"

	"github.com/google/uuid"
)

// KindMemory maps server identifiers to the fine product kind recorded when
// the line was first observed locally. It is persisted with the snapshot so
// kinds survive reconciliation without relying on display-name matching.
type KindMemory map[string]ProductKind

// Clone returns an independent copy of the memory.
func (m KindMemory) Clone() KindMemory {
	out := make(KindMemory, len(m))
	for id, kind := range m {
		out[id] = kind
	}
	return out
}

// Reconcile merges an authoritative server item list with the previous local
// items. For every server item with a known local counterpart (matched by
// ServerID) the local identifier and fine product kind are preserved; new
// server items get a freshly minted local identifier and an inferred kind.
// Server ordering is authoritative, and local items absent from the server
// list are dropped.
//
// Reconcile never fails and is idempotent: feeding its own output back in
// with the same server list yields identical identifiers.
func Reconcile(serverItems []ServerItem, prev []Item, memory KindMemory) []Item {
	byServerID := make(map[string]Item, len(prev))
	for _, it := range prev {
		if it.ServerID != "" {
			byServerID[it.ServerID] = it
		}
	}

	out := make([]Item, 0, len(serverItems))
	for _, srv := range serverItems {
		item := Item{
			ServerID:     srv.ID,
			DisplayName:  srv.Name,
			UnitPrice:    srv.Price,
			ThumbnailRef: srv.ThumbnailRef,
			Composition:  srv.Composition,
		}
		if known, ok := byServerID[srv.ID]; ok {
			item.LocalID = known.LocalID
			item.Kind = known.Kind
		} else {
			item.LocalID = uuid.New().String()
			item.Kind = inferKind(srv, memory)
		}
		out = append(out, item)
	}
	return out
}

// inferKind recovers the fine product kind for a server item with no local
// counterpart. The kind memory is authoritative when it has an entry;
// otherwise a display-name prefix heuristic is tried, and failing that the
// most generic kind for the coarse classification is used.
func inferKind(srv ServerItem, memory KindMemory) ProductKind {
	if kind, ok := memory[srv.ID]; ok {
		return kind
	}
	if srv.Kind == CoarsePerfume {
		return KindDecant
	}
	return boxKindFromName(srv.Name)
}

// namePrefixKinds maps display-name prefixes to box kinds. Matching on text
// is fragile and only used when the kind memory has no record; unmatched
// names fall back to the personalized box, the most generic box kind.
var namePrefixKinds = []struct {
	prefix string
	kind   ProductKind
}{
	{"curated", KindCuratedBox},
	{"ai ", KindCuratedBox},
	{"gift", KindGiftBox},
	{"occasion", KindOccasionBox},
	{"personalized", KindPersonalizedBox},
}

func boxKindFromName(name string) ProductKind {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, p := range namePrefixKinds {
		if strings.HasPrefix(lower, p.prefix) {
			return p.kind
		}
	}
	return KindPersonalizedBox
}
