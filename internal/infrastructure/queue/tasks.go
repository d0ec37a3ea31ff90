package queue

import "time"

const (
	TypeTreeAudit     = "catalog:tree_audit"
	TypeTreeCacheWarm = "catalog:tree_cache_warm"

	QueueMaintenance = "maintenance"
	QueueCache       = "cache"
)

// TreeAuditPayload asks for a full consistency audit of the category tree.
type TreeAuditPayload struct {
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// TreeCacheWarmPayload asks for the cached category tree to be rebuilt.
type TreeCacheWarmPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Queues is the weighted queue set the worker serves.
func Queues() map[string]int {
	return map[string]int{
		QueueCache:       6,
		QueueMaintenance: 3,
	}
}
