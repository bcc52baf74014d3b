package enums

import "fmt"

// SyncStatus tracks the lifecycle of a deferred assignment quantity sync.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusApplied SyncStatus = "applied"
	SyncStatusFailed  SyncStatus = "failed"
)

var validSyncStatuses = []SyncStatus{
	SyncStatusPending,
	SyncStatusApplied,
	SyncStatusFailed,
}

// IsValid reports whether the value matches the canonical sync status enum.
func (s SyncStatus) IsValid() bool {
	for _, candidate := range validSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s SyncStatus) String() string {
	return string(s)
}

// ParseSyncStatus converts raw input into SyncStatus.
func ParseSyncStatus(value string) (SyncStatus, error) {
	for _, candidate := range validSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync status %q", value)
}
