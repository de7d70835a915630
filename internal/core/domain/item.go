package domain

// Item is one list item under inspection. ComplianceFlag is nil when the
// item carries no compliance metadata at all.
type Item struct {
	ID             int    `json:"id"`
	DisplayName    string `json:"display_name"`
	ComplianceFlag *int   `json:"compliance_flag,omitempty"`
}

// Compliance flag sentinel values observed on records-managed items.
// 7 and 519 mean the item is locked as a record; 771 is a record that has
// been unlocked already.
const (
	FlagLockedRecord       = 7
	FlagLockedRecordLegacy = 519
	FlagUnlockedRecord     = 771
)

// LockState classifies an item's compliance flag.
type LockState int

const (
	LockStateNone     LockState = iota // no flag set
	LockStateLocked                    // locked as a record, qualifies for unlock
	LockStateUnlocked                  // known flag, already unlocked
	LockStateUnknown                   // unrecognized flag value
)

// ClassifyFlag maps a compliance flag to its lock state. Only the two
// locked sentinels qualify for action; unrecognized values are surfaced as
// LockStateUnknown so callers can warn without acting.
func ClassifyFlag(flag *int) LockState {
	if flag == nil || *flag == 0 {
		return LockStateNone
	}
	switch *flag {
	case FlagLockedRecord, FlagLockedRecordLegacy:
		return LockStateLocked
	case FlagUnlockedRecord:
		return LockStateUnlocked
	default:
		return LockStateUnknown
	}
}

// Flag returns a pointer to v, for building Items in literals and tests.
func Flag(v int) *int { return &v }
