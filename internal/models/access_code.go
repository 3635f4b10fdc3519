package models

type CodeStatus string

const (
	CodeStatusUnset     CodeStatus = "UNSET"
	CodeStatusAvailable CodeStatus = "AVAILABLE"
	CodeStatusAssigned  CodeStatus = "ASSIGNED"
	CodeStatusClaimed   CodeStatus = "CLAIMED"
)

// ClaimableStatuses are the pre-claim states. A conditional update guarded
// by this set is the only way a code ever becomes CLAIMED.
var ClaimableStatuses = []CodeStatus{CodeStatusUnset, CodeStatusAvailable, CodeStatusAssigned}

// AccessCode is one redeemable 6-digit code. CLAIMED is terminal: no row
// ever leaves it except by TTL deletion.
type AccessCode struct {
	Code      string     `json:"code" gorm:"type:varchar(6);primaryKey"`
	Status    CodeStatus `json:"status" gorm:"type:varchar(16);not null;default:'UNSET';index"`
	ClientID  string     `json:"clientId,omitempty" gorm:"type:varchar(255)"`
	ClaimedAt int64      `json:"claimedAt,omitempty"`
	ExpiresAt int64      `json:"expiresAt,omitempty"`
	TTL       int64      `json:"ttl,omitempty" gorm:"column:ttl;index"`
}

func (AccessCode) TableName() string {
	return "access_codes"
}
