package model

import "time"

// ── 借阅状态（封闭枚举）──
//
// 状态机：
//
//	pending ──approve──▶ pending_pickup ──checkout──▶ active ──return──▶ returned
//	   └───reject/cancel──▶ rejected
//
// "逾期"不是存储状态，而是 active && now > due_date 的派生视图，
// 避免自动标记与同一时刻归还之间的竞态。

type LoanStatus string

const (
	LoanPending       LoanStatus = "pending"
	LoanPendingPickup LoanStatus = "pending_pickup"
	LoanActive        LoanStatus = "active"
	LoanReturned      LoanStatus = "returned"
	LoanRejected      LoanStatus = "rejected"
)

// Valid 校验借阅状态取值
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanPendingPickup, LoanActive, LoanReturned, LoanRejected:
		return true
	}
	return false
}

// Terminal 是否为终结状态
func (s LoanStatus) Terminal() bool {
	return s == LoanReturned || s == LoanRejected
}

// CanTransition 校验状态迁移是否合法
func (s LoanStatus) CanTransition(to LoanStatus) bool {
	switch s {
	case LoanPending:
		return to == LoanPendingPickup || to == LoanRejected
	case LoanPendingPickup:
		return to == LoanActive
	case LoanActive:
		return to == LoanReturned
	}
	return false
}

// Loan 借阅记录表 — 对应 loans
type Loan struct {
	LoanID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"loan_id"`
	CopyID       string     `gorm:"type:uuid;not null"                             json:"copy_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Status       LoanStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	RequestDate  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"request_date"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	RejectReason string     `gorm:"type:varchar(500)" json:"reject_reason,omitempty"`
	VersionedModel

	// 关联
	Copy *BookCopy `gorm:"foreignKey:CopyID;references:CopyID" json:"copy,omitempty"`
	User *User     `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Loan) TableName() string { return "loans" }

// IsOverdue 派生逾期标记：仅 active 且已过应还时间
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate != nil && now.After(*l.DueDate)
}
