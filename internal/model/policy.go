package model

// LoanPolicy 角色借阅策略表 — 对应 loan_policies
// 每个角色一行；max_books 始终取角色策略，
// 课程借期仅覆盖 loan_days（见 LoanService 的借期解析）
type LoanPolicy struct {
	Role     string `gorm:"type:varchar(20);primaryKey" json:"role"`
	MaxBooks int    `gorm:"not null"                    json:"max_books"`
	LoanDays int    `gorm:"not null"                    json:"loan_days"`
}

// TableName 指定表名
func (LoanPolicy) TableName() string { return "loan_policies" }
