package model

// ── 副本状态（封闭枚举）──
// 馆藏状态只允许下列取值；on_loan 仅由借阅流转写入，
// maintenance/lost/available 由管理员维护操作写入。

type CopyStatus string

const (
	CopyAvailable   CopyStatus = "available"
	CopyOnLoan      CopyStatus = "on_loan"
	CopyMaintenance CopyStatus = "maintenance"
	CopyLost        CopyStatus = "lost"
)

// Valid 校验副本状态取值
func (s CopyStatus) Valid() bool {
	switch s {
	case CopyAvailable, CopyOnLoan, CopyMaintenance, CopyLost:
		return true
	}
	return false
}

// BookCopy 图书副本表 — 对应 book_copies
// 一个副本同一时刻至多被一笔未终结借阅引用（数据库部分唯一索引兜底）
type BookCopy struct {
	CopyID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"copy_id"`
	BookID          string     `gorm:"type:uuid;not null"                                 json:"book_id"`
	AccessionNumber int        `gorm:"not null;unique;default:nextval('accession_number_seq')" json:"accession_number"`
	IsReference     bool       `gorm:"not null;default:false"                             json:"is_reference"`
	Status          CopyStatus `gorm:"type:varchar(20);not null;default:'available'"      json:"status"`
	Location        string     `gorm:"type:varchar(100)"                                  json:"location,omitempty"`
	VersionedModel

	// 关联
	Book *Book `gorm:"foreignKey:BookID;references:BookID" json:"book,omitempty"`
}

// TableName 指定表名
func (BookCopy) TableName() string { return "book_copies" }

// CopyStats 单本图书的副本统计快照（由一条聚合 SQL 产出）
type CopyStats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Reference   int64 `json:"reference"`
	Circulating int64 `json:"circulating"`
}
