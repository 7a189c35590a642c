package model

// Book 图书书目表 — 对应 books
type Book struct {
	BookID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"book_id"`
	ISBN            string `gorm:"type:varchar(20);not null"                      json:"isbn"`
	CallNumber      string `gorm:"type:varchar(50)"                               json:"call_number,omitempty"`
	Title           string `gorm:"type:varchar(255);not null"                     json:"title"`
	Author          string `gorm:"type:varchar(255);not null"                     json:"author"`
	Faculty         string `gorm:"type:varchar(100)"                              json:"faculty,omitempty"`
	Publisher       string `gorm:"type:varchar(255)"                              json:"publisher,omitempty"`
	PublicationYear *int   `json:"publication_year,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Book) TableName() string { return "books" }
