package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User   UserRepository
	Book   BookRepository
	Copy   CopyRepository
	Loan   LoanRepository
	Policy PolicyRepository
	Course CourseRepository
	Stats  StatsRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:   NewUserRepo(db),
		Book:   NewBookRepo(db),
		Copy:   NewCopyRepo(db),
		Loan:   NewLoanRepo(db),
		Policy: NewPolicyRepo(db),
		Course: NewCourseRepo(db),
		Stats:  NewStatsRepo(db),
	}
}
