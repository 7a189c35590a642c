package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
)

// StatusCount 按状态/角色分组计数行
type StatusCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// MostBorrowedRow 热门图书统计行
type MostBorrowedRow struct {
	BookID    string `gorm:"column:book_id"`
	Title     string `gorm:"column:title"`
	Author    string `gorm:"column:author"`
	LoanCount int64  `gorm:"column:loan_count"`
}

// MonthlyCountRow 按月借阅量统计行
type MonthlyCountRow struct {
	Month string `gorm:"column:month"`
	Count int64  `gorm:"column:count"`
}

// TopBorrowerRow 借阅量用户排名统计行
type TopBorrowerRow struct {
	UserID       string `gorm:"column:user_id"`
	FullName     string `gorm:"column:full_name"`
	UniversityID string `gorm:"column:university_id"`
	LoanCount    int64  `gorm:"column:loan_count"`
}

// StatsRepository 统计数据访问接口（只读聚合查询）
type StatsRepository interface {
	CountBooks(ctx context.Context) (int64, error)
	CountCopies(ctx context.Context) (int64, error)
	CopiesByStatus(ctx context.Context) (map[string]int64, error)
	CountUsers(ctx context.Context) (int64, error)
	UsersByRole(ctx context.Context) (map[string]int64, error)
	CountBlacklisted(ctx context.Context) (int64, error)
	LoansByStatus(ctx context.Context) (map[string]int64, error)
	CountOverdueLoans(ctx context.Context, now time.Time) (int64, error)
	MostBorrowedBooks(ctx context.Context, limit int) ([]MostBorrowedRow, error)
	LoansByMonth(ctx context.Context, year int) ([]MonthlyCountRow, error)
	TopBorrowers(ctx context.Context, limit int) ([]TopBorrowerRow, error)
}

// statsRepo StatsRepository 的 GORM 实现
type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepo 创建 StatsRepository 实例
func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Book{}).Count(&count).Error
	return count, err
}

func (r *statsRepo) CountCopies(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BookCopy{}).Count(&count).Error
	return count, err
}

func (r *statsRepo) CopiesByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.BookCopy{}, "status")
}

func (r *statsRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *statsRepo) UsersByRole(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.User{}, "role")
}

func (r *statsRepo) CountBlacklisted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_blacklisted").
		Count(&count).Error
	return count, err
}

func (r *statsRepo) LoansByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, &model.Loan{}, "status")
}

func (r *statsRepo) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Loan{}).
		Where("status = ? AND due_date < ?", model.LoanActive, now).
		Count(&count).Error
	return count, err
}

func (r *statsRepo) MostBorrowedBooks(ctx context.Context, limit int) ([]MostBorrowedRow, error) {
	var rows []MostBorrowedRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT b.book_id, b.title, b.author, COUNT(l.loan_id) AS loan_count
		FROM loans l
		JOIN book_copies c ON c.copy_id = l.copy_id
		JOIN books b ON b.book_id = c.book_id
		GROUP BY b.book_id, b.title, b.author
		ORDER BY loan_count DESC
		LIMIT ?`, limit).
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) LoansByMonth(ctx context.Context, year int) ([]MonthlyCountRow, error) {
	var rows []MonthlyCountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(request_date, 'YYYY-MM') AS month, COUNT(*) AS count
		FROM loans
		WHERE EXTRACT(YEAR FROM request_date) = ?
		GROUP BY month
		ORDER BY month ASC`, year).
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepo) TopBorrowers(ctx context.Context, limit int) ([]TopBorrowerRow, error) {
	var rows []TopBorrowerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.user_id, u.full_name, u.university_id, COUNT(l.loan_id) AS loan_count
		FROM loans l
		JOIN users u ON u.user_id = l.user_id
		GROUP BY u.user_id, u.full_name, u.university_id
		ORDER BY loan_count DESC
		LIMIT ?`, limit).
		Scan(&rows).Error
	return rows, err
}

// groupCount 通用分组计数
func (r *statsRepo) groupCount(ctx context.Context, mdl interface{}, column string) (map[string]int64, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(mdl).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result, nil
}
