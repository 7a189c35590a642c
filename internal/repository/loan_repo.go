package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	pkgerrors "github.com/Steven-Nagy-788/eui-lib-sys/pkg/errors"
)

// inFlightStatuses 未终结借阅状态（占用副本名额）
var inFlightStatuses = []model.LoanStatus{
	model.LoanPending,
	model.LoanPendingPickup,
	model.LoanActive,
}

// LoanSearchFilter 借阅检索条件
type LoanSearchFilter struct {
	UserID   string
	Status   model.LoanStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// LoanRepository 借阅数据访问接口
type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	GetByID(ctx context.Context, id string) (*model.Loan, error)
	List(ctx context.Context, offset, limit int) ([]model.Loan, int64, error)
	ListByStatus(ctx context.Context, status model.LoanStatus, offset, limit int) ([]model.Loan, error)
	ListByUser(ctx context.Context, userID string, status *model.LoanStatus) ([]model.Loan, error)
	// ListOverdue 纯读取：active 且已过应还时间的借阅，不做任何状态变更
	ListOverdue(ctx context.Context, now time.Time) ([]model.Loan, error)
	// CountInFlightByUser 未终结借阅计数（pending + pending_pickup + active），
	// 用于 max_books 限额判定
	CountInFlightByUser(ctx context.Context, userID string) (int64, error)
	// HasInFlightForCopy 副本是否已被未终结借阅占用（软占用判定）
	HasInFlightForCopy(ctx context.Context, copyID string) (bool, error)
	// HasInFlightForUserAndCopy 用户是否已持有该副本的未终结借阅
	HasInFlightForUserAndCopy(ctx context.Context, userID, copyID string) (bool, error)
	Update(ctx context.Context, loan *model.Loan) error
	Search(ctx context.Context, filter LoanSearchFilter, offset, limit int) ([]model.Loan, int64, error)
	Delete(ctx context.Context, id string) error
}

// loanRepo LoanRepository 的 GORM 实现
type loanRepo struct {
	db *gorm.DB
}

// NewLoanRepo 创建 LoanRepository 实例
func NewLoanRepo(db *gorm.DB) LoanRepository {
	return &loanRepo{db: db}
}

func (r *loanRepo) Create(ctx context.Context, loan *model.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepo) GetByID(ctx context.Context, id string) (*model.Loan, error) {
	var loan model.Loan
	err := r.db.WithContext(ctx).
		Preload("Copy").Preload("Copy.Book").
		Preload("User").
		Where("loan_id = ?", id).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepo) List(ctx context.Context, offset, limit int) ([]model.Loan, int64, error) {
	var loans []model.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Loan{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Copy").Preload("Copy.Book").
		Preload("User").
		Offset(offset).Limit(limit).
		Order("request_date DESC").
		Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *loanRepo) ListByStatus(ctx context.Context, status model.LoanStatus, offset, limit int) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.WithContext(ctx).
		Preload("Copy").Preload("Copy.Book").
		Preload("User").
		Where("status = ?", status).
		Offset(offset).Limit(limit).
		Order("request_date DESC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepo) ListByUser(ctx context.Context, userID string, status *model.LoanStatus) ([]model.Loan, error) {
	var loans []model.Loan
	db := r.db.WithContext(ctx).
		Preload("Copy").Preload("Copy.Book").
		Where("user_id = ?", userID)
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	err := db.Order("request_date DESC").Find(&loans).Error
	return loans, err
}

func (r *loanRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.WithContext(ctx).
		Preload("Copy").Preload("Copy.Book").
		Preload("User").
		Where("status = ? AND due_date < ?", model.LoanActive, now).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

func (r *loanRepo) CountInFlightByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Loan{}).
		Where("user_id = ? AND status IN ?", userID, inFlightStatuses).
		Count(&count).Error
	return count, err
}

func (r *loanRepo) HasInFlightForCopy(ctx context.Context, copyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Loan{}).
		Where("copy_id = ? AND status IN ?", copyID, inFlightStatuses).
		Count(&count).Error
	return count > 0, err
}

func (r *loanRepo) HasInFlightForUserAndCopy(ctx context.Context, userID, copyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Loan{}).
		Where("user_id = ? AND copy_id = ? AND status IN ?", userID, copyID, inFlightStatuses).
		Count(&count).Error
	return count > 0, err
}

func (r *loanRepo) Update(ctx context.Context, loan *model.Loan) error {
	oldVersion := loan.Version
	result := r.db.WithContext(ctx).
		Model(loan).
		Where("loan_id = ? AND version = ?", loan.LoanID, oldVersion).
		Updates(map[string]interface{}{
			"status":        loan.Status,
			"approval_date": loan.ApprovalDate,
			"due_date":      loan.DueDate,
			"return_date":   loan.ReturnDate,
			"reject_reason": loan.RejectReason,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	loan.Version = oldVersion + 1
	return nil
}

func (r *loanRepo) Search(ctx context.Context, filter LoanSearchFilter, offset, limit int) ([]model.Loan, int64, error) {
	var loans []model.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Loan{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		db = db.Where("request_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		db = db.Where("request_date < ?", *filter.ToDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Copy").Preload("Copy.Book").
		Preload("User").
		Offset(offset).Limit(limit).
		Order("request_date DESC").
		Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *loanRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", id).
		Delete(&model.Loan{}).Error
}
