package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	pkgerrors "github.com/Steven-Nagy-788/eui-lib-sys/pkg/errors"
)

// CopyRepository 副本数据访问接口
type CopyRepository interface {
	Create(ctx context.Context, copy *model.BookCopy) error
	BatchCreate(ctx context.Context, copies []model.BookCopy) error
	GetByID(ctx context.Context, id string) (*model.BookCopy, error)
	GetByAccessionNumber(ctx context.Context, accessionNumber int) (*model.BookCopy, error)
	List(ctx context.Context, offset, limit int) ([]model.BookCopy, int64, error)
	ListByBook(ctx context.Context, bookID string) ([]model.BookCopy, error)
	Update(ctx context.Context, copy *model.BookCopy) error
	// TransitionStatus 带前置状态校验的状态流转（CAS）
	// 两个并发 approve 争用同一副本时，只有一个能把 available 翻成 on_loan，
	// 落败方收到 ErrOptimisticLock
	TransitionStatus(ctx context.Context, copyID string, from, to model.CopyStatus) error
	// Stats 单条聚合 SQL 产出的读一致快照；available 已扣除在途请求的软占用
	Stats(ctx context.Context, bookID string) (*model.CopyStats, error)
	Delete(ctx context.Context, id string) error
}

// copyRepo CopyRepository 的 GORM 实现
type copyRepo struct {
	db *gorm.DB
}

// NewCopyRepo 创建 CopyRepository 实例
func NewCopyRepo(db *gorm.DB) CopyRepository {
	return &copyRepo{db: db}
}

func (r *copyRepo) Create(ctx context.Context, copy *model.BookCopy) error {
	return r.db.WithContext(ctx).Create(copy).Error
}

func (r *copyRepo) BatchCreate(ctx context.Context, copies []model.BookCopy) error {
	if len(copies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&copies).Error
}

func (r *copyRepo) GetByID(ctx context.Context, id string) (*model.BookCopy, error) {
	var copy model.BookCopy
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("copy_id = ?", id).
		First(&copy).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

func (r *copyRepo) GetByAccessionNumber(ctx context.Context, accessionNumber int) (*model.BookCopy, error) {
	var copy model.BookCopy
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("accession_number = ?", accessionNumber).
		First(&copy).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

func (r *copyRepo) List(ctx context.Context, offset, limit int) ([]model.BookCopy, int64, error) {
	var copies []model.BookCopy
	var total int64

	db := r.db.WithContext(ctx).Model(&model.BookCopy{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Book").
		Offset(offset).Limit(limit).
		Order("accession_number ASC").
		Find(&copies).Error; err != nil {
		return nil, 0, err
	}

	return copies, total, nil
}

func (r *copyRepo) ListByBook(ctx context.Context, bookID string) ([]model.BookCopy, error) {
	var copies []model.BookCopy
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("accession_number ASC").
		Find(&copies).Error
	return copies, err
}

func (r *copyRepo) Update(ctx context.Context, copy *model.BookCopy) error {
	oldVersion := copy.Version
	result := r.db.WithContext(ctx).
		Model(copy).
		Where("copy_id = ? AND version = ?", copy.CopyID, oldVersion).
		Updates(map[string]interface{}{
			"is_reference": copy.IsReference,
			"status":       copy.Status,
			"location":     copy.Location,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	copy.Version = oldVersion + 1
	return nil
}

func (r *copyRepo) TransitionStatus(ctx context.Context, copyID string, from, to model.CopyStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.BookCopy{}).
		Where("copy_id = ? AND status = ?", copyID, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *copyRepo) Stats(ctx context.Context, bookID string) (*model.CopyStats, error) {
	// 一条语句同时产出四个计数，避免多次查询之间被并发 approve/return 插队。
	// available 排除馆内阅览本，并排除被在途借阅（pending / pending_pickup）软占用的副本
	var stats model.CopyStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (
				WHERE status = 'available'
				  AND NOT is_reference
				  AND copy_id NOT IN (
					SELECT copy_id FROM loans
					WHERE status IN ('pending', 'pending_pickup')
				  )
			) AS available,
			COUNT(*) FILTER (WHERE is_reference) AS reference,
			COUNT(*) FILTER (WHERE status = 'on_loan') AS circulating
		FROM book_copies
		WHERE book_id = ?`, bookID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *copyRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("copy_id = ?", id).
		Delete(&model.BookCopy{}).Error
}
