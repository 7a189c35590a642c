package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
)

// PolicyRepository 借阅策略数据访问接口
type PolicyRepository interface {
	GetByRole(ctx context.Context, role string) (*model.LoanPolicy, error)
	List(ctx context.Context) ([]model.LoanPolicy, error)
	Update(ctx context.Context, policy *model.LoanPolicy) error
}

// policyRepo PolicyRepository 的 GORM 实现
type policyRepo struct {
	db *gorm.DB
}

// NewPolicyRepo 创建 PolicyRepository 实例
func NewPolicyRepo(db *gorm.DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) GetByRole(ctx context.Context, role string) (*model.LoanPolicy, error) {
	var policy model.LoanPolicy
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepo) List(ctx context.Context) ([]model.LoanPolicy, error) {
	var policies []model.LoanPolicy
	err := r.db.WithContext(ctx).
		Order("role ASC").
		Find(&policies).Error
	return policies, err
}

func (r *policyRepo) Update(ctx context.Context, policy *model.LoanPolicy) error {
	return r.db.WithContext(ctx).
		Model(&model.LoanPolicy{}).
		Where("role = ?", policy.Role).
		Updates(map[string]interface{}{
			"max_books": policy.MaxBooks,
			"loan_days": policy.LoanDays,
		}).Error
}
