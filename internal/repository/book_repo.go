package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
)

// BookRepository 书目数据访问接口
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, offset, limit int, keyword string) ([]model.Book, int64, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id string) error
}

// bookRepo BookRepository 的 GORM 实现
type bookRepo struct {
	db *gorm.DB
}

// NewBookRepo 创建 BookRepository 实例
func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepo{db: db}
}

func (r *bookRepo) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	var book model.Book
	err := r.db.WithContext(ctx).
		Where("book_id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepo) List(ctx context.Context, offset, limit int, keyword string) ([]model.Book, int64, error) {
	var books []model.Book
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Book{})
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("title ILIKE ? OR author ILIKE ? OR isbn = ?", like, like, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (r *bookRepo) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *bookRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("book_id = ?", id).
		Delete(&model.Book{}).Error
}
