package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
)

// ── 图书模块业务错误 ──

var (
	ErrBookNotFound  = errors.New("书目不存在")
	ErrBookHasCopies = errors.New("书目下仍有副本，不可删除")
)

// BookService 书目管理业务接口
type BookService interface {
	CreateBook(ctx context.Context, req *dto.CreateBookRequest) (*dto.BookResponse, error)
	GetBook(ctx context.Context, id string) (*dto.BookWithStatsResponse, error)
	ListBooks(ctx context.Context, page *dto.PaginationRequest, keyword string) ([]dto.BookResponse, int64, error)
	UpdateBook(ctx context.Context, id string, req *dto.UpdateBookRequest) (*dto.BookResponse, error)
	DeleteBook(ctx context.Context, id string) error
}

type bookService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBookService 创建 BookService 实例
func NewBookService(repo *repository.Repository, logger *zap.Logger) BookService {
	return &bookService{repo: repo, logger: logger}
}

func (s *bookService) CreateBook(ctx context.Context, req *dto.CreateBookRequest) (*dto.BookResponse, error) {
	book := &model.Book{
		ISBN:            req.ISBN,
		CallNumber:      req.CallNumber,
		Title:           req.Title,
		Author:          req.Author,
		Faculty:         req.Faculty,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
	}
	if err := s.repo.Book.Create(ctx, book); err != nil {
		s.logger.Error("创建书目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("书目已创建", zap.String("book_id", book.BookID), zap.String("title", book.Title))
	return toBookResponse(book), nil
}

func (s *bookService) GetBook(ctx context.Context, id string) (*dto.BookWithStatsResponse, error) {
	book, err := s.repo.Book.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return nil, err
	}

	stats, err := s.repo.Copy.Stats(ctx, id)
	if err != nil {
		s.logger.Error("查询副本统计失败", zap.Error(err))
		return nil, err
	}

	return &dto.BookWithStatsResponse{
		BookResponse: *toBookResponse(book),
		CopyStats: dto.CopyStatsResponse{
			Total:       stats.Total,
			Available:   stats.Available,
			Reference:   stats.Reference,
			Circulating: stats.Circulating,
		},
	}, nil
}

func (s *bookService) ListBooks(ctx context.Context, page *dto.PaginationRequest, keyword string) ([]dto.BookResponse, int64, error) {
	books, total, err := s.repo.Book.List(ctx, page.GetOffset(), page.GetPageSize(), keyword)
	if err != nil {
		s.logger.Error("查询书目列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		result = append(result, *toBookResponse(&books[i]))
	}
	return result, total, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id string, req *dto.UpdateBookRequest) (*dto.BookResponse, error) {
	book, err := s.repo.Book.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return nil, err
	}

	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.CallNumber != nil {
		book.CallNumber = *req.CallNumber
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Faculty != nil {
		book.Faculty = *req.Faculty
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublicationYear != nil {
		book.PublicationYear = req.PublicationYear
	}

	if err := s.repo.Book.Update(ctx, book); err != nil {
		s.logger.Error("更新书目失败", zap.Error(err))
		return nil, err
	}

	return toBookResponse(book), nil
}

func (s *bookService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.repo.Book.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return err
	}

	// 有在册副本的书目不可删，先清空副本
	copies, err := s.repo.Copy.ListByBook(ctx, id)
	if err != nil {
		s.logger.Error("查询副本失败", zap.Error(err))
		return err
	}
	if len(copies) > 0 {
		return ErrBookHasCopies
	}

	return s.repo.Book.Delete(ctx, id)
}

// toBookResponse 转换书目响应
func toBookResponse(book *model.Book) *dto.BookResponse {
	return &dto.BookResponse{
		ID:              book.BookID,
		ISBN:            book.ISBN,
		CallNumber:      book.CallNumber,
		Title:           book.Title,
		Author:          book.Author,
		Faculty:         book.Faculty,
		Publisher:       book.Publisher,
		PublicationYear: book.PublicationYear,
		CreatedAt:       book.CreatedAt,
	}
}
