package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/config"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
	pkgerrors "github.com/Steven-Nagy-788/eui-lib-sys/pkg/errors"
)

// ── 副本模块业务错误 ──

var (
	ErrCopyInFlight      = errors.New("副本存在未终结借阅，不可执行此操作")
	ErrInvalidCopyStatus = errors.New("无效的副本状态")
	ErrCopyConflict      = errors.New("副本信息已被并发修改，请刷新后重试")
)

// CopyService 副本管理业务接口
type CopyService interface {
	CreateCopy(ctx context.Context, req *dto.CreateCopyRequest) (*dto.CopyResponse, error)
	// AddInventory 批量入库，按配置比例把前若干本标为馆内阅览本
	AddInventory(ctx context.Context, req *dto.AddInventoryRequest) ([]dto.CopyResponse, error)
	GetCopy(ctx context.Context, id string) (*dto.CopyResponse, error)
	GetCopyByAccessionNumber(ctx context.Context, accessionNumber int) (*dto.CopyResponse, error)
	ListCopies(ctx context.Context, page *dto.PaginationRequest) ([]dto.CopyResponse, int64, error)
	ListCopiesByBook(ctx context.Context, bookID string) ([]dto.CopyResponse, error)
	GetBookCopyStats(ctx context.Context, bookID string) (*dto.CopyStatsResponse, error)
	UpdateCopy(ctx context.Context, id string, req *dto.UpdateCopyRequest) (*dto.CopyResponse, error)
	DeleteCopy(ctx context.Context, id string) error
}

type copyService struct {
	repo   *repository.Repository
	cfg    *config.LoanConfig
	logger *zap.Logger
}

// NewCopyService 创建 CopyService 实例
func NewCopyService(repo *repository.Repository, cfg *config.LoanConfig, logger *zap.Logger) CopyService {
	return &copyService{repo: repo, cfg: cfg, logger: logger}
}

func (s *copyService) CreateCopy(ctx context.Context, req *dto.CreateCopyRequest) (*dto.CopyResponse, error) {
	if _, err := s.repo.Book.GetByID(ctx, req.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return nil, err
	}

	copy := &model.BookCopy{
		BookID:      req.BookID,
		IsReference: req.IsReference,
		Status:      model.CopyAvailable,
		Location:    req.Location,
	}
	if err := s.repo.Copy.Create(ctx, copy); err != nil {
		s.logger.Error("创建副本失败", zap.Error(err))
		return nil, err
	}

	return toCopyResponse(copy), nil
}

func (s *copyService) AddInventory(ctx context.Context, req *dto.AddInventoryRequest) ([]dto.CopyResponse, error) {
	if _, err := s.repo.Book.GetByID(ctx, req.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return nil, err
	}

	// 阅览本数量按比例向上取整，保证比例非零时至少留出一本
	referenceCount := (req.Quantity*s.cfg.ReferencePercentage + 99) / 100

	copies := make([]model.BookCopy, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		copies[i] = model.BookCopy{
			BookID:      req.BookID,
			IsReference: i < referenceCount,
			Status:      model.CopyAvailable,
		}
	}
	if err := s.repo.Copy.BatchCreate(ctx, copies); err != nil {
		s.logger.Error("批量入库失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量入库完成",
		zap.String("book_id", req.BookID),
		zap.Int("quantity", req.Quantity),
		zap.Int("reference", referenceCount),
	)

	result := make([]dto.CopyResponse, 0, len(copies))
	for i := range copies {
		result = append(result, *toCopyResponse(&copies[i]))
	}
	return result, nil
}

func (s *copyService) GetCopy(ctx context.Context, id string) (*dto.CopyResponse, error) {
	copy, err := s.getCopy(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCopyResponse(copy), nil
}

func (s *copyService) GetCopyByAccessionNumber(ctx context.Context, accessionNumber int) (*dto.CopyResponse, error) {
	copy, err := s.repo.Copy.GetByAccessionNumber(ctx, accessionNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyNotFound
		}
		s.logger.Error("查询副本失败", zap.Error(err))
		return nil, err
	}
	return toCopyResponse(copy), nil
}

func (s *copyService) ListCopies(ctx context.Context, page *dto.PaginationRequest) ([]dto.CopyResponse, int64, error) {
	copies, total, err := s.repo.Copy.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询副本列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CopyResponse, 0, len(copies))
	for i := range copies {
		result = append(result, *toCopyResponse(&copies[i]))
	}
	return result, total, nil
}

func (s *copyService) ListCopiesByBook(ctx context.Context, bookID string) ([]dto.CopyResponse, error) {
	copies, err := s.repo.Copy.ListByBook(ctx, bookID)
	if err != nil {
		s.logger.Error("查询副本失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CopyResponse, 0, len(copies))
	for i := range copies {
		result = append(result, *toCopyResponse(&copies[i]))
	}
	return result, nil
}

func (s *copyService) GetBookCopyStats(ctx context.Context, bookID string) (*dto.CopyStatsResponse, error) {
	if _, err := s.repo.Book.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return nil, err
	}

	stats, err := s.repo.Copy.Stats(ctx, bookID)
	if err != nil {
		s.logger.Error("查询副本统计失败", zap.Error(err))
		return nil, err
	}
	return &dto.CopyStatsResponse{
		Total:       stats.Total,
		Available:   stats.Available,
		Reference:   stats.Reference,
		Circulating: stats.Circulating,
	}, nil
}

func (s *copyService) UpdateCopy(ctx context.Context, id string, req *dto.UpdateCopyRequest) (*dto.CopyResponse, error) {
	copy, err := s.getCopy(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := model.CopyStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidCopyStatus
		}
		// on_loan 只能由借阅流转写入；在途借阅期间也不允许手动改状态
		if status == model.CopyOnLoan && copy.Status != model.CopyOnLoan {
			return nil, ErrInvalidCopyStatus
		}
		if status != copy.Status {
			inFlight, err := s.repo.Loan.HasInFlightForCopy(ctx, id)
			if err != nil {
				s.logger.Error("查询副本占用失败", zap.Error(err))
				return nil, err
			}
			if inFlight {
				return nil, ErrCopyInFlight
			}
		}
		copy.Status = status
	}
	if req.IsReference != nil {
		copy.IsReference = *req.IsReference
	}
	if req.Location != nil {
		copy.Location = *req.Location
	}

	if err := s.repo.Copy.Update(ctx, copy); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrCopyConflict
		}
		s.logger.Error("更新副本失败", zap.Error(err))
		return nil, err
	}

	return toCopyResponse(copy), nil
}

func (s *copyService) DeleteCopy(ctx context.Context, id string) error {
	if _, err := s.getCopy(ctx, id); err != nil {
		return err
	}

	inFlight, err := s.repo.Loan.HasInFlightForCopy(ctx, id)
	if err != nil {
		s.logger.Error("查询副本占用失败", zap.Error(err))
		return err
	}
	if inFlight {
		return ErrCopyInFlight
	}

	return s.repo.Copy.Delete(ctx, id)
}

func (s *copyService) getCopy(ctx context.Context, id string) (*model.BookCopy, error) {
	copy, err := s.repo.Copy.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyNotFound
		}
		s.logger.Error("查询副本失败", zap.Error(err))
		return nil, err
	}
	return copy, nil
}

// toCopyResponse 转换副本响应
func toCopyResponse(copy *model.BookCopy) *dto.CopyResponse {
	return &dto.CopyResponse{
		ID:              copy.CopyID,
		BookID:          copy.BookID,
		AccessionNumber: copy.AccessionNumber,
		IsReference:     copy.IsReference,
		Status:          string(copy.Status),
		Location:        copy.Location,
		CreatedAt:       copy.CreatedAt,
	}
}
