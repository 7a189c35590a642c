package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
	pkgerrors "github.com/Steven-Nagy-788/eui-lib-sys/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrInvalidRole  = errors.New("无效的用户角色")
	ErrUserConflict = errors.New("用户信息已被并发修改，请刷新后重试")
)

// UserService 用户管理业务接口（管理员侧 + 个人首页）
type UserService interface {
	ListUsers(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	GetUser(ctx context.Context, id string) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	GetDashboard(ctx context.Context, userID string) (*dto.UserDashboardResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Faculty != nil {
		user.Faculty = *req.Faculty
	}
	if req.AcademicYear != nil {
		user.AcademicYear = req.AcademicYear
	}
	if req.IsBlacklisted != nil {
		user.IsBlacklisted = *req.IsBlacklisted
		// 解除黑名单时顺带清掉备注
		if !*req.IsBlacklisted && req.BlacklistNote == nil {
			user.BlacklistNote = nil
		}
	}
	if req.BlacklistNote != nil {
		user.BlacklistNote = req.BlacklistNote
	}
	if req.InfractionsCount != nil {
		user.InfractionsCount = *req.InfractionsCount
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrUserConflict
		}
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	if req.IsBlacklisted != nil {
		s.logger.Info("用户黑名单状态变更",
			zap.String("user_id", user.UserID),
			zap.Bool("is_blacklisted", user.IsBlacklisted),
		)
	}

	return toUserResponse(user), nil
}

func (s *userService) GetDashboard(ctx context.Context, userID string) (*dto.UserDashboardResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	loans, err := s.repo.Loan.ListByUser(ctx, userID, nil)
	if err != nil {
		s.logger.Error("查询用户借阅失败", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	stats := dto.UserStatsResponse{
		TotalLoans:  int64(len(loans)),
		Infractions: user.InfractionsCount,
	}
	for i := range loans {
		switch loans[i].Status {
		case model.LoanActive:
			stats.ActiveLoans++
			if loans[i].IsOverdue(now) {
				stats.OverdueLoans++
			}
		case model.LoanPending:
			stats.PendingRequests++
		}
	}

	return &dto.UserDashboardResponse{
		User:  *toUserResponse(user),
		Stats: stats,
	}, nil
}
