package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
)

// StatsService 管理端统计业务接口
// 全部为只读聚合，逾期数按查询时刻派生
type StatsService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardStatsResponse, error)
	MostBorrowedBooks(ctx context.Context, limit int) ([]dto.MostBorrowedBookResponse, error)
	LoansByMonth(ctx context.Context, year int) ([]dto.MonthlyLoanCountResponse, error)
	TopBorrowers(ctx context.Context, limit int) ([]dto.TopBorrowerResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) GetDashboard(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	totalBooks, err := s.repo.Stats.CountBooks(ctx)
	if err != nil {
		return nil, s.logged("统计书目总数失败", err)
	}
	totalCopies, err := s.repo.Stats.CountCopies(ctx)
	if err != nil {
		return nil, s.logged("统计副本总数失败", err)
	}
	copiesByStatus, err := s.repo.Stats.CopiesByStatus(ctx)
	if err != nil {
		return nil, s.logged("统计副本状态分布失败", err)
	}

	totalUsers, err := s.repo.Stats.CountUsers(ctx)
	if err != nil {
		return nil, s.logged("统计用户总数失败", err)
	}
	usersByRole, err := s.repo.Stats.UsersByRole(ctx)
	if err != nil {
		return nil, s.logged("统计用户角色分布失败", err)
	}
	blacklisted, err := s.repo.Stats.CountBlacklisted(ctx)
	if err != nil {
		return nil, s.logged("统计黑名单用户失败", err)
	}

	loansByStatus, err := s.repo.Stats.LoansByStatus(ctx)
	if err != nil {
		return nil, s.logged("统计借阅状态分布失败", err)
	}
	overdue, err := s.repo.Stats.CountOverdueLoans(ctx, time.Now().UTC())
	if err != nil {
		return nil, s.logged("统计逾期借阅失败", err)
	}

	return &dto.DashboardStatsResponse{
		Books: dto.BookStatsSection{
			TotalBooks:     totalBooks,
			TotalCopies:    totalCopies,
			CopiesByStatus: copiesByStatus,
		},
		Users: dto.UserStatsSection{
			TotalUsers:  totalUsers,
			UsersByRole: usersByRole,
			Blacklisted: blacklisted,
		},
		Loans: dto.LoanStatsSection{
			ActiveLoans:     loansByStatus[string(model.LoanActive)],
			OverdueLoans:    overdue,
			PendingRequests: loansByStatus[string(model.LoanPending)],
			LoansByStatus:   loansByStatus,
		},
	}, nil
}

func (s *statsService) MostBorrowedBooks(ctx context.Context, limit int) ([]dto.MostBorrowedBookResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.repo.Stats.MostBorrowedBooks(ctx, limit)
	if err != nil {
		return nil, s.logged("统计热门图书失败", err)
	}
	result := make([]dto.MostBorrowedBookResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.MostBorrowedBookResponse{
			BookID:    row.BookID,
			Title:     row.Title,
			Author:    row.Author,
			LoanCount: row.LoanCount,
		})
	}
	return result, nil
}

func (s *statsService) LoansByMonth(ctx context.Context, year int) ([]dto.MonthlyLoanCountResponse, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	rows, err := s.repo.Stats.LoansByMonth(ctx, year)
	if err != nil {
		return nil, s.logged("统计按月借阅量失败", err)
	}
	result := make([]dto.MonthlyLoanCountResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.MonthlyLoanCountResponse{
			Month: row.Month,
			Count: row.Count,
		})
	}
	return result, nil
}

func (s *statsService) TopBorrowers(ctx context.Context, limit int) ([]dto.TopBorrowerResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.repo.Stats.TopBorrowers(ctx, limit)
	if err != nil {
		return nil, s.logged("统计借阅排名失败", err)
	}
	result := make([]dto.TopBorrowerResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.TopBorrowerResponse{
			UserID:       row.UserID,
			FullName:     row.FullName,
			UniversityID: row.UniversityID,
			LoanCount:    row.LoanCount,
		})
	}
	return result, nil
}

func (s *statsService) logged(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return err
}
