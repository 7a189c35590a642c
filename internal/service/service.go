package service

import (
	"go.uber.org/zap"

	"github.com/Steven-Nagy-788/eui-lib-sys/config"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/jwt"
	"github.com/Steven-Nagy-788/eui-lib-sys/pkg/redis"
)

// Service 聚合全部业务服务，供 handler 层依赖注入
type Service struct {
	Auth   AuthService
	User   UserService
	Book   BookService
	Copy   CopyService
	Loan   LoanService
	Course CourseService
	Stats  StatsService
	Export ExportService
}

// New 创建服务聚合实例
func New(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		Auth:   NewAuthService(repo, jwtMgr, rdb, &cfg.Auth, logger),
		User:   NewUserService(repo, logger),
		Book:   NewBookService(repo, logger),
		Copy:   NewCopyService(repo, &cfg.Loan, logger),
		Loan:   NewLoanService(repo, logger),
		Course: NewCourseService(repo, logger),
		Stats:  NewStatsService(repo, logger),
		Export: NewExportService(repo, logger),
	}
}
