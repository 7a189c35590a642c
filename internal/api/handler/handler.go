package handler

import "github.com/Steven-Nagy-788/eui-lib-sys/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Book   *BookHandler
	Copy   *CopyHandler
	Loan   *LoanHandler
	Course *CourseHandler
	Stats  *StatsHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		User:   NewUserHandler(svc.User),
		Book:   NewBookHandler(svc.Book),
		Copy:   NewCopyHandler(svc.Copy),
		Loan:   NewLoanHandler(svc.Loan),
		Course: NewCourseHandler(svc.Course),
		Stats:  NewStatsHandler(svc.Stats),
		Export: NewExportHandler(svc.Export),
	}
}
