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

// ── 借阅模块业务错误 ──

var (
	ErrLoanNotFound       = errors.New("借阅记录不存在")
	ErrCopyNotFound       = errors.New("图书副本不存在")
	ErrCopyNotAvailable   = errors.New("图书副本当前不可借")
	ErrCopyReferenceOnly  = errors.New("馆内阅览本不可外借")
	ErrUserBlacklisted    = errors.New("用户已被列入黑名单，不可发起借阅")
	ErrPolicyLimitReached = errors.New("已达到该角色的最大借阅数量")
	ErrInvalidLoanState   = errors.New("借阅状态不允许此操作")
	ErrLoanConflict       = errors.New("副本已被并发操作占用，请重试")
	ErrPolicyNotFound     = errors.New("角色借阅策略缺失")
	ErrNotLoanOwner       = errors.New("只能取消本人的借阅申请")
	ErrInvalidLoanStatus  = errors.New("无效的借阅状态")
	ErrDuplicateLoan      = errors.New("已存在对该副本的未完结借阅")
	ErrLoanNotTerminal    = errors.New("仅可删除已完结的借阅记录")
)

// LoanService 借阅生命周期业务接口
//
// 状态机与副本库存的对账规则：
//   - request: 仅校验并落一条 pending 记录；副本状态不翻转，
//     但 pending 记录即构成软占用，后续请求视该副本为不可借（宁可少借不可超借）
//   - approve: 对副本执行 available→on_loan 的 CAS，争用同一副本的并发
//     approve 只有一个成功，落败方得到冲突错误
//   - reject/cancel: 仅在 pending 阶段允许，释放软占用（副本状态从未翻转）
//   - return: 借阅终结后再把副本翻回 available；中途失败只会留下
//     保守状态（副本仍 on_loan），不会出现超借
type LoanService interface {
	RequestLoan(ctx context.Context, userID string, req *dto.CreateLoanRequest) (*dto.LoanResponse, error)
	ApproveLoan(ctx context.Context, loanID string) (*dto.LoanResponse, error)
	RejectLoan(ctx context.Context, loanID string, req *dto.RejectLoanRequest) (*dto.LoanResponse, error)
	CancelLoan(ctx context.Context, loanID, callerID string) (*dto.LoanResponse, error)
	ConfirmPickup(ctx context.Context, loanID string) (*dto.LoanResponse, error)
	ReturnLoan(ctx context.Context, loanID string, req *dto.ReturnLoanRequest) (*dto.LoanResponse, error)
	// DeleteLoan 删除历史借阅记录，仅允许已完结（returned/rejected）的记录
	DeleteLoan(ctx context.Context, loanID string) error

	GetLoan(ctx context.Context, loanID string) (*dto.LoanResponse, error)
	ListLoans(ctx context.Context, page *dto.PaginationRequest) ([]dto.LoanWithBookResponse, int64, error)
	ListLoansByStatus(ctx context.Context, status string, page *dto.PaginationRequest) ([]dto.LoanWithBookResponse, error)
	ListUserLoans(ctx context.Context, userID, status string) ([]dto.LoanWithBookResponse, error)
	ListOverdueLoans(ctx context.Context) ([]dto.LoanWithBookResponse, error)
	SearchLoans(ctx context.Context, req *dto.SearchLoansRequest) ([]dto.LoanWithBookResponse, int64, error)
	PreviewDueDate(ctx context.Context, userID, copyID string) (*dto.DueDatePreviewResponse, error)

	// RunOverdueSweep 周期性逾期扫描：只读派生，不落任何状态变更，天然幂等
	RunOverdueSweep(ctx context.Context) (int, error)

	ListPolicies(ctx context.Context) ([]dto.PolicyResponse, error)
	GetPolicy(ctx context.Context, role string) (*dto.PolicyResponse, error)
	UpdatePolicy(ctx context.Context, role string, req *dto.UpdatePolicyRequest) (*dto.PolicyResponse, error)
}

type loanService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLoanService 创建 LoanService 实例
func NewLoanService(repo *repository.Repository, logger *zap.Logger) LoanService {
	return &loanService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 发起借阅
// ════════════════════════════════════════════════════════════

func (s *loanService) RequestLoan(ctx context.Context, userID string, req *dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	// 1. 校验借阅人
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.IsBlacklisted {
		return nil, ErrUserBlacklisted
	}

	// 2. 角色限额（max_books 始终取角色策略，课程不覆盖限额）
	policy, err := s.repo.Policy.GetByRole(ctx, user.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 策略行缺失属于服务端配置错误，而非用户可修复的输入问题
			s.logger.Error("角色借阅策略缺失", zap.String("role", user.Role))
			return nil, ErrPolicyNotFound
		}
		s.logger.Error("查询借阅策略失败", zap.Error(err))
		return nil, err
	}

	inFlight, err := s.repo.Loan.CountInFlightByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计在途借阅失败", zap.Error(err))
		return nil, err
	}
	if inFlight >= int64(policy.MaxBooks) {
		return nil, ErrPolicyLimitReached
	}

	// 3. 校验副本
	copy, err := s.repo.Copy.GetByID(ctx, req.CopyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyNotFound
		}
		s.logger.Error("查询副本失败", zap.Error(err))
		return nil, err
	}
	if copy.IsReference {
		return nil, ErrCopyReferenceOnly
	}
	if copy.Status != model.CopyAvailable {
		return nil, ErrCopyNotAvailable
	}

	// 4. 软占用校验：本人重复申请与他人占用分开报错，
	// 前者可明确提示，后者只表现为副本不可借
	dup, err := s.repo.Loan.HasInFlightForUserAndCopy(ctx, userID, req.CopyID)
	if err != nil {
		s.logger.Error("查询重复申请失败", zap.Error(err))
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateLoan
	}

	held, err := s.repo.Loan.HasInFlightForCopy(ctx, req.CopyID)
	if err != nil {
		s.logger.Error("查询副本占用失败", zap.Error(err))
		return nil, err
	}
	if held {
		return nil, ErrCopyNotAvailable
	}

	// 5. 落 pending 记录（数据库部分唯一索引兜底并发窗口内的双重申请）
	loan := &model.Loan{
		CopyID:      req.CopyID,
		UserID:      userID,
		Status:      model.LoanPending,
		RequestDate: time.Now().UTC(),
	}
	if err := s.repo.Loan.Create(ctx, loan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCopyNotAvailable
		}
		s.logger.Error("创建借阅申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("借阅申请已创建",
		zap.String("loan_id", loan.LoanID),
		zap.String("copy_id", loan.CopyID),
		zap.String("user_id", loan.UserID),
	)

	return toLoanResponse(loan, time.Now().UTC()), nil
}

// ════════════════════════════════════════════════════════════
// 审批 / 驳回 / 取消
// ════════════════════════════════════════════════════════════

func (s *loanService) ApproveLoan(ctx context.Context, loanID string) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, ErrInvalidLoanState
	}

	// 先解析借期，避免副本已翻转后才发现策略缺失
	days, _, _, err := s.resolveLoanDays(ctx, loan.UserID, loan.CopyID)
	if err != nil {
		return nil, err
	}

	// 对副本做 available→on_loan 的 CAS，序列化争用同一副本的并发审批
	if err := s.repo.Copy.TransitionStatus(ctx, loan.CopyID, model.CopyAvailable, model.CopyOnLoan); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("翻转副本状态失败", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, days)
	loan.Status = model.LoanPendingPickup
	loan.ApprovalDate = &now
	loan.DueDate = &dueDate

	if err := s.repo.Loan.Update(ctx, loan); err != nil {
		// 借阅记录被并发修改：回补副本状态后报冲突
		if revertErr := s.repo.Copy.TransitionStatus(ctx, loan.CopyID, model.CopyOnLoan, model.CopyAvailable); revertErr != nil {
			s.logger.Error("回补副本状态失败", zap.Error(revertErr), zap.String("copy_id", loan.CopyID))
		}
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("更新借阅记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("借阅申请已批准",
		zap.String("loan_id", loan.LoanID),
		zap.Int("loan_days", days),
		zap.Time("due_date", dueDate),
	)

	return toLoanResponse(loan, now), nil
}

func (s *loanService) RejectLoan(ctx context.Context, loanID string, req *dto.RejectLoanRequest) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, ErrInvalidLoanState
	}

	// pending 阶段副本状态从未翻转，置为 rejected 即释放软占用
	loan.Status = model.LoanRejected
	loan.RejectReason = req.Reason
	if err := s.repo.Loan.Update(ctx, loan); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("更新借阅记录失败", zap.Error(err))
		return nil, err
	}

	return toLoanResponse(loan, time.Now().UTC()), nil
}

func (s *loanService) CancelLoan(ctx context.Context, loanID, callerID string) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != callerID {
		return nil, ErrNotLoanOwner
	}
	// 审批通过后不允许借阅人单方面取消
	if loan.Status != model.LoanPending {
		return nil, ErrInvalidLoanState
	}

	loan.Status = model.LoanRejected
	loan.RejectReason = "borrower cancelled"
	if err := s.repo.Loan.Update(ctx, loan); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("更新借阅记录失败", zap.Error(err))
		return nil, err
	}

	return toLoanResponse(loan, time.Now().UTC()), nil
}

// ════════════════════════════════════════════════════════════
// 取书 / 归还
// ════════════════════════════════════════════════════════════

func (s *loanService) ConfirmPickup(ctx context.Context, loanID string) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPendingPickup {
		return nil, ErrInvalidLoanState
	}

	// 副本在审批时已翻为 on_loan，此处只推进借阅状态
	loan.Status = model.LoanActive
	if err := s.repo.Loan.Update(ctx, loan); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("更新借阅记录失败", zap.Error(err))
		return nil, err
	}

	return toLoanResponse(loan, time.Now().UTC()), nil
}

func (s *loanService) ReturnLoan(ctx context.Context, loanID string, req *dto.ReturnLoanRequest) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanActive {
		return nil, ErrInvalidLoanState
	}

	now := time.Now().UTC()
	wasOverdue := loan.IsOverdue(now)

	// 先终结借阅再翻副本：CAS 保证重复归还只有一次生效
	loan.Status = model.LoanReturned
	loan.ReturnDate = &now
	if err := s.repo.Loan.Update(ctx, loan); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLoanConflict
		}
		s.logger.Error("更新借阅记录失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Copy.TransitionStatus(ctx, loan.CopyID, model.CopyOnLoan, model.CopyAvailable); err != nil {
		// 副本可能已被管理员改为 maintenance/lost，记录后不回滚借阅终结
		s.logger.Warn("归还后副本状态未翻回 available",
			zap.Error(err),
			zap.String("copy_id", loan.CopyID),
		)
	}

	// 逾期记违规由管理员裁量，不自动触发
	if wasOverdue && req.IncrementInfractions {
		if err := s.repo.User.IncrementInfractions(ctx, loan.UserID); err != nil {
			s.logger.Error("递增违规次数失败", zap.Error(err), zap.String("user_id", loan.UserID))
		}
	}

	s.logger.Info("借阅已归还",
		zap.String("loan_id", loan.LoanID),
		zap.Bool("was_overdue", wasOverdue),
	)

	return toLoanResponse(loan, now), nil
}

// DeleteLoan 删除历史借阅记录（管理员清理）。
// 未完结的借阅承载软占用与副本状态，不允许删除。
func (s *loanService) DeleteLoan(ctx context.Context, loanID string) error {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if !loan.Status.Terminal() {
		return ErrLoanNotTerminal
	}

	if err := s.repo.Loan.Delete(ctx, loanID); err != nil {
		s.logger.Error("删除借阅记录失败", zap.Error(err))
		return err
	}

	s.logger.Info("借阅记录已删除", zap.String("loan_id", loanID))
	return nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*dto.LoanResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toLoanResponse(loan, time.Now().UTC()), nil
}

func (s *loanService) ListLoans(ctx context.Context, page *dto.PaginationRequest) ([]dto.LoanWithBookResponse, int64, error) {
	loans, total, err := s.repo.Loan.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询借阅列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toLoanWithBookResponses(loans), total, nil
}

func (s *loanService) ListLoansByStatus(ctx context.Context, status string, page *dto.PaginationRequest) ([]dto.LoanWithBookResponse, error) {
	st := model.LoanStatus(status)
	if !st.Valid() {
		return nil, ErrInvalidLoanStatus
	}
	loans, err := s.repo.Loan.ListByStatus(ctx, st, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("按状态查询借阅失败", zap.Error(err))
		return nil, err
	}
	return toLoanWithBookResponses(loans), nil
}

func (s *loanService) ListUserLoans(ctx context.Context, userID, status string) ([]dto.LoanWithBookResponse, error) {
	var statusFilter *model.LoanStatus
	if status != "" {
		st := model.LoanStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidLoanStatus
		}
		statusFilter = &st
	}
	loans, err := s.repo.Loan.ListByUser(ctx, userID, statusFilter)
	if err != nil {
		s.logger.Error("查询用户借阅失败", zap.Error(err))
		return nil, err
	}
	return toLoanWithBookResponses(loans), nil
}

func (s *loanService) ListOverdueLoans(ctx context.Context) ([]dto.LoanWithBookResponse, error) {
	loans, err := s.repo.Loan.ListOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("查询逾期借阅失败", zap.Error(err))
		return nil, err
	}
	return toLoanWithBookResponses(loans), nil
}

func (s *loanService) SearchLoans(ctx context.Context, req *dto.SearchLoansRequest) ([]dto.LoanWithBookResponse, int64, error) {
	filter := repository.LoanSearchFilter{UserID: req.UserID}
	if req.Status != "" {
		st := model.LoanStatus(req.Status)
		if !st.Valid() {
			return nil, 0, ErrInvalidLoanStatus
		}
		filter.Status = st
	}
	if req.FromDate != "" {
		from, err := time.Parse("2006-01-02", req.FromDate)
		if err != nil {
			return nil, 0, ErrInvalidLoanStatus
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := time.Parse("2006-01-02", req.ToDate)
		if err != nil {
			return nil, 0, ErrInvalidLoanStatus
		}
		// 含当天：上界取次日零点
		toEnd := to.AddDate(0, 0, 1)
		filter.ToDate = &toEnd
	}

	loans, total, err := s.repo.Loan.Search(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("检索借阅失败", zap.Error(err))
		return nil, 0, err
	}
	return toLoanWithBookResponses(loans), total, nil
}

func (s *loanService) PreviewDueDate(ctx context.Context, userID, copyID string) (*dto.DueDatePreviewResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	days, method, courseCode, err := s.resolveLoanDays(ctx, user.UserID, copyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &dto.DueDatePreviewResponse{
		CopyID:            copyID,
		UserID:            userID,
		Role:              user.Role,
		LoanDays:          days,
		CalculationMethod: method,
		CourseCode:        courseCode,
		DueDate:           now.AddDate(0, 0, days),
	}, nil
}

// ════════════════════════════════════════════════════════════
// 逾期扫描
// ════════════════════════════════════════════════════════════

// RunOverdueSweep 重算所有已过应还时间的 active 借阅
// 逾期是派生视图而非存储状态，扫描不写库，和并发归还之间没有竞态
func (s *loanService) RunOverdueSweep(ctx context.Context) (int, error) {
	loans, err := s.repo.Loan.ListOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("逾期扫描失败", zap.Error(err))
		return 0, err
	}

	if len(loans) > 0 {
		s.logger.Warn("逾期扫描发现未归还借阅", zap.Int("count", len(loans)))
	} else {
		s.logger.Info("逾期扫描完成，无逾期借阅")
	}

	return len(loans), nil
}

// ════════════════════════════════════════════════════════════
// 借阅策略
// ════════════════════════════════════════════════════════════

func (s *loanService) ListPolicies(ctx context.Context) ([]dto.PolicyResponse, error) {
	policies, err := s.repo.Policy.List(ctx)
	if err != nil {
		s.logger.Error("查询借阅策略失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		result = append(result, dto.PolicyResponse{
			Role:     p.Role,
			MaxBooks: p.MaxBooks,
			LoanDays: p.LoanDays,
		})
	}
	return result, nil
}

func (s *loanService) GetPolicy(ctx context.Context, role string) (*dto.PolicyResponse, error) {
	policy, err := s.repo.Policy.GetByRole(ctx, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		s.logger.Error("查询借阅策略失败", zap.Error(err))
		return nil, err
	}
	return &dto.PolicyResponse{
		Role:     policy.Role,
		MaxBooks: policy.MaxBooks,
		LoanDays: policy.LoanDays,
	}, nil
}

func (s *loanService) UpdatePolicy(ctx context.Context, role string, req *dto.UpdatePolicyRequest) (*dto.PolicyResponse, error) {
	policy, err := s.repo.Policy.GetByRole(ctx, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		s.logger.Error("查询借阅策略失败", zap.Error(err))
		return nil, err
	}

	if req.MaxBooks != nil {
		policy.MaxBooks = *req.MaxBooks
	}
	if req.LoanDays != nil {
		policy.LoanDays = *req.LoanDays
	}

	if err := s.repo.Policy.Update(ctx, policy); err != nil {
		s.logger.Error("更新借阅策略失败", zap.Error(err))
		return nil, err
	}

	return &dto.PolicyResponse{
		Role:     policy.Role,
		MaxBooks: policy.MaxBooks,
		LoanDays: policy.LoanDays,
	}, nil
}

// ════════════════════════════════════════════════════════════
// 内部辅助
// ════════════════════════════════════════════════════════════

func (s *loanService) getLoan(ctx context.Context, loanID string) (*model.Loan, error) {
	loan, err := s.repo.Loan.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		s.logger.Error("查询借阅记录失败", zap.Error(err))
		return nil, err
	}
	return loan, nil
}

// resolveLoanDays 解析实际借期
//
// 优先级：学生选了某门课、且该课程把目标书目列为指定书目时，
// 取课程借期；否则取角色策略借期。限额（max_books）不受课程影响。
func (s *loanService) resolveLoanDays(ctx context.Context, userID, copyID string) (days int, method, courseCode string, err error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", "", ErrUserNotFound
		}
		return 0, "", "", err
	}

	copy, err := s.repo.Copy.GetByID(ctx, copyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", "", ErrCopyNotFound
		}
		return 0, "", "", err
	}

	if user.Role == model.RoleStudent {
		courses, err := s.repo.Course.ListCoursesByBook(ctx, copy.BookID)
		if err != nil {
			s.logger.Error("查询书目关联课程失败", zap.Error(err))
			return 0, "", "", err
		}
		if len(courses) > 0 {
			enrollments, err := s.repo.Course.ListEnrollmentsByStudent(ctx, userID)
			if err != nil {
				s.logger.Error("查询选课记录失败", zap.Error(err))
				return 0, "", "", err
			}
			enrolled := make(map[string]bool, len(enrollments))
			for _, e := range enrollments {
				enrolled[e.CourseCode] = true
			}
			for _, course := range courses {
				if enrolled[course.Code] {
					return course.CourseLoanDays, "course_override", course.Code, nil
				}
			}
		}
	}

	policy, err := s.repo.Policy.GetByRole(ctx, user.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("角色借阅策略缺失", zap.String("role", user.Role))
			return 0, "", "", ErrPolicyNotFound
		}
		return 0, "", "", err
	}

	return policy.LoanDays, "role_policy", "", nil
}

// toLoanResponse 转换单条借阅响应，is_overdue 按当前时刻派生
func toLoanResponse(loan *model.Loan, now time.Time) *dto.LoanResponse {
	return &dto.LoanResponse{
		ID:           loan.LoanID,
		CopyID:       loan.CopyID,
		UserID:       loan.UserID,
		Status:       string(loan.Status),
		RequestDate:  loan.RequestDate,
		ApprovalDate: loan.ApprovalDate,
		DueDate:      loan.DueDate,
		ReturnDate:   loan.ReturnDate,
		RejectReason: loan.RejectReason,
		IsOverdue:    loan.IsOverdue(now),
	}
}

// toLoanWithBookResponses 转换借阅+书目信息响应列表
func toLoanWithBookResponses(loans []model.Loan) []dto.LoanWithBookResponse {
	now := time.Now().UTC()
	result := make([]dto.LoanWithBookResponse, 0, len(loans))
	for i := range loans {
		loan := &loans[i]
		item := dto.LoanWithBookResponse{LoanResponse: *toLoanResponse(loan, now)}
		if loan.Copy != nil {
			item.AccessionNumber = loan.Copy.AccessionNumber
			item.BookID = loan.Copy.BookID
			if loan.Copy.Book != nil {
				item.Title = loan.Copy.Book.Title
				item.Author = loan.Copy.Book.Author
			}
		}
		result = append(result, item)
	}
	return result
}
