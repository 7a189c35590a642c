package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Steven-Nagy-788/eui-lib-sys/config"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/dto"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
)

// ── 测试辅助 ──

type copyTestEnv struct {
	svc     CopyService
	loanSvc LoanService
	books   *mockBookRepo
	copies  *mockCopyRepo
	loans   *mockLoanRepo
	users   *mockUserRepo
}

func setupCopyTest() *copyTestEnv {
	loans := newMockLoanRepo()
	env := &copyTestEnv{
		books:  newMockBookRepo(),
		copies: newMockCopyRepo(loans),
		loans:  loans,
		users:  newMockUserRepo(),
	}
	repo := &repository.Repository{
		User:   env.users,
		Book:   env.books,
		Copy:   env.copies,
		Loan:   loans,
		Policy: newMockPolicyRepo(),
		Course: newMockCourseRepo(),
	}
	logger := zap.NewNop()
	cfg := &config.LoanConfig{ReferencePercentage: 30}
	env.svc = NewCopyService(repo, cfg, logger)
	env.loanSvc = NewLoanService(repo, logger)
	return env
}

func (env *copyTestEnv) seedBook(t *testing.T) *model.Book {
	t.Helper()
	book := &model.Book{ISBN: "978-7-111-40701-0", Title: "深入理解计算机系统", Author: "Bryant"}
	if err := env.books.Create(context.Background(), book); err != nil {
		t.Fatalf("预置书目失败: %v", err)
	}
	return book
}

// ── AddInventory 测试 ──

func TestAddInventory_ReferenceSplit(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)

	copies, err := env.svc.AddInventory(context.Background(), &dto.AddInventoryRequest{
		BookID:   book.BookID,
		Quantity: 10,
	})
	if err != nil {
		t.Fatalf("AddInventory 应成功: %v", err)
	}
	if len(copies) != 10 {
		t.Fatalf("期望 10 本，实际=%d", len(copies))
	}

	var reference int
	for _, c := range copies {
		if c.IsReference {
			reference++
		}
		if c.Status != string(model.CopyAvailable) {
			t.Errorf("新入库副本应为 available，实际=%s", c.Status)
		}
	}
	if reference != 3 {
		t.Errorf("30%% 比例下期望 3 本阅览本，实际=%d", reference)
	}
}

func TestAddInventory_SmallBatchAtLeastOneReference(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)

	copies, err := env.svc.AddInventory(context.Background(), &dto.AddInventoryRequest{
		BookID:   book.BookID,
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("AddInventory 应成功: %v", err)
	}

	var reference int
	for _, c := range copies {
		if c.IsReference {
			reference++
		}
	}
	// 比例非零时向上取整，至少保留一本阅览本
	if reference != 1 {
		t.Errorf("期望 1 本阅览本，实际=%d", reference)
	}
}

func TestAddInventory_BookNotFound(t *testing.T) {
	env := setupCopyTest()

	_, err := env.svc.AddInventory(context.Background(), &dto.AddInventoryRequest{
		BookID:   "missing",
		Quantity: 5,
	})
	if !errors.Is(err, ErrBookNotFound) {
		t.Errorf("期望 ErrBookNotFound，实际: %v", err)
	}
}

// ── 副本统计测试 ──

func TestGetBookCopyStats_SoftHoldExcluded(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)
	ctx := context.Background()

	if _, err := env.svc.AddInventory(ctx, &dto.AddInventoryRequest{BookID: book.BookID, Quantity: 10}); err != nil {
		t.Fatalf("入库应成功: %v", err)
	}

	stats, err := env.svc.GetBookCopyStats(ctx, book.BookID)
	if err != nil {
		t.Fatalf("统计应成功: %v", err)
	}
	// 10 本中 3 本阅览本，可借 7
	if stats.Total != 10 || stats.Reference != 3 || stats.Available != 7 {
		t.Fatalf("期望 total=10 reference=3 available=7，实际=%+v", stats)
	}

	// 对一本可借副本发起 pending 申请，可借量立即减一
	student := &model.User{UniversityID: "21-001", FullName: "学生", Email: "s@test.edu", PasswordHash: "x", Role: model.RoleStudent}
	env.users.Create(ctx, student)

	copies, _ := env.copies.ListByBook(ctx, book.BookID)
	var target string
	for _, c := range copies {
		if !c.IsReference {
			target = c.CopyID
			break
		}
	}
	if _, err := env.loanSvc.RequestLoan(ctx, student.UserID, &dto.CreateLoanRequest{CopyID: target}); err != nil {
		t.Fatalf("申请应成功: %v", err)
	}

	stats, _ = env.svc.GetBookCopyStats(ctx, book.BookID)
	if stats.Available != 6 {
		t.Errorf("pending 申请应软占用一本，期望 available=6，实际=%d", stats.Available)
	}
	if stats.Available < 0 {
		t.Error("可借量不得为负")
	}
}

// ── 更新 / 删除保护测试 ──

func TestUpdateCopy_InFlightGuard(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)
	ctx := context.Background()

	copy := &model.BookCopy{BookID: book.BookID, Status: model.CopyAvailable}
	env.copies.Create(ctx, copy)

	student := &model.User{UniversityID: "21-002", FullName: "学生", Email: "s2@test.edu", PasswordHash: "x", Role: model.RoleStudent}
	env.users.Create(ctx, student)
	if _, err := env.loanSvc.RequestLoan(ctx, student.UserID, &dto.CreateLoanRequest{CopyID: copy.CopyID}); err != nil {
		t.Fatalf("申请应成功: %v", err)
	}

	status := string(model.CopyMaintenance)
	_, err := env.svc.UpdateCopy(ctx, copy.CopyID, &dto.UpdateCopyRequest{Status: &status})
	if !errors.Is(err, ErrCopyInFlight) {
		t.Errorf("在途借阅期间改状态期望 ErrCopyInFlight，实际: %v", err)
	}

	// 不改状态的维护操作不受影响
	location := "三层 A 区"
	updated, err := env.svc.UpdateCopy(ctx, copy.CopyID, &dto.UpdateCopyRequest{Location: &location})
	if err != nil {
		t.Fatalf("更新存放位置应成功: %v", err)
	}
	if updated.Location != "三层 A 区" {
		t.Errorf("期望存放位置更新，实际=%s", updated.Location)
	}
}

func TestUpdateCopy_ManualOnLoanForbidden(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)
	ctx := context.Background()

	copy := &model.BookCopy{BookID: book.BookID, Status: model.CopyAvailable}
	env.copies.Create(ctx, copy)

	status := string(model.CopyOnLoan)
	_, err := env.svc.UpdateCopy(ctx, copy.CopyID, &dto.UpdateCopyRequest{Status: &status})
	if !errors.Is(err, ErrInvalidCopyStatus) {
		t.Errorf("手动置 on_loan 期望 ErrInvalidCopyStatus，实际: %v", err)
	}
}

func TestDeleteCopy_InFlightGuard(t *testing.T) {
	env := setupCopyTest()
	book := env.seedBook(t)
	ctx := context.Background()

	copy := &model.BookCopy{BookID: book.BookID, Status: model.CopyAvailable}
	env.copies.Create(ctx, copy)

	student := &model.User{UniversityID: "21-003", FullName: "学生", Email: "s3@test.edu", PasswordHash: "x", Role: model.RoleStudent}
	env.users.Create(ctx, student)
	if _, err := env.loanSvc.RequestLoan(ctx, student.UserID, &dto.CreateLoanRequest{CopyID: copy.CopyID}); err != nil {
		t.Fatalf("申请应成功: %v", err)
	}

	if err := env.svc.DeleteCopy(ctx, copy.CopyID); !errors.Is(err, ErrCopyInFlight) {
		t.Errorf("在途借阅期间删除期望 ErrCopyInFlight，实际: %v", err)
	}
}
