package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
	pkgerrors "github.com/Steven-Nagy-788/eui-lib-sys/pkg/errors"
)

func loanInFlight(status model.LoanStatus) bool {
	return status == model.LoanPending || status == model.LoanPendingPickup || status == model.LoanActive
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	user.Version = 1
	stored := *user
	m.users[user.UserID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUniversityID(_ context.Context, universityID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UniversityID == universityID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

func (m *mockUserRepo) IncrementInfractions(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.InfractionsCount++
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock BookRepository ──

type mockBookRepo struct {
	mu    sync.Mutex
	books map[string]*model.Book
	seq   int
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[string]*model.Book)}
}

func (m *mockBookRepo) Create(_ context.Context, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if book.BookID == "" {
		m.seq++
		book.BookID = fmt.Sprintf("book-%03d", m.seq)
	}
	stored := *book
	m.books[book.BookID] = &stored
	return nil
}

func (m *mockBookRepo) GetByID(_ context.Context, id string) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookRepo) List(_ context.Context, offset, limit int, keyword string) ([]model.Book, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Book
	for _, b := range m.books {
		if keyword == "" || strings.Contains(b.Title, keyword) || strings.Contains(b.Author, keyword) {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockBookRepo) Update(_ context.Context, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *book
	m.books[book.BookID] = &copied
	return nil
}

func (m *mockBookRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

// ── Mock CopyRepository ──

// mockCopyRepo 持有 loan mock 的引用，用于复刻基于集合的可借量统计
type mockCopyRepo struct {
	mu     sync.Mutex
	copies map[string]*model.BookCopy
	loans  *mockLoanRepo
	seq    int
}

func newMockCopyRepo(loans *mockLoanRepo) *mockCopyRepo {
	return &mockCopyRepo{copies: make(map[string]*model.BookCopy), loans: loans}
}

func (m *mockCopyRepo) Create(_ context.Context, copy *model.BookCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(copy)
	return nil
}

func (m *mockCopyRepo) BatchCreate(_ context.Context, copies []model.BookCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range copies {
		m.insert(&copies[i])
	}
	return nil
}

func (m *mockCopyRepo) insert(copy *model.BookCopy) {
	m.seq++
	if copy.CopyID == "" {
		copy.CopyID = fmt.Sprintf("copy-%03d", m.seq)
	}
	if copy.AccessionNumber == 0 {
		copy.AccessionNumber = 10000 + m.seq
	}
	copy.Version = 1
	stored := *copy
	m.copies[copy.CopyID] = &stored
}

func (m *mockCopyRepo) GetByID(_ context.Context, id string) (*model.BookCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.copies[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCopyRepo) GetByAccessionNumber(_ context.Context, accessionNumber int) (*model.BookCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.copies {
		if c.AccessionNumber == accessionNumber {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCopyRepo) List(_ context.Context, offset, limit int) ([]model.BookCopy, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.BookCopy
	for _, c := range m.copies {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockCopyRepo) ListByBook(_ context.Context, bookID string) ([]model.BookCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.BookCopy
	for _, c := range m.copies {
		if c.BookID == bookID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCopyRepo) Update(_ context.Context, copy *model.BookCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.copies[copy.CopyID]
	if !ok || stored.Version != copy.Version {
		return pkgerrors.ErrOptimisticLock
	}
	copy.Version++
	copied := *copy
	m.copies[copy.CopyID] = &copied
	return nil
}

// TransitionStatus 复刻仓储层的 CAS 语义：前置状态不匹配即失败
func (m *mockCopyRepo) TransitionStatus(_ context.Context, copyID string, from, to model.CopyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.copies[copyID]
	if !ok || stored.Status != from {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = to
	stored.Version++
	return nil
}

func (m *mockCopyRepo) Stats(_ context.Context, bookID string) (*model.CopyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.loans.heldCopyIDs()
	stats := &model.CopyStats{}
	for _, c := range m.copies {
		if c.BookID != bookID {
			continue
		}
		stats.Total++
		if c.IsReference {
			stats.Reference++
		} else {
			stats.Circulating++
		}
		if c.Status == model.CopyAvailable && !c.IsReference && !held[c.CopyID] {
			stats.Available++
		}
	}
	return stats, nil
}

func (m *mockCopyRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.copies, id)
	return nil
}

// ── Mock LoanRepository ──

type mockLoanRepo struct {
	mu    sync.Mutex
	loans map[string]*model.Loan
	seq   int
}

func newMockLoanRepo() *mockLoanRepo {
	return &mockLoanRepo{loans: make(map[string]*model.Loan)}
}

// heldCopyIDs 当前被在途借阅占用的副本集合
func (m *mockLoanRepo) heldCopyIDs() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := make(map[string]bool)
	for _, l := range m.loans {
		if loanInFlight(l.Status) && l.Status != model.LoanActive {
			held[l.CopyID] = true
		}
	}
	return held
}

func (m *mockLoanRepo) Create(_ context.Context, loan *model.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 复刻部分唯一索引：同一副本至多一笔未终结借阅
	for _, l := range m.loans {
		if l.CopyID == loan.CopyID && loanInFlight(l.Status) {
			return gorm.ErrDuplicatedKey
		}
	}
	if loan.LoanID == "" {
		m.seq++
		loan.LoanID = fmt.Sprintf("loan-%03d", m.seq)
	}
	loan.Version = 1
	stored := *loan
	m.loans[loan.LoanID] = &stored
	return nil
}

func (m *mockLoanRepo) GetByID(_ context.Context, id string) (*model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loans[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLoanRepo) List(_ context.Context, offset, limit int) ([]model.Loan, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Loan
	for _, l := range m.loans {
		result = append(result, *l)
	}
	return result, int64(len(result)), nil
}

func (m *mockLoanRepo) ListByStatus(_ context.Context, status model.LoanStatus, offset, limit int) ([]model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Loan
	for _, l := range m.loans {
		if l.Status == status {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLoanRepo) ListByUser(_ context.Context, userID string, status *model.LoanStatus) ([]model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Loan
	for _, l := range m.loans {
		if l.UserID != userID {
			continue
		}
		if status != nil && l.Status != *status {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockLoanRepo) ListOverdue(_ context.Context, now time.Time) ([]model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Loan
	for _, l := range m.loans {
		if l.Status == model.LoanActive && l.DueDate != nil && now.After(*l.DueDate) {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLoanRepo) CountInFlightByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, l := range m.loans {
		if l.UserID == userID && loanInFlight(l.Status) {
			count++
		}
	}
	return count, nil
}

func (m *mockLoanRepo) HasInFlightForCopy(_ context.Context, copyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loans {
		if l.CopyID == copyID && loanInFlight(l.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLoanRepo) HasInFlightForUserAndCopy(_ context.Context, userID, copyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loans {
		if l.UserID == userID && l.CopyID == copyID && loanInFlight(l.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLoanRepo) Update(_ context.Context, loan *model.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.loans[loan.LoanID]
	if !ok || stored.Version != loan.Version {
		return pkgerrors.ErrOptimisticLock
	}
	loan.Version++
	copied := *loan
	m.loans[loan.LoanID] = &copied
	return nil
}

func (m *mockLoanRepo) Search(_ context.Context, filter repository.LoanSearchFilter, offset, limit int) ([]model.Loan, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Loan
	for _, l := range m.loans {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.FromDate != nil && l.RequestDate.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !l.RequestDate.Before(*filter.ToDate) {
			continue
		}
		result = append(result, *l)
	}
	return result, int64(len(result)), nil
}

func (m *mockLoanRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.loans, id)
	return nil
}

// ── Mock PolicyRepository ──

type mockPolicyRepo struct {
	mu       sync.Mutex
	policies map[string]*model.LoanPolicy
}

func newMockPolicyRepo() *mockPolicyRepo {
	// 预置默认策略，与初始迁移保持一致
	return &mockPolicyRepo{policies: map[string]*model.LoanPolicy{
		model.RoleStudent:   {Role: model.RoleStudent, MaxBooks: 3, LoanDays: 14},
		model.RoleTA:        {Role: model.RoleTA, MaxBooks: 5, LoanDays: 21},
		model.RoleProfessor: {Role: model.RoleProfessor, MaxBooks: 10, LoanDays: 30},
		model.RoleAdmin:     {Role: model.RoleAdmin, MaxBooks: 20, LoanDays: 60},
	}}
}

func (m *mockPolicyRepo) GetByRole(_ context.Context, role string) (*model.LoanPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.policies[role]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) List(_ context.Context) ([]model.LoanPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LoanPolicy
	for _, p := range m.policies {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPolicyRepo) Update(_ context.Context, policy *model.LoanPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *policy
	m.policies[policy.Role] = &copied
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	mu          sync.Mutex
	courses     map[string]*model.Course
	enrollments map[string]*model.Enrollment
	courseBooks map[string][]string // courseCode -> bookIDs
	seq         int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:     make(map[string]*model.Course),
		enrollments: make(map[string]*model.Enrollment),
		courseBooks: make(map[string][]string),
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *course
	m.courses[course.Code] = &stored
	return nil
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *course
	m.courses[course.Code] = &copied
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.courses, code)
	return nil
}

func (m *mockCourseRepo) Enroll(_ context.Context, enrollment *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseCode == enrollment.CourseCode && e.Semester == enrollment.Semester {
			return gorm.ErrDuplicatedKey
		}
	}
	if enrollment.EnrollmentID == "" {
		m.seq++
		enrollment.EnrollmentID = fmt.Sprintf("enroll-%03d", m.seq)
	}
	stored := *enrollment
	m.enrollments[enrollment.EnrollmentID] = &stored
	return nil
}

func (m *mockCourseRepo) ListEnrollmentsByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) DeleteEnrollment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.enrollments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.enrollments, id)
	return nil
}

func (m *mockCourseRepo) LinkBook(_ context.Context, courseCode, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courseBooks[courseCode] = append(m.courseBooks[courseCode], bookID)
	return nil
}

func (m *mockCourseRepo) UnlinkBook(_ context.Context, courseCode, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := m.courseBooks[courseCode]
	for i, id := range books {
		if id == bookID {
			m.courseBooks[courseCode] = append(books[:i], books[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockCourseRepo) ListCoursesByBook(_ context.Context, bookID string) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Course
	for code, books := range m.courseBooks {
		for _, id := range books {
			if id == bookID {
				if c, ok := m.courses[code]; ok {
					result = append(result, *c)
				}
				break
			}
		}
	}
	return result, nil
}

func (m *mockCourseRepo) ListBooksByCourse(_ context.Context, courseCode string) ([]model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Book
	for _, id := range m.courseBooks[courseCode] {
		result = append(result, model.Book{BookID: id})
	}
	return result, nil
}
