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

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrCourseCodeTaken    = errors.New("课程代码已存在")
	ErrNotStudent         = errors.New("仅学生可选课")
	ErrAlreadyEnrolled    = errors.New("该学生本学期已选此课程")
	ErrEnrollmentNotFound = errors.New("选课记录不存在")
)

// CourseService 课程与选课业务接口
// 课程关联的指定书目会影响学生借阅该书的借期（course_loan_days 覆盖角色借期）
type CourseService interface {
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetCourse(ctx context.Context, code string) (*dto.CourseResponse, error)
	ListCourses(ctx context.Context) ([]dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, code string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, code string) error

	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	ListStudentEnrollments(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, enrollmentID string) error

	LinkBook(ctx context.Context, courseCode, bookID string) error
	UnlinkBook(ctx context.Context, courseCode, bookID string) error
	ListCourseBooks(ctx context.Context, courseCode string) ([]dto.BookResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := s.repo.Course.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCourseCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Code:    req.Code,
		Name:    req.Name,
		Term:    req.Term,
		Faculty: req.Faculty,
	}
	if req.CourseLoanDays > 0 {
		course.CourseLoanDays = req.CourseLoanDays
	} else {
		course.CourseLoanDays = 90
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

func (s *courseService) GetCourse(ctx context.Context, code string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, code string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Term != nil {
		course.Term = *req.Term
	}
	if req.Faculty != nil {
		course.Faculty = *req.Faculty
	}
	if req.CourseLoanDays != nil {
		course.CourseLoanDays = *req.CourseLoanDays
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

func (s *courseService) DeleteCourse(ctx context.Context, code string) error {
	if _, err := s.getCourse(ctx, code); err != nil {
		return err
	}
	return s.repo.Course.Delete(ctx, code)
}

func (s *courseService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}

	if _, err := s.getCourse(ctx, req.CourseCode); err != nil {
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID:  req.StudentID,
		CourseCode: req.CourseCode,
		Semester:   req.Semester,
	}
	if err := s.repo.Course.Enroll(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("创建选课记录失败", zap.Error(err))
		return nil, err
	}

	return &dto.EnrollmentResponse{
		ID:         enrollment.EnrollmentID,
		StudentID:  enrollment.StudentID,
		CourseCode: enrollment.CourseCode,
		Semester:   enrollment.Semester,
	}, nil
}

func (s *courseService) ListStudentEnrollments(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.Course.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		result = append(result, dto.EnrollmentResponse{
			ID:         e.EnrollmentID,
			StudentID:  e.StudentID,
			CourseCode: e.CourseCode,
			Semester:   e.Semester,
		})
	}
	return result, nil
}

func (s *courseService) Unenroll(ctx context.Context, enrollmentID string) error {
	if err := s.repo.Course.DeleteEnrollment(ctx, enrollmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		s.logger.Error("删除选课记录失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *courseService) LinkBook(ctx context.Context, courseCode, bookID string) error {
	if _, err := s.getCourse(ctx, courseCode); err != nil {
		return err
	}
	if _, err := s.repo.Book.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		s.logger.Error("查询书目失败", zap.Error(err))
		return err
	}
	return s.repo.Course.LinkBook(ctx, courseCode, bookID)
}

func (s *courseService) UnlinkBook(ctx context.Context, courseCode, bookID string) error {
	if _, err := s.getCourse(ctx, courseCode); err != nil {
		return err
	}
	return s.repo.Course.UnlinkBook(ctx, courseCode, bookID)
}

func (s *courseService) ListCourseBooks(ctx context.Context, courseCode string) ([]dto.BookResponse, error) {
	if _, err := s.getCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	books, err := s.repo.Course.ListBooksByCourse(ctx, courseCode)
	if err != nil {
		s.logger.Error("查询课程书目失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		result = append(result, *toBookResponse(&books[i]))
	}
	return result, nil
}

func (s *courseService) getCourse(ctx context.Context, code string) (*model.Course, error) {
	course, err := s.repo.Course.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	return course, nil
}

// toCourseResponse 转换课程响应
func toCourseResponse(course *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		Code:           course.Code,
		Name:           course.Name,
		Term:           course.Term,
		Faculty:        course.Faculty,
		CourseLoanDays: course.CourseLoanDays,
	}
}
