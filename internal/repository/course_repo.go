package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, code string) error

	Enroll(ctx context.Context, enrollment *model.Enrollment) error
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	DeleteEnrollment(ctx context.Context, id string) error

	LinkBook(ctx context.Context, courseCode, bookID string) error
	UnlinkBook(ctx context.Context, courseCode, bookID string) error
	ListCoursesByBook(ctx context.Context, bookID string) ([]model.Course, error)
	ListBooksByCourse(ctx context.Context, courseCode string) ([]model.Book, error)
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("code = ?", course.Code).
		Updates(map[string]interface{}{
			"name":             course.Name,
			"term":             course.Term,
			"faculty":          course.Faculty,
			"course_loan_days": course.CourseLoanDays,
		}).Error
}

func (r *courseRepo) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Where("code = ?", code).
		Delete(&model.Course{}).Error
}

// ── 选课记录 ──

func (r *courseRepo) Enroll(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *courseRepo) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *courseRepo) DeleteEnrollment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("enrollment_id = ?", id).
		Delete(&model.Enrollment{}).Error
}

// ── 课程指定书目 ──

func (r *courseRepo) LinkBook(ctx context.Context, courseCode, bookID string) error {
	return r.db.WithContext(ctx).Create(&model.CourseBook{
		CourseCode: courseCode,
		BookID:     bookID,
	}).Error
}

func (r *courseRepo) UnlinkBook(ctx context.Context, courseCode, bookID string) error {
	return r.db.WithContext(ctx).
		Where("course_code = ? AND book_id = ?", courseCode, bookID).
		Delete(&model.CourseBook{}).Error
}

func (r *courseRepo) ListCoursesByBook(ctx context.Context, bookID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_books ON course_books.course_code = courses.code").
		Where("course_books.book_id = ?", bookID).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListBooksByCourse(ctx context.Context, courseCode string) ([]model.Book, error) {
	var books []model.Book
	err := r.db.WithContext(ctx).
		Joins("JOIN course_books ON course_books.book_id = books.book_id").
		Where("course_books.course_code = ?", courseCode).
		Find(&books).Error
	return books, err
}
