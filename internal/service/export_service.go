package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Steven-Nagy-788/eui-lib-sys/internal/model"
	"github.com/Steven-Nagy-788/eui-lib-sys/internal/repository"
)

// ExportService 导出业务接口
// Excel 报表面向管理员，ICS 日历面向借阅人自己订阅
type ExportService interface {
	// ExportLoansExcel 导出全部借阅流水为 xlsx
	ExportLoansExcel(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportOverdueExcel 导出当前逾期借阅为 xlsx
	ExportOverdueExcel(ctx context.Context) (*bytes.Buffer, string, error)
	// GenerateDueDateCalendar 生成用户在借图书的应还日期 ICS 日历
	GenerateDueDateCalendar(ctx context.Context, userID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var loanSheetHeaders = []string{
	"借阅编号", "登记号", "书名", "作者", "借阅人", "状态",
	"申请时间", "批准时间", "应还时间", "归还时间", "是否逾期",
}

func (s *exportService) ExportLoansExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	// 一次性拉全量，导出场景不分页
	loans, _, err := s.repo.Loan.Search(ctx, repository.LoanSearchFilter{}, 0, 100000)
	if err != nil {
		s.logger.Error("查询借阅流水失败", zap.Error(err))
		return nil, "", err
	}

	buf, err := s.buildLoanSheet("借阅流水", loans)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf, filename, nil
}

func (s *exportService) ExportOverdueExcel(ctx context.Context) (*bytes.Buffer, string, error) {
	loans, err := s.repo.Loan.ListOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("查询逾期借阅失败", zap.Error(err))
		return nil, "", err
	}

	buf, err := s.buildLoanSheet("逾期借阅", loans)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("overdue_loans_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf, filename, nil
}

func (s *exportService) buildLoanSheet(sheetName string, loans []model.Loan) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	// 表头样式：加粗 + 灰底
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return nil, err
	}

	for i, header := range loanSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	now := time.Now().UTC()
	for i := range loans {
		loan := &loans[i]
		row := i + 2

		var title, author string
		var accessionNumber int
		if loan.Copy != nil {
			accessionNumber = loan.Copy.AccessionNumber
			if loan.Copy.Book != nil {
				title = loan.Copy.Book.Title
				author = loan.Copy.Book.Author
			}
		}
		var borrower string
		if loan.User != nil {
			borrower = fmt.Sprintf("%s（%s）", loan.User.FullName, loan.User.UniversityID)
		}

		overdueFlag := "否"
		if loan.IsOverdue(now) {
			overdueFlag = "是"
		}

		values := []interface{}{
			loan.LoanID,
			accessionNumber,
			title,
			author,
			borrower,
			string(loan.Status),
			loan.RequestDate.Format("2006-01-02 15:04"),
			formatOptionalTime(loan.ApprovalDate),
			formatOptionalTime(loan.DueDate),
			formatOptionalTime(loan.ReturnDate),
			overdueFlag,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "C", "E", 24)
	f.SetColWidth(sheetName, "G", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, err
	}
	return buf, nil
}

func (s *exportService) GenerateDueDateCalendar(ctx context.Context, userID string) (string, error) {
	active := model.LoanActive
	loans, err := s.repo.Loan.ListByUser(ctx, userID, &active)
	if err != nil {
		s.logger.Error("查询用户借阅失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//eui-lib-sys//due-dates//ZH")

	now := time.Now().UTC()
	for i := range loans {
		loan := &loans[i]
		if loan.DueDate == nil {
			continue
		}

		title := "图书"
		if loan.Copy != nil && loan.Copy.Book != nil {
			title = loan.Copy.Book.Title
		}

		event := cal.AddEvent(fmt.Sprintf("loan-%s@eui-lib-sys", loan.LoanID))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		// 应还日期按全天事件呈现
		event.SetAllDayStartAt(*loan.DueDate)
		event.SetAllDayEndAt(loan.DueDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("还书提醒：%s", title))
		event.SetDescription(fmt.Sprintf("借阅编号 %s，应还日期 %s", loan.LoanID, loan.DueDate.Format("2006-01-02")))
	}

	return cal.Serialize(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
