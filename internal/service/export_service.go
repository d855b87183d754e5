package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Oskru/study-smart/internal/dto"
	"github.com/Oskru/study-smart/internal/timegrid"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTally 导出投票热力图为 Excel
	ExportTally(ctx context.Context, req *dto.TallyRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	votes   VoteService
	catalog *timegrid.Catalog
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(votes VoteService, catalog *timegrid.Catalog, logger *zap.Logger) ExportService {
	return &exportService{votes: votes, catalog: catalog, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTally 导出投票热力图
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 行头：目录小时；列头：目录星期
//   - 单元格：票数，底色按 票数/最高票 分 5 档着色
//   - 末行：投票人数

// heatColors 由浅到深的 5 档底色
var heatColors = []string{"#FFFFFF", "#DEEBF7", "#9DC3E6", "#2E75B6", "#1F4E79"}

func (s *exportService) ExportTally(ctx context.Context, req *dto.TallyRequest) (*bytes.Buffer, string, error) {
	tally, err := s.votes.Tally(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "偏好统计"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	for i := range tally.Days {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 12)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	heatStyles := make([]int, len(heatColors))
	for i, color := range heatColors {
		font := &excelize.Font{Size: 11}
		if i >= 3 {
			font.Color = "#FFFFFF"
		}
		heatStyles[i], _ = f.NewStyle(&excelize.Style{
			Font:      font,
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
	}

	// 表头
	f.SetCellValue(sheetName, "A1", "时间")
	for i, day := range tally.Days {
		f.SetCellValue(sheetName, cell(colName(1+i), 1), day)
	}
	lastHeader := cell(colName(len(tally.Days)), 1)
	f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	// 数据行：小时 × 星期
	for j, hour := range tally.Hours {
		row := j + 2
		f.SetCellValue(sheetName, cell("A", row), hour)
		for i := range tally.Days {
			n := tally.Matrix[i][j]
			ref := cell(colName(1+i), row)
			f.SetCellValue(sheetName, ref, n)
			f.SetCellStyle(sheetName, ref, ref, heatStyles[heatLevel(n, tally.Max)])
		}
	}

	footer := len(tally.Hours) + 3
	f.SetCellValue(sheetName, cell("A", footer), "投票人数")
	f.SetCellValue(sheetName, cell("B", footer), tally.Voters)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, tallyFilename(req), nil
}

// heatLevel 票数映射到色阶，0 票始终为最浅一档
func heatLevel(n, top int) int {
	if n <= 0 || top <= 0 {
		return 0
	}
	level := (n*(len(heatColors)-1) + top - 1) / top
	if level >= len(heatColors) {
		level = len(heatColors) - 1
	}
	return level
}

func tallyFilename(req *dto.TallyRequest) string {
	name := "偏好统计"
	for _, id := range []string{req.GroupID, req.CourseID} {
		if id == "" {
			continue
		}
		if len(id) > 8 {
			id = id[:8]
		}
		name += "_" + id
	}
	return name + ".xlsx"
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
