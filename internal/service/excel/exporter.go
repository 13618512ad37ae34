package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"zongce/internal/model"
)

// resultSheetName 结果工作表名
const resultSheetName = "综合成绩"

// Exporter 分析结果导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 将分析结果写入工作簿，行序即传入顺序（已按加权平均分降序）
func (e *Exporter) Export(results []model.ResultRow) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName("Sheet1", resultSheetName)

	headers := []string{
		"学号", "姓名", "年级", "修读课程数", "总学分", "学分加权平均分", "课程详情",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultSheetName, cell, h)
	}

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(resultSheetName, 1, 1, headerStyle)

	for i, r := range results {
		row := i + 2
		f.SetCellValue(resultSheetName, fmt.Sprintf("A%d", row), r.StudentID)
		f.SetCellValue(resultSheetName, fmt.Sprintf("B%d", row), r.Name)
		if r.Level > 0 {
			f.SetCellValue(resultSheetName, fmt.Sprintf("C%d", row), r.Level)
		} else {
			f.SetCellValue(resultSheetName, fmt.Sprintf("C%d", row), "未知")
		}
		f.SetCellValue(resultSheetName, fmt.Sprintf("D%d", row), r.CourseCount)
		f.SetCellValue(resultSheetName, fmt.Sprintf("E%d", row), r.TotalCredits)
		f.SetCellValue(resultSheetName, fmt.Sprintf("F%d", row), r.WeightedAverage)
		f.SetCellValue(resultSheetName, fmt.Sprintf("G%d", row), r.CourseDetail)
	}

	// 设置列宽
	f.SetColWidth(resultSheetName, "A", "A", 18)
	f.SetColWidth(resultSheetName, "B", "B", 12)
	f.SetColWidth(resultSheetName, "C", "F", 14)
	f.SetColWidth(resultSheetName, "G", "G", 80)

	return f, nil
}

// ExportToFile 导出并保存到指定路径
func (e *Exporter) ExportToFile(results []model.ResultRow, path string) error {
	f, err := e.Export(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save result file: %w", err)
	}
	return nil
}
