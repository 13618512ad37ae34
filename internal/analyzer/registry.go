package analyzer

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// majorCourseHeader 主要课程列表文件中的列名
const majorCourseHeader = "主要课程"

// LoadMajorCourses 从 Excel 文件加载主要课程名列表。
// 读取第一张工作表中名为"主要课程"的列；列不存在时返回空列表而非错误，
// 由调用方决定是否拒绝后续分析。课程名去除首尾空白，空值跳过。
func LoadMajorCourses(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open major course file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("major course file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read major course sheet: %w", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == majorCourseHeader {
			col = i
			break
		}
	}
	if col < 0 {
		log.Printf("警告：主要课程列表文件中未找到“%s”列，主要课程列表为空", majorCourseHeader)
		return []string{}, nil
	}

	courses := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[col])
		if name == "" {
			continue
		}
		courses = append(courses, name)
	}

	log.Printf("成功加载 %d 门主要课程", len(courses))
	return courses, nil
}

// IsMajorCourse 课程名包含任一主要课程名即视为主要课程。
// 比较前课程名已去掉学分标记，因此"高等数学（上）"能匹配主要课程"高等数学"。
func IsMajorCourse(name string, majorCourses []string) bool {
	for _, mc := range majorCourses {
		if strings.Contains(name, mc) {
			return true
		}
	}
	return false
}
