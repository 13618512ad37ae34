package analyzer

import (
	"errors"
	"strings"
)

// 成绩表中按包含关系识别的表头关键字
const (
	headerStudentID = "学号"
	headerLevel     = "年级"
	headerName      = "姓名"
)

// ErrNoStudentIDColumn 成绩表缺少学号列，该表应整体跳过
var ErrNoStudentIDColumn = errors.New("no student id column")

// courseColumn 一列课程及其预提取的学分
type courseColumn struct {
	Index   int
	Name    string // 去掉学分标记后的课程名
	Header  string // 原始列名
	Credits float64
}

// sourceSchema 单个成绩表的列定位结果。
// 各成绩表的列布局互不相同，每个文件单独定位一次。
type sourceSchema struct {
	StudentIDCol int
	LevelCol     int // -1 表示缺失
	NameCol      int // -1 表示缺失
	Courses      []courseColumn
}

// resolveSchema 在处理数据行之前先定位各列。
// 取第一个包含对应关键字的列作为学号/年级/姓名列；年级、姓名列允许缺失。
// 课程列按【学分】标记识别，学分无效（缺失或 ≤0）的列不计入。
func resolveSchema(header []string) (*sourceSchema, error) {
	schema := &sourceSchema{StudentIDCol: -1, LevelCol: -1, NameCol: -1}

	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case schema.StudentIDCol < 0 && strings.Contains(h, headerStudentID):
			schema.StudentIDCol = i
			continue
		case schema.LevelCol < 0 && strings.Contains(h, headerLevel):
			schema.LevelCol = i
			continue
		case schema.NameCol < 0 && strings.Contains(h, headerName):
			schema.NameCol = i
			continue
		}

		credits := ExtractCredits(h)
		if credits <= 0 {
			continue
		}
		name := strings.TrimSpace(strings.SplitN(h, "【", 2)[0])
		schema.Courses = append(schema.Courses, courseColumn{
			Index:   i,
			Name:    name,
			Header:  h,
			Credits: credits,
		})
	}

	if schema.StudentIDCol < 0 {
		return nil, ErrNoStudentIDColumn
	}
	return schema, nil
}
