package analyzer

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"zongce/internal/model"
)

// otherCourseCap 其他课程计入加权平均的最大门数
const otherCourseCap = 4

// studentLedger 跨文件累积的单个学生课程台账。
// 课程以 "课程名_文件序号" 为键，不同文件里的同名课程互不覆盖，
// 同一文件内的同名课程后者覆盖前者。姓名、年级以首次出现为准。
type studentLedger struct {
	ID      string
	Name    string
	Level   int
	courses map[string]*model.CourseRecord
	order   []string // 课程键的首次出现顺序，保证结果可复现
}

func (l *studentLedger) put(key string, rec *model.CourseRecord) {
	if _, ok := l.courses[key]; !ok {
		l.order = append(l.order, key)
	}
	l.courses[key] = rec
}

// Aggregate 处理全部成绩表并计算每个学生的学分加权平均分。
// majorCourses 为主要课程名列表，作为值传入，调用方每次分析构造一次；
// 主要课程全部计入加权，其他课程按成绩降序只取前 4 门。
// 返回结果按加权平均分降序排列。
func Aggregate(majorCourses []string, paths []string) ([]model.ResultRow, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no grade files to process")
	}

	ledgers := make(map[string]*studentLedger)
	ledgerOrder := make([]string, 0)

	for fileIdx, path := range paths {
		if err := scanSource(path, fileIdx+1, ledgers, &ledgerOrder); err != nil {
			log.Printf("警告：处理文件 %s 失败，已跳过: %v", path, err)
			continue
		}
	}

	if len(ledgerOrder) == 0 {
		return nil, fmt.Errorf("no valid student data in any source")
	}

	results := make([]model.ResultRow, 0, len(ledgerOrder))
	for _, id := range ledgerOrder {
		results = append(results, summarize(ledgers[id], majorCourses))
	}

	// 按学分加权平均分降序；稳定排序保证同分时维持首次出现顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].WeightedAverage > results[j].WeightedAverage
	})

	log.Printf("处理完成，共 %d 名学生", len(results))
	return results, nil
}

// scanSource 扫描单个成绩表，把有效成绩并入学生台账
func scanSource(path string, fileIdx int, ledgers map[string]*studentLedger, order *[]string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open grade file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("grade file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read grade sheet: %w", err)
	}
	if len(rows) <= 1 {
		return nil
	}

	schema, err := resolveSchema(rows[0])
	if err != nil {
		return err
	}
	log.Printf("文件 %s：找到有效课程 %d 门", path, len(schema.Courses))

	for _, row := range rows[1:] {
		studentID := getCell(row, schema.StudentIDCol)
		if studentID == "" {
			continue
		}

		level := parseLevel(getCell(row, schema.LevelCol))

		ledger, ok := ledgers[studentID]
		if !ok {
			name := getCell(row, schema.NameCol)
			if name == "" {
				name = "学生" + studentID
			}
			ledger = &studentLedger{
				ID:      studentID,
				Name:    name,
				Level:   level,
				courses: make(map[string]*model.CourseRecord),
			}
			ledgers[studentID] = ledger
			*order = append(*order, studentID)
		}

		for _, col := range schema.Courses {
			score := ConvertGradeToScore(getCell(row, col.Index), level)
			// 成绩为 0 视为未修读该课程，不计入台账
			if score <= 0 {
				continue
			}
			ledger.put(fmt.Sprintf("%s_%d", col.Name, fileIdx), &model.CourseRecord{
				Name:         col.Name,
				Score:        score,
				Credits:      col.Credits,
				SourceHeader: col.Header,
			})
		}
	}

	return nil
}

// summarize 对单个学生的台账做主要/其他课程划分并计算加权平均分
func summarize(l *studentLedger, majorCourses []string) model.ResultRow {
	major := make([]*model.CourseRecord, 0, len(l.order))
	other := make([]*model.CourseRecord, 0, len(l.order))

	for _, key := range l.order {
		rec := l.courses[key]
		if IsMajorCourse(rec.Name, majorCourses) {
			major = append(major, rec)
		} else {
			other = append(other, rec)
		}
	}

	// 其他课程按成绩降序取前 4 门；稳定排序保证同分按首次出现顺序
	sort.SliceStable(other, func(i, j int) bool {
		return other[i].Score > other[j].Score
	})
	if len(other) > otherCourseCap {
		log.Printf("注意：学生 %s 的其他课程超过 %d 门，仅取成绩最高的 %d 门", l.ID, otherCourseCap, otherCourseCap)
		other = other[:otherCourseCap]
	}

	var totalWeighted, totalCredits float64
	details := make([]string, 0, len(major)+len(other))

	addCourse := func(rec *model.CourseRecord, tag string) {
		totalWeighted += rec.Score * rec.Credits
		totalCredits += rec.Credits
		details = append(details, fmt.Sprintf("%s(%s分,%s学分)[%s]",
			rec.Name, formatNumber(rec.Score), formatNumber(rec.Credits), tag))
	}

	for _, rec := range major {
		addCourse(rec, "主要课程")
	}
	for _, rec := range other {
		addCourse(rec, "其他课程")
	}

	avg := 0.0
	if totalCredits > 0 {
		avg = totalWeighted / totalCredits
	}

	return model.ResultRow{
		StudentID:       l.ID,
		Name:            l.Name,
		Level:           l.Level,
		CourseCount:     len(major) + len(other),
		TotalCredits:    totalCredits,
		WeightedAverage: math.Round(avg*100) / 100,
		CourseDetail:    strings.Join(details, "; "),
	}
}

// parseLevel 解析年级。无法解析或缺失时返回 0，按 2023 级之前的换算表处理
func parseLevel(raw string) int {
	level, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return level
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// formatNumber 去掉无意义的尾零，如 95 -> "95"，3.50 -> "3.5"
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
