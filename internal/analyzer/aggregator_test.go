package analyzer

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook 在指定路径生成只有一张 Sheet1 的测试工作簿
func writeWorkbook(t *testing.T, path string, header []string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &hdr); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
}

func TestAggregateWeightedAverage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	writeWorkbook(t, path,
		[]string{"学号", "姓名", "年级", "高等数学【3.0】", "大学英语【2.0】"},
		[][]interface{}{
			{"2022001", "张三", 2022, 90, 80},
		})

	results, err := Aggregate([]string{"高等数学"}, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d rows, want 1", len(results))
	}

	r := results[0]
	if r.StudentID != "2022001" || r.Name != "张三" || r.Level != 2022 {
		t.Errorf("identity fields = %+v", r)
	}
	if r.CourseCount != 2 {
		t.Errorf("CourseCount = %d, want 2", r.CourseCount)
	}
	if r.TotalCredits != 5 {
		t.Errorf("TotalCredits = %v, want 5", r.TotalCredits)
	}
	// (90×3 + 80×2) / 5 = 86.00
	if r.WeightedAverage != 86 {
		t.Errorf("WeightedAverage = %v, want 86", r.WeightedAverage)
	}
	want := "高等数学(90分,3学分)[主要课程]; 大学英语(80分,2学分)[其他课程]"
	if r.CourseDetail != want {
		t.Errorf("CourseDetail = %q, want %q", r.CourseDetail, want)
	}
}

func TestAggregateOtherCourseCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	writeWorkbook(t, path,
		[]string{"学号", "姓名", "年级",
			"语文【2.0】",
			"课程A【1.0】", "课程B【1.0】", "课程C【1.0】",
			"课程D【1.0】", "课程E【1.0】", "课程F【1.0】"},
		[][]interface{}{
			{"2022001", "李四", 2022, 88, 70, 95, 60, 80, 75, 85},
		})

	results, err := Aggregate([]string{"语文"}, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	r := results[0]
	// 主要课程 1 门 + 其他课程取前 4 门
	if r.CourseCount != 5 {
		t.Errorf("CourseCount = %d, want 5", r.CourseCount)
	}
	if r.TotalCredits != 6 {
		t.Errorf("TotalCredits = %v, want 6", r.TotalCredits)
	}

	// 其他课程成绩降序：B(95) F(85) D(80) E(75)；A(70) C(60) 被剔除
	for _, name := range []string{"课程B", "课程F", "课程D", "课程E"} {
		if !strings.Contains(r.CourseDetail, name) {
			t.Errorf("CourseDetail should contain %s: %q", name, r.CourseDetail)
		}
	}
	for _, name := range []string{"课程A", "课程C"} {
		if strings.Contains(r.CourseDetail, name) {
			t.Errorf("CourseDetail should not contain %s: %q", name, r.CourseDetail)
		}
	}

	// (88×2 + 95 + 85 + 80 + 75) / 6 = 85.17
	if r.WeightedAverage != 85.17 {
		t.Errorf("WeightedAverage = %v, want 85.17", r.WeightedAverage)
	}
}

func TestAggregateCapTieStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	writeWorkbook(t, path,
		[]string{"学号",
			"课程A【1.0】", "课程B【1.0】", "课程C【1.0】",
			"课程D【1.0】", "课程E【1.0】"},
		[][]interface{}{
			// D 与 E 同为 70 分，先出现的 D 保留
			{"2022001", 90, 85, 80, 70, 70},
		})

	results, err := Aggregate(nil, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	detail := results[0].CourseDetail
	if !strings.Contains(detail, "课程D") {
		t.Errorf("课程D should be kept: %q", detail)
	}
	if strings.Contains(detail, "课程E") {
		t.Errorf("课程E should be dropped: %q", detail)
	}
}

func TestAggregateMultiFileMerge(t *testing.T) {
	dir := t.TempDir()
	path1 := filepath.Join(dir, "第一学期.xlsx")
	path2 := filepath.Join(dir, "第二学期.xlsx")

	writeWorkbook(t, path1,
		[]string{"学号", "姓名", "年级", "高等数学【3.0】", "体育【1.0】"},
		[][]interface{}{
			{"2023001", "王五", 2023, "优秀", 80},
		})
	// 第二学期的体育与第一学期同名，按文件序号区分，两条记录都保留
	writeWorkbook(t, path2,
		[]string{"学号", "姓名", "年级", "线性代数【2.0】", "体育【1.0】"},
		[][]interface{}{
			{"2023001", "王五", 2023, 92, 85},
		})

	results, err := Aggregate([]string{"高等数学", "线性代数"}, []string{path1, path2})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d rows, want 1 (merged)", len(results))
	}

	r := results[0]
	// 高等数学 + 线性代数 + 两个学期的体育
	if r.CourseCount != 4 {
		t.Errorf("CourseCount = %d, want 4", r.CourseCount)
	}
	if r.TotalCredits != 7 {
		t.Errorf("TotalCredits = %v, want 7", r.TotalCredits)
	}
	// 2023 级等级制：优秀 -> 95
	if !strings.Contains(r.CourseDetail, "高等数学(95分,3学分)[主要课程]") {
		t.Errorf("CourseDetail = %q", r.CourseDetail)
	}
	if strings.Count(r.CourseDetail, "体育(") != 2 {
		t.Errorf("both semesters of 体育 should be kept: %q", r.CourseDetail)
	}
}

func TestAggregateSkipsInvalidCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	writeWorkbook(t, path,
		[]string{"学号", "姓名", "年级", "课程A【1.0】", "课程B【1.0】", "课程C【1.0】", "课程D【1.0】"},
		[][]interface{}{
			// 0 分、超过 100 分、空值均视为未修读
			{"2022001", "赵六", 2022, 0, 120, "", 88},
			// 学号为空的行整体跳过
			{"", "孙七", 2022, 90, 90, 90, 90},
		})

	results, err := Aggregate(nil, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d rows, want 1", len(results))
	}

	r := results[0]
	if r.CourseCount != 1 {
		t.Errorf("CourseCount = %d, want 1", r.CourseCount)
	}
	if r.WeightedAverage != 88 {
		t.Errorf("WeightedAverage = %v, want 88", r.WeightedAverage)
	}
}

func TestAggregateFallbackNameAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	// 无姓名列、无年级列
	writeWorkbook(t, path,
		[]string{"学号", "课程A【1.0】"},
		[][]interface{}{
			{"2022001", "优秀"},
		})

	results, err := Aggregate(nil, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	r := results[0]
	if r.Name != "学生2022001" {
		t.Errorf("Name = %q, want 学生2022001", r.Name)
	}
	if r.Level != 0 {
		t.Errorf("Level = %d, want 0", r.Level)
	}
	// 年级未知时按 2023 级之前的换算表：优秀 -> 90
	if r.WeightedAverage != 90 {
		t.Errorf("WeightedAverage = %v, want 90", r.WeightedAverage)
	}
}

func TestAggregateSkipsSourceWithoutStudentID(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.xlsx")
	good := filepath.Join(dir, "good.xlsx")

	writeWorkbook(t, bad,
		[]string{"姓名", "课程A【1.0】"},
		[][]interface{}{{"张三", 90}})
	writeWorkbook(t, good,
		[]string{"学号", "姓名", "课程A【1.0】"},
		[][]interface{}{{"2022001", "张三", 90}})

	results, err := Aggregate(nil, []string{bad, good})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d rows, want 1 from the valid source", len(results))
	}
}

func TestAggregateNoValidData(t *testing.T) {
	if _, err := Aggregate(nil, nil); err == nil {
		t.Fatal("expected error for empty path list")
	}

	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	writeWorkbook(t, bad,
		[]string{"姓名", "课程A【1.0】"},
		[][]interface{}{{"张三", 90}})

	if _, err := Aggregate(nil, []string{bad}); err == nil {
		t.Fatal("expected error when no source yields students")
	}
}

func TestAggregateRankingAndIdempotence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "成绩.xlsx")
	writeWorkbook(t, path,
		[]string{"学号", "姓名", "年级", "课程A【2.0】", "课程B【1.0】"},
		[][]interface{}{
			{"2022001", "张三", 2022, 70, 75},
			{"2022002", "李四", 2022, 95, 90},
			{"2022003", "王五", 2022, 85, 80},
		})

	first, err := Aggregate(nil, []string{path})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// 按学分加权平均分降序
	wantOrder := []string{"2022002", "2022003", "2022001"}
	for i, id := range wantOrder {
		if first[i].StudentID != id {
			t.Errorf("results[%d].StudentID = %q, want %q", i, first[i].StudentID, id)
		}
	}

	second, err := Aggregate(nil, []string{path})
	if err != nil {
		t.Fatalf("second Aggregate failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
