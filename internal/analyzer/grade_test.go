package analyzer

import "testing"

func TestConvertGradeToScoreTiers(t *testing.T) {
	tests := []struct {
		grade string
		level int
		want  float64
	}{
		{"优秀", 2023, 95},
		{"良好", 2023, 85},
		{"中等", 2023, 75},
		{"及格", 2023, 65},
		{"不及格", 2023, 55},
		{"优秀", 2024, 95},
		{"不及格", 2024, 55},
		{"优秀", 2022, 90},
		{"良好", 2022, 80},
		{"中等", 2022, 70},
		{"及格", 2022, 60},
		{"不及格", 2022, 50},
		// 年级无法解析时按 0 处理，走旧换算表
		{"优秀", 0, 90},
	}

	for _, tt := range tests {
		got := ConvertGradeToScore(tt.grade, tt.level)
		if got != tt.want {
			t.Errorf("ConvertGradeToScore(%q, %d) = %v, want %v", tt.grade, tt.level, got, tt.want)
		}
	}
}

func TestConvertGradeToScoreNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"85", 85},
		{"85.5", 85.5},
		{"100", 100},
		{"0.5", 0.5},
		{" 92 ", 92},
		// 超过 100 或不大于 0 视为无效
		{"100.1", 0},
		{"150", 0},
		{"0", 0},
		{"-5", 0},
		// 空值与无法解析的文本
		{"", 0},
		{"   ", 0},
		{"缺考", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		got := ConvertGradeToScore(tt.raw, 2022)
		if got != tt.want {
			t.Errorf("ConvertGradeToScore(%q, 2022) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestExtractCredits(t *testing.T) {
	tests := []struct {
		header string
		want   float64
	}{
		{"高等数学【3.5】", 3.5},
		{"花卉栽培与环境 【1.0】", 1},
		{"大学英语【4】", 4},
		{"高等数学", 0},
		{"高等数学【】", 0},
		{"高等数学【abc】", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got := ExtractCredits(tt.header)
		if got != tt.want {
			t.Errorf("ExtractCredits(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
