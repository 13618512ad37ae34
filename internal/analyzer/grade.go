package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// tierThresholdLevel 等级制换算表的分界年级：2023 级及以后使用新表
const tierThresholdLevel = 2023

var (
	tierScoresFrom2023   = map[string]float64{"优秀": 95, "良好": 85, "中等": 75, "及格": 65, "不及格": 55}
	tierScoresBefore2023 = map[string]float64{"优秀": 90, "良好": 80, "中等": 70, "及格": 60, "不及格": 50}
)

// ConvertGradeToScore 将原始成绩单元格换算为分数。
// 空值、无法解析、不大于 0 或超过 100 的成绩均视为无效，返回 0；
// 等级制成绩（优秀/良好/中等/及格/不及格）按年级选择换算表。
func ConvertGradeToScore(raw string, level int) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	table := tierScoresBefore2023
	if level >= tierThresholdLevel {
		table = tierScoresFrom2023
	}
	if score, ok := table[raw]; ok {
		return score
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	// 超过 100 分认为是无效成绩，而不是截断到 100
	if score > 100 || score <= 0 {
		return 0
	}
	return score
}

var creditsRe = regexp.MustCompile(`【(\d+\.?\d*)】`)

// ExtractCredits 从课程列名中提取学分数，如 "花卉栽培与环境 【1.0】" -> 1.0。
// 未找到学分标记返回 0，调用方据此判定该列不是课程列。
func ExtractCredits(header string) float64 {
	m := creditsRe.FindStringSubmatch(header)
	if len(m) != 2 {
		return 0
	}
	credits, _ := strconv.ParseFloat(m[1], 64)
	return credits
}
