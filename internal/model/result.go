package model

// CourseRecord 学生修读的一门课程记录
type CourseRecord struct {
	Name         string  `json:"name"`         // 去掉学分后缀的课程名
	Score        float64 `json:"score"`        // 归一化后的成绩
	Credits      float64 `json:"credits"`      // 学分
	SourceHeader string  `json:"sourceHeader"` // 原始列名（含学分标记）
}

// ResultRow 单个学生的综合测评结果
type ResultRow struct {
	StudentID       string  `json:"studentId"`       // 学号
	Name            string  `json:"name"`            // 姓名
	Level           int     `json:"level"`           // 年级，0 表示未知
	CourseCount     int     `json:"courseCount"`     // 修读课程数（计入加权的课程）
	TotalCredits    float64 `json:"totalCredits"`    // 总学分
	WeightedAverage float64 `json:"weightedAverage"` // 学分加权平均分，保留两位小数
	CourseDetail    string  `json:"courseDetail"`    // 课程详情
}

// AnalysisRun 一次分析运行的记录
type AnalysisRun struct {
	ID           int64  `json:"id"`
	SessionID    string `json:"sessionId"`
	ResultFile   string `json:"resultFile"`
	ResultPath   string `json:"resultPath"`
	StudentCount int    `json:"studentCount"`
	SourceFiles  string `json:"sourceFiles"` // 成绩文件名，分号分隔
	CreatedAt    string `json:"createdAt"`
}
