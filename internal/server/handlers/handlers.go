package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"zongce/internal/analyzer"
	"zongce/internal/config"
	"zongce/internal/model"
	"zongce/internal/service/excel"
	"zongce/internal/store"
)

// Version 对外暴露的服务版本号
const Version = "1.0.0"

// session 一次上传-分析会话的内存状态。
// 每个会话有独立的上传目录和独立构造的分析流程，互不共享可变状态。
type session struct {
	GradeFiles     []string // 成绩文件绝对路径，按上传顺序
	GradeNames     []string // 成绩文件原始文件名
	MainCourseFile string   // 主要课程列表文件绝对路径

	Results    []model.ResultRow
	ResultFile string
	ResultPath string
}

// Handlers API处理器
type Handlers struct {
	cfg     *config.AppConfig
	store   *store.Store
	dataDir string

	sessions   map[string]*session
	sessionsMu sync.RWMutex
}

// NewHandlers 创建处理器
func NewHandlers(cfg *config.AppConfig, st *store.Store, dataDir string) *Handlers {
	return &Handlers{
		cfg:      cfg,
		store:    st,
		dataDir:  dataDir,
		sessions: make(map[string]*session),
	}
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// RegisterRoutes 注册 API 路由
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.Status)
	router.POST("/upload", h.Upload)
	router.POST("/analyze", h.Analyze)
	router.GET("/results/:sessionId", h.GetResults)
	router.GET("/download/:sessionId", h.Download)
	router.GET("/history", h.History)
}

// Status API状态检查
func (h *Handlers) Status(c *gin.Context) {
	success(c, gin.H{
		"status":  "running",
		"message": "成绩分析服务正在运行",
		"version": Version,
	})
}

// allowedFile 检查文件扩展名是否允许
func allowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xls"
}

// saveUpload 校验并保存单个上传文件，返回保存后的绝对路径
func (h *Handlers) saveUpload(c *gin.Context, fh *multipart.FileHeader, dir string) (string, error) {
	if !allowedFile(fh.Filename) {
		return "", fmt.Errorf("仅支持 .xlsx 和 .xls 格式: %s", fh.Filename)
	}

	maxSize := int64(h.cfg.Upload.MaxFileSizeMB) << 20
	if fh.Size > maxSize {
		return "", fmt.Errorf("文件过大，最大支持%dMB: %s", h.cfg.Upload.MaxFileSizeMB, fh.Filename)
	}

	// 只保留文件名部分，防止路径穿越
	name := filepath.Base(fh.Filename)
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}
	return path, nil
}

// Upload 处理文件上传
// 表单字段：grade_files（成绩文件，可多个）、main_course_file（主要课程列表，必需）
func (h *Handlers) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, 1001, "请上传文件")
		return
	}

	gradeFiles := form.File["grade_files"]
	if len(gradeFiles) == 0 {
		errorResponse(c, 1001, "请选择成绩文件")
		return
	}

	mainFiles := form.File["main_course_file"]
	if len(mainFiles) == 0 {
		errorResponse(c, 1001, "主要课程列表文件是必需的")
		return
	}

	sessionID := uuid.New().String()
	sessionDir := filepath.Join(h.dataDir, "uploads", sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		errorResponse(c, 5001, "创建上传目录失败")
		return
	}

	sess := &session{}

	for _, fh := range gradeFiles {
		path, err := h.saveUpload(c, fh, sessionDir)
		if err != nil {
			errorResponse(c, 1002, err.Error())
			return
		}
		sess.GradeFiles = append(sess.GradeFiles, path)
		sess.GradeNames = append(sess.GradeNames, filepath.Base(fh.Filename))
	}

	mainPath, err := h.saveUpload(c, mainFiles[0], sessionDir)
	if err != nil {
		errorResponse(c, 1002, err.Error())
		return
	}
	sess.MainCourseFile = mainPath

	h.sessionsMu.Lock()
	h.sessions[sessionID] = sess
	h.sessionsMu.Unlock()

	files := append([]string{}, sess.GradeNames...)
	files = append(files, filepath.Base(mainPath))

	success(c, gin.H{
		"sessionId": sessionID,
		"files":     files,
	})
}

// Analyze 执行成绩分析
func (h *Handlers) Analyze(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		errorResponse(c, 1001, "参数错误")
		return
	}

	h.sessionsMu.RLock()
	sess, ok := h.sessions[req.SessionID]
	h.sessionsMu.RUnlock()
	if !ok {
		errorResponse(c, 1004, "请先上传文件")
		return
	}

	majorCourses, err := analyzer.LoadMajorCourses(sess.MainCourseFile)
	if err != nil {
		errorResponse(c, 2001, "加载主要课程列表失败: "+err.Error())
		return
	}
	if len(majorCourses) == 0 {
		errorResponse(c, 2002, "主要课程列表为空或加载失败")
		return
	}

	results, err := analyzer.Aggregate(majorCourses, sess.GradeFiles)
	if err != nil {
		errorResponse(c, 2003, "分析失败，没有有效的数据")
		return
	}

	resultFile := fmt.Sprintf("成绩分析结果_%s.xlsx", timestamp())
	resultPath := filepath.Join(h.dataDir, "results", resultFile)
	if err := os.MkdirAll(filepath.Dir(resultPath), 0755); err != nil {
		errorResponse(c, 5001, "创建结果目录失败")
		return
	}

	exporter := excel.NewExporter()
	if err := exporter.ExportToFile(results, resultPath); err != nil {
		errorResponse(c, 2004, "生成结果文件失败: "+err.Error())
		return
	}

	h.sessionsMu.Lock()
	sess.Results = results
	sess.ResultFile = resultFile
	sess.ResultPath = resultPath
	h.sessionsMu.Unlock()

	sourceFiles := strings.Join(sess.GradeNames, "; ")
	if _, err := h.store.CreateAnalysisRun(req.SessionID, resultFile, resultPath, len(results), sourceFiles); err != nil {
		// 历史记录失败不影响本次分析结果
		log.Printf("记录分析历史失败: %v", err)
	}

	preview := results
	if max := h.cfg.Upload.PreviewRows; max > 0 && len(preview) > max {
		preview = preview[:max]
	}

	success(c, gin.H{
		"studentCount": len(results),
		"resultFile":   resultFile,
		"preview":      preview,
	})
}

// GetResults 获取完整分析结果
func (h *Handlers) GetResults(c *gin.Context) {
	sessionID := c.Param("sessionId")

	h.sessionsMu.RLock()
	sess, ok := h.sessions[sessionID]
	h.sessionsMu.RUnlock()
	if !ok || sess.Results == nil {
		errorResponse(c, 1005, "没有找到分析结果")
		return
	}

	success(c, gin.H{
		"data":         sess.Results,
		"studentCount": len(sess.Results),
		"resultFile":   sess.ResultFile,
	})
}

// Download 下载分析结果文件
func (h *Handlers) Download(c *gin.Context) {
	sessionID := c.Param("sessionId")

	h.sessionsMu.RLock()
	sess, ok := h.sessions[sessionID]
	h.sessionsMu.RUnlock()

	resultPath := ""
	resultFile := ""
	if ok && sess.ResultPath != "" {
		resultPath = sess.ResultPath
		resultFile = sess.ResultFile
	} else {
		// 服务重启后会话丢失，从历史记录里找结果文件
		run, err := h.store.GetAnalysisRunBySession(sessionID)
		if err != nil {
			errorResponse(c, 1005, "没有找到分析结果")
			return
		}
		resultPath = run.ResultPath
		resultFile = run.ResultFile
	}

	if _, err := os.Stat(resultPath); err != nil {
		errorResponse(c, 1006, "结果文件不存在")
		return
	}

	c.FileAttachment(resultPath, resultFile)
}

// History 查询最近的分析运行记录
func (h *Handlers) History(c *gin.Context) {
	runs, err := h.store.ListAnalysisRuns(20)
	if err != nil {
		errorResponse(c, 5002, "查询历史记录失败")
		return
	}
	success(c, runs)
}

// timestamp 生成结果文件名中的时间戳，使用上海时区
func timestamp() string {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.Local
	}
	return time.Now().In(loc).Format("20060102_150405")
}
