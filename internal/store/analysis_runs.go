package store

import (
	"database/sql"
	"errors"
	"fmt"

	"zongce/internal/model"
)

// ErrRunNotFound 指定会话没有分析运行记录
var ErrRunNotFound = errors.New("analysis run not found")

// CreateAnalysisRun 记录一次分析运行，返回记录 ID
func (s *Store) CreateAnalysisRun(sessionID, resultFile, resultPath string, studentCount int, sourceFiles string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO analysis_runs (session_id, result_file, result_path, student_count, source_files)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, resultFile, resultPath, studentCount, sourceFiles)
	if err != nil {
		return 0, fmt.Errorf("failed to create analysis run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get analysis run id: %w", err)
	}
	return id, nil
}

// GetAnalysisRunBySession 查询指定会话最近一次分析运行
func (s *Store) GetAnalysisRunBySession(sessionID string) (*model.AnalysisRun, error) {
	run := &model.AnalysisRun{}
	err := s.db.QueryRow(`
		SELECT id, session_id, result_file, result_path, student_count, source_files, created_at
		FROM analysis_runs
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, sessionID).Scan(&run.ID, &run.SessionID, &run.ResultFile, &run.ResultPath,
		&run.StudentCount, &run.SourceFiles, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis run: %w", err)
	}
	return run, nil
}

// ListAnalysisRuns 查询最近的分析运行记录
func (s *Store) ListAnalysisRuns(limit int) ([]*model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, result_file, result_path, student_count, source_files, created_at
		FROM analysis_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.AnalysisRun, 0)
	for rows.Next() {
		run := &model.AnalysisRun{}
		if err := rows.Scan(&run.ID, &run.SessionID, &run.ResultFile, &run.ResultPath,
			&run.StudentCount, &run.SourceFiles, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
