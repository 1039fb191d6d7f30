// Package errors provides session-scoped tracking of pipeline failures
package errors

import (
	"fmt"
	"sync"
	"time"
)

// ErrorStage 错误阶段枚举
type ErrorStage string

const (
	StageExtract       ErrorStage = "extract"        // 文本提取阶段
	StageTranslation   ErrorStage = "translation"    // 翻译阶段
	StagePDFGeneration ErrorStage = "pdf_generation" // PDF生成阶段
)

// ErrorRecord 错误记录
type ErrorRecord struct {
	RunID     string     `json:"run_id"`         // 所属运行
	Page      int        `json:"page,omitempty"` // 1-based page number, 0 when not page specific
	Stage     ErrorStage `json:"stage"`          // 出错阶段
	ErrorMsg  string     `json:"error_msg"`      // 错误信息
	Timestamp time.Time  `json:"timestamp"`      // 错误发生时间
}

// String renders the record as a single user-facing line.
func (r ErrorRecord) String() string {
	if r.Page > 0 {
		return fmt.Sprintf("%s failed on page %d: %s", GetStageDisplayName(r.Stage), r.Page, r.ErrorMsg)
	}
	return fmt.Sprintf("%s failed: %s", GetStageDisplayName(r.Stage), r.ErrorMsg)
}

// ErrorManager 错误管理器
// Records live only in memory for the lifetime of one session.
type ErrorManager struct {
	mu      sync.RWMutex
	records []*ErrorRecord
	now     func() time.Time
}

// NewErrorManager 创建新的错误管理器
func NewErrorManager() *ErrorManager {
	return &ErrorManager{now: time.Now}
}

// RecordError 记录错误
func (em *ErrorManager) RecordError(runID string, page int, stage ErrorStage, errorMsg string) ErrorRecord {
	em.mu.Lock()
	defer em.mu.Unlock()

	record := &ErrorRecord{
		RunID:     runID,
		Page:      page,
		Stage:     stage,
		ErrorMsg:  errorMsg,
		Timestamp: em.now(),
	}
	em.records = append(em.records, record)
	return *record
}

// ListErrors 列出所有错误记录，按记录顺序
func (em *ErrorManager) ListErrors() []ErrorRecord {
	em.mu.RLock()
	defer em.mu.RUnlock()

	out := make([]ErrorRecord, 0, len(em.records))
	for _, r := range em.records {
		out = append(out, *r)
	}
	return out
}

// ListRunErrors returns the records of a single run.
func (em *ErrorManager) ListRunErrors(runID string) []ErrorRecord {
	em.mu.RLock()
	defer em.mu.RUnlock()

	var out []ErrorRecord
	for _, r := range em.records {
		if r.RunID == runID {
			out = append(out, *r)
		}
	}
	return out
}

// ClearAll 清除所有错误记录
func (em *ErrorManager) ClearAll() {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.records = nil
}

// GetStageDisplayName 获取阶段的显示名称
func GetStageDisplayName(stage ErrorStage) string {
	switch stage {
	case StageExtract:
		return "Text extraction"
	case StageTranslation:
		return "Translation"
	case StagePDFGeneration:
		return "PDF generation"
	default:
		return string(stage)
	}
}
