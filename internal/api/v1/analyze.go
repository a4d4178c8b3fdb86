package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/service/evaluator"
	"github.com/matcapl/portco-board-assistant/internal/service/excel"
)

// Analyze 上传 Excel 并生成按优先级排序的观察与问题
// POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	uploadID := uuid.New().String()
	logger := log.With().Str("upload_id", uploadID).Logger()

	if h.upload.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.upload.MaxBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			logger.Warn().Err(err).Msg("upload exceeds size limit")
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrFileTooLarge.Error()})
			return
		}
		logger.Warn().Err(err).Str("content_type", c.ContentType()).Msg("no file in request")
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoFile.Error()})
		return
	}

	logger.Info().
		Str("filename", fh.Filename).
		Str("mime_type", mimeType(fh)).
		Int64("size", fh.Size).
		Msg("file received")

	if err := validateUpload(fh, h.upload); err != nil {
		logger.Warn().Err(err).Str("filename", fh.Filename).Msg("upload rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 保存到临时目录
	tempPath := filepath.Join(h.tempDir, tempFileName(uploadID, fh.Filename))
	if err := c.SaveUploadedFile(fh, tempPath); err != nil {
		logger.Error().Err(err).Str("path", tempPath).Msg("failed to stage upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return
	}

	// 清理临时文件
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logger.Error().Err(err).Str("path", tempPath).Msg("failed to delete upload")
			return
		}
		logger.Debug().Str("path", tempPath).Msg("upload deleted")
	}()

	auditID := h.startAudit(logger, uploadID, fh.Filename, fh.Size, tempPath)

	wb, err := excel.OpenFile(tempPath)
	if err != nil {
		logger.Warn().Err(err).Msg("excel parsing error")
		msg := "Invalid Excel file format: " + unwrapAll(err).Error()
		h.failAudit(logger, auditID, msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	defer func() { _ = wb.Close() }()

	logger.Debug().Strs("sheets", wb.SheetNames()).Msg("workbook loaded")
	logResolution(logger, excel.ResolveChecklist(h.checklist, wb))

	results := evaluator.Analyze(h.checklist, wb)
	counts := evaluator.CountByType(results)

	h.completeAudit(logger, auditID, len(results), counts[model.ResultTypeQuestion])

	logger.Info().
		Int("results", len(results)).
		Int("questions", counts[model.ResultTypeQuestion]).
		Int("observations", counts[model.ResultTypeObservation]).
		Msg("analysis complete")

	c.JSON(http.StatusOK, model.AnalyzeResponse{
		Results: results,
		Files:   []string{fh.Filename},
	})
}

// logResolution 记录缺失的工作表与不完整的指标
func logResolution(logger zerolog.Logger, reports []excel.MetricReport) {
	for _, sheet := range excel.MissingSheets(reports) {
		logger.Info().Str("sheet", sheet).Msg("sheet not found")
	}
	for _, r := range reports {
		if !r.SheetFound {
			continue
		}
		evt := logger.Debug()
		if !r.Value.Complete() {
			evt = logger.Info()
		}
		evt.Str("metric", r.Metric).
			Bool("has_actual", r.Value.HasActual).
			Bool("has_budget", r.Value.HasBudget).
			Float64("actual", r.Value.Actual).
			Float64("budget", r.Value.Budget).
			Msg("metric resolved")
	}
}

func (h *Handler) startAudit(logger zerolog.Logger, uploadID, filename string, size int64, path string) int64 {
	if h.store == nil {
		return 0
	}
	hash, err := fileSHA256(path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to hash upload")
	}
	id, err := h.store.CreateUploadLog(uploadID, filename, size, hash)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create upload log")
		return 0
	}
	return id
}

func (h *Handler) completeAudit(logger zerolog.Logger, id int64, resultCount, questionCount int) {
	if h.store == nil || id == 0 {
		return
	}
	if err := h.store.CompleteUploadLog(id, resultCount, questionCount); err != nil {
		logger.Error().Err(err).Int64("audit_id", id).Msg("failed to complete upload log")
	}
}

func (h *Handler) failAudit(logger zerolog.Logger, id int64, msg string) {
	if h.store == nil || id == 0 {
		return
	}
	if err := h.store.FailUploadLog(id, msg); err != nil {
		logger.Error().Err(err).Int64("audit_id", id).Msg("failed to update upload log")
	}
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// unwrapAll 取最内层错误，对外只暴露解析器的原始信息
func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
