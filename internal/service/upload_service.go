package service

import (
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"edunest_backend/pkg/monitoring"
	"edunest_backend/pkg/tracing"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tempFilePattern = "upload-*"

type UploadService struct {
	Storage *StorageService
	Limits  config.UploadConfig
	TempDir string
}

func NewUploadService(storage *StorageService, cfg config.UploadConfig) *UploadService {
	dir := cfg.TempDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "edunest-uploads")
	}
	return &UploadService{Storage: storage, Limits: cfg, TempDir: dir}
}

// Upload 扩展名校验在前，不信任客户端声明的 MIME；文件先落到暂存目录再交给存储
func (s *UploadService) Upload(ctx context.Context, kind, filename string, size int64, r io.Reader) (*model.UploadResult, error) {
	allowed := util.AllowedExtensions(kind)
	if allowed == nil {
		return nil, util.ErrInvalidInput
	}
	if !util.HasAllowedExtension(filename, allowed) {
		monitoring.UploadCounter.WithLabelValues(kind, "rejected").Inc()
		return nil, fmt.Errorf("%w: allowed extensions are %s", util.ErrInvalidFileType, strings.Join(allowed, ", "))
	}

	limit := s.Limits.MaxUploadBytes(kind)
	if limit > 0 && size > limit {
		monitoring.UploadCounter.WithLabelValues(kind, "rejected").Inc()
		return nil, util.ErrFileTooLarge
	}

	tmpPath, written, err := s.saveTemp(r, limit)
	if err != nil {
		if errors.Is(err, util.ErrFileTooLarge) {
			monitoring.UploadCounter.WithLabelValues(kind, "rejected").Inc()
		}
		return nil, err
	}
	defer os.Remove(tmpPath)

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%ss/%s%s", kind, uuid.NewString(), ext)
	mimeType := util.MimeTypeByExtension(filename)

	result := &model.UploadResult{
		Filename:     filepath.Base(key),
		OriginalName: util.SanitizeFilename(filename),
		Size:         written,
		MimeType:     mimeType,
	}

	if kind == util.UploadVideo {
		// 探测时长失败不影响上传
		if info, err := util.GetVideoInfo(tmpPath); err == nil {
			result.Duration = info.Duration
		} else {
			logger.Log.Debug("Video probe skipped", zap.String("file", result.OriginalName), zap.Error(err))
		}
	}

	storeCtx, span := tracing.StartSpan(ctx, "storage.UploadFile",
		attribute.String("upload.kind", kind),
		attribute.Int64("upload.size", written))
	url, err := s.Storage.UploadFile(storeCtx, key, tmpPath, mimeType)
	tracing.EndSpan(span, err)
	if err != nil {
		monitoring.UploadCounter.WithLabelValues(kind, "failed").Inc()
		return nil, err
	}
	result.URL = url

	monitoring.UploadCounter.WithLabelValues(kind, "stored").Inc()
	logger.Log.Info("File uploaded",
		zap.String("kind", kind),
		zap.String("key", key),
		zap.Int64("size", written))
	return result, nil
}

// saveTemp 写入暂存文件，超过 limit 时删除并返回 ErrFileTooLarge
func (s *UploadService) saveTemp(r io.Reader, limit int64) (string, int64, error) {
	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return "", 0, err
	}
	tmp, err := os.CreateTemp(s.TempDir, tempFilePattern)
	if err != nil {
		return "", 0, err
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	written, err := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && limit > 0 && written > limit {
		err = util.ErrFileTooLarge
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, err
	}
	return tmp.Name(), written, nil
}

// CleanupTemp 清理中断上传遗留的暂存文件
func (s *UploadService) CleanupTemp(maxAge time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.TempDir, tempFilePattern))
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}
