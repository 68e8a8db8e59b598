package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"go.uber.org/zap"
)

type ServiceError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func newMetaData(page, limit int, total int64) MetaData {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return MetaData{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(page) < totalPages,
	}
}

// serviceError converts an application error into the response shape used by
// controllers. Anything that is not an *apperrors.Error is logged and hidden
// behind a generic 500.
func serviceError(log *zap.Logger, err error, msg string) *ServiceError {
	if appErr, ok := apperrors.From(err); ok {
		if appErr.Code >= http.StatusInternalServerError {
			log.Error(msg, zap.Error(err))
		}
		return &ServiceError{
			StatusCode: appErr.Code,
			Reason:     string(appErr.Reason),
			Message:    appErr.Message,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return serviceError(log, apperrors.ErrCheckoutTimeout.Wrap(err), msg)
	}
	log.Error(msg, zap.Error(err))
	return &ServiceError{
		StatusCode: http.StatusInternalServerError,
		Reason:     string(apperrors.ReasonInternal),
		Message:    apperrors.ErrInternalServer.Message,
	}
}

// newServiceError is for validation failures detected in the service itself.
func newServiceError(base *apperrors.Error, format string, args ...any) *ServiceError {
	e := base.WithMessage(format, args...)
	return &ServiceError{StatusCode: e.Code, Reason: string(e.Reason), Message: e.Message}
}

// recordAsync pushes CloudWatch data points off the request path.
func recordAsync(cw *aws_pkg.MetricsClient, log *zap.Logger, fn func(ctx context.Context, cw *aws_pkg.MetricsClient) error) {
	if !cw.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx, cw); err != nil {
			log.Debug("Failed to publish CloudWatch metric", zap.Error(err))
		}
	}()
}
