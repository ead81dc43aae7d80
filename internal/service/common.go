package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/repository"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// Actor identifies the caller of a service operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsStaff reports whether the actor manages interns.
func (a Actor) IsStaff() bool {
	return a.Role == domain.RoleAdmin || a.Role.IsHR()
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, evt events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, evt)
}

func nowOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func strPtr(s string) *string {
	return &s
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
