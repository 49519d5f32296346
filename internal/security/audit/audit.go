package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, orgID, profileID, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("org_id", orgID),
		slog.String("profile_id", profileID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogProjectCreation(ctx context.Context, orgID, profileID, status, details string) {
	al.LogAction(ctx, orgID, profileID, "create", "project", "", status, details)
}

func (al *Logger) LogMembershipChange(ctx context.Context, orgID, profileID, op, projectID, status string) {
	al.LogAction(ctx, orgID, profileID, op, "membership", projectID, status, "")
}

func (al *Logger) LogSignOut(ctx context.Context, orgID, profileID string) {
	al.LogAction(ctx, orgID, profileID, "sign_out", "session", "", "completed", "")
}

func (al *Logger) LogDenied(ctx context.Context, orgID, profileID, reason string) {
	al.LogAction(ctx, orgID, profileID, "access_denied", "api", "", "denied", reason)
}
