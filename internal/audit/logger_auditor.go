// filepath: internal/audit/logger_auditor.go
package audit

import (
	"context"

	"adreel/internal/logging"
	"adreel/internal/services"

	"github.com/sirupsen/logrus"
)

var _ services.Auditor = (*LoggerAuditor)(nil)

// LoggerAuditor writes audit events (project creation, uploads, deletions, logins) to the
// application log as structured INFO entries.
type LoggerAuditor struct {
	enabled bool
	// Logger overrides the process logger. Nil means logging.Log.
	Logger *logrus.Logger
}

// NewLoggerAuditor creates a new instance of LoggerAuditor.
func NewLoggerAuditor(enabled bool) *LoggerAuditor {
	return &LoggerAuditor{enabled: enabled}
}

// Log records an event if auditing is enabled. Details are flattened into "detail.*"
// fields and the request id, when the context carries one, is attached.
func (a *LoggerAuditor) Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{}) {
	if !a.enabled {
		return
	}

	fields := logrus.Fields{
		"audit_action":   action,
		"audit_actor":    actor,
		"audit_resource": resource,
	}
	if id := logging.RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	for k, v := range details {
		fields["detail."+k] = v
	}

	log := a.Logger
	if log == nil {
		log = logging.Log
	}
	log.WithFields(fields).Info("AUDIT EVENT")
}
