package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventAccessDenied       EventType = "access_denied"
	EventRoleResolveFailed  EventType = "role_resolve_failed"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventInvalidToken       EventType = "invalid_token"
	EventUploadRejected     EventType = "upload_rejected"
	EventMalwareDetected    EventType = "malware_detected"
	EventRoleModified       EventType = "role_modified"
	EventRecordDeleted      EventType = "record_deleted"
	EventDataExport         EventType = "data_export"
	EventDocumentAccessed   EventType = "document_accessed"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Severity     Severity               `json:"severity"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "principal", "ip", "email"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger writes security events as structured zap entries, separate
// from the application log so they can be shipped and retained on their own.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string

	storeMu sync.RWMutex
	store   EventStore
}

// persistTimeout bounds the audit write done inline with each event.
const persistTimeout = 2 * time.Second

// SetStore enables the audit copy for every event above INFO severity.
func (sl *SecurityLogger) SetStore(store EventStore) {
	sl.storeMu.Lock()
	sl.store = store
	sl.storeMu.Unlock()
}

var (
	defaultLogger *SecurityLogger
	defaultMu     sync.Mutex
)

// InitSecurityLogger initializes the security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)

	defaultMu.Lock()
	defaultLogger = sl
	defaultMu.Unlock()
	return sl
}

// NewSecurityLogger wraps an existing zap logger; tests pass zap.NewNop or an observer core.
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

// DefaultLogger returns the process-wide security logger, falling back to a no-op logger.
func DefaultLogger() *SecurityLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewSecurityLogger(zap.NewNop(), "handyman-recruitment", "development")
	}
	return defaultLogger
}

// requestIDKey matches the key the HTTP layer stores request ids under;
// gin contexts answer Value lookups for it.
const requestIDKey = "RequestID"

// Log writes event at the level implied by its type. Severity, service and
// environment are always filled in here.
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" && ctx != nil {
		event.RequestID, _ = ctx.Value(requestIDKey).(string)
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment
	event.Severity = GetSeverity(event.Event)

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(event.Severity)),
	}
	for _, f := range []struct{ key, value string }{
		{"subject_type", event.SubjectType},
		{"subject_value", event.SubjectValue},
		{"ip", event.IP},
		{"user_agent", event.UserAgent},
		{"request_id", event.RequestID},
	} {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(event.Severity.zapLevel(), string(event.Event), fields...)
	sl.persist(ctx, event)
}

func (sl *SecurityLogger) persist(ctx context.Context, event SecurityEvent) {
	sl.storeMu.RLock()
	store := sl.store
	sl.storeMu.RUnlock()
	if store == nil || event.Severity == SeverityINFO {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := store.PersistEvent(ctx, event); err != nil {
		sl.zapLogger.Warn("security event not persisted",
			zap.String("event", string(event.Event)),
			zap.Error(err),
		)
	}
}

// LogAccessDenied records a gate denial for principal on operation.
func (sl *SecurityLogger) LogAccessDenied(ctx context.Context, principal, role, operation string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventAccessDenied,
		SubjectType:  "principal",
		SubjectValue: HashValue(principal),
		Details:      map[string]interface{}{"role": role, "operation": operation},
	})
}

// LogRoleResolveFailed records a role store failure that the gate turned into a deny.
func (sl *SecurityLogger) LogRoleResolveFailed(ctx context.Context, principal string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRoleResolveFailed,
		SubjectType:  "principal",
		SubjectValue: HashValue(principal),
		Details:      map[string]interface{}{"error": err.Error()},
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogAdminAction records a privileged mutation or export by principal.
func (sl *SecurityLogger) LogAdminAction(ctx context.Context, event EventType, principal string, details map[string]interface{}) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "principal",
		SubjectValue: HashValue(principal),
		Details:      details,
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a short SHA256 digest of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
