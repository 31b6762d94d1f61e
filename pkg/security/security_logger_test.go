package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecurityLoggerSeverityAndMasking(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "svc", "test")

	sl.LogAccessDenied(context.Background(), "user-123", "guest", "candidates.list")
	sl.LogRoleResolveFailed(context.Background(), "user-123", errors.New("db down"))

	entries := logs.All()
	require.Len(t, entries, 2)

	denied := entries[0]
	assert.Equal(t, zapcore.ErrorLevel, denied.Level)
	assert.Equal(t, string(EventAccessDenied), denied.Message)
	fields := denied.ContextMap()
	assert.Equal(t, "HIGH", fields["severity"])
	assert.Equal(t, HashValue("user-123"), fields["subject_value"])
	assert.NotContains(t, fields["subject_value"], "user-123")
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@x.com", MaskEmail("jdoe@x.com"))
	assert.Equal(t, "***", MaskEmail("a"))
	assert.Equal(t, "***@x.com", MaskEmail("j@x.com"))
}

func TestGetSeverityDefault(t *testing.T) {
	assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("something_new")))
	assert.Equal(t, SeverityWARN, GetSeverity(EventRateLimitTriggered))
}

func TestSecurityLoggerTakesRequestIDFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "svc", "test")

	ctx := context.WithValue(context.Background(), requestIDKey, "req-42")
	sl.LogAdminAction(ctx, EventRecordDeleted, "admin-1", map[string]interface{}{"kind": "candidate", "id": int64(7)})

	require.Len(t, logs.All(), 1)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "MEDIUM", fields["severity"])
	assert.Equal(t, map[string]interface{}{"kind": "candidate", "id": int64(7)}, fields["details"])
}

type recordingStore struct {
	events []SecurityEvent
	err    error
}

func (r *recordingStore) PersistEvent(ctx context.Context, event SecurityEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestSecurityLoggerPersistsAboveInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "svc", "test")
	store := &recordingStore{}
	sl.SetStore(store)

	sl.Log(context.Background(), SecurityEvent{Event: EventDocumentAccessed})
	sl.LogAccessDenied(context.Background(), "user-1", "user", "candidates.delete")

	require.Len(t, store.events, 1)
	assert.Equal(t, EventAccessDenied, store.events[0].Event)
	assert.Equal(t, SeverityHIGH, store.events[0].Severity)
	assert.Equal(t, "svc", store.events[0].Service)
	assert.Len(t, logs.All(), 2)
}

func TestSecurityLoggerStoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "svc", "test")
	sl.SetStore(&recordingStore{err: errors.New("db down")})

	sl.LogAdminAction(context.Background(), EventDataExport, "admin-1", nil)

	assert.Equal(t, 1, logs.FilterMessage("security event not persisted").Len())
}
