package security

import "go.uber.org/zap/zapcore"

// Severity is derived from EventType, never supplied by callers
type Severity string

const (
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

var EventSeverityMap = map[EventType]Severity{
	EventDocumentAccessed: SeverityINFO,

	EventDataExport:    SeverityMEDIUM,
	EventRecordDeleted: SeverityMEDIUM,

	EventRateLimitTriggered: SeverityWARN,
	EventInvalidToken:       SeverityWARN,
	EventUploadRejected:     SeverityWARN,

	EventAccessDenied:      SeverityHIGH,
	EventRoleResolveFailed: SeverityHIGH,
	EventMalwareDetected:   SeverityHIGH,
	EventRoleModified:      SeverityHIGH,
}

// GetSeverity defaults unmapped events to MEDIUM
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case SeverityINFO, SeverityMEDIUM:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}
