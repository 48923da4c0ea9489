package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one linkage run.
	FieldRunID = "run_id"
	// FieldTier is the zero-based tier position within a plan.
	FieldTier = "tier"
	// FieldConfidence is the confidence level stamped by a tier.
	FieldConfidence = "confidence"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldProgressPercent carries a 0-100 progress value.
	FieldProgressPercent = "progress_percent"
)
