package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTaskGID is the standardized structured logging key for task identifiers.
	FieldTaskGID = "task_gid"
	// FieldProject is the standardized structured logging key for project names.
	FieldProject = "project"
	// FieldSection is the standardized structured logging key for section names.
	FieldSection = "section"
	// FieldWorkflow is the standardized structured logging key for workflow names.
	FieldWorkflow = "workflow"
	// FieldStage is the standardized structured logging key for workflow stage names.
	FieldStage = "stage"
	// FieldPredicate is the standardized structured logging key for predicate labels.
	FieldPredicate = "predicate"
	// FieldAction is the standardized structured logging key for action labels.
	FieldAction = "action"
	// FieldCorrelationID is the standardized structured logging key for per-task correlation identifiers.
	FieldCorrelationID = "correlation_id"
)
