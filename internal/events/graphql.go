package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	RequestID     string
	Query         string
	OperationName string
	OperationType string
	Start         time.Time
}

// GraphQLFinish is emitted after executing a GraphQL operation. Errors
// holds both validation and field errors.
type GraphQLFinish struct {
	RequestID     string
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Start         time.Time
	Duration      time.Duration
}

// FieldResolved is emitted after a resolver returns for one field, before
// null checks are applied to its result.
type FieldResolved struct {
	TypeName  string
	FieldName string
	Path      string
	Start     time.Time
	Duration  time.Duration
	Err       error
}
