// Package executor runs GraphQL requests against a schema and a set of root
// resolvers bundled in a Container.
//
// # Request Flow
//
// Execute takes a request through these steps, stopping at the first that
// fails:
//
//  1. Parse the query document.
//  2. Select the operation by name, or the only operation when no name is
//     given, and classify it by its root field.
//  3. Validate the document with the default rules plus any configured
//     ones. Every rule runs and every error is reported.
//  4. Coerce the supplied variables to their declared types, applying
//     defaults.
//  5. Resolve the root selection set. Query and subscription roots resolve
//     their fields concurrently; mutation roots resolve them one at a time
//     in document order.
//
// Failures in steps 1 to 4 produce a response with null data and the
// errors; no resolver runs. Field errors in step 5 are reported next to the
// partial data.
//
// # Field Errors
//
// By default a failing field is replaced by null and its error is recorded
// with the field's path and location. If the field is non-null the null
// moves up to the nearest nullable ancestor, which may be data itself.
// WithFailFast switches to aborting the whole operation on the first error.
//
// # Directives
//
// @skip and @include are evaluated during field collection. Other
// directives reach resolvers only through handlers registered with
// WithDirective. A handler wraps the resolution of every field the
// directive is applied to, in the query or on the field definition.
//
// # Events
//
// Every request publishes events.GraphQLStart and events.GraphQLFinish on
// the default event bus, and every resolved field publishes
// events.FieldResolved. The request ID from the context, or a new one, is
// attached to both events and log records.
package executor
