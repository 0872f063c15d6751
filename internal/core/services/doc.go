// Package services implements the driving port interfaces.
// Services contain the topic graph engine's business logic - segmentation,
// the partition invariant, merging, note synthesis, and revision - and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external service dependencies of their own.
package services
