// Package events defines the notification topics and payloads published by
// the selection coordinator.
//
// Cancelable payloads embed Cancelable and are published as pointers; a
// handler calls PreventDefault to veto the coordinator's next step.
package events
