// Package model defines the domain types shared across the stevedore core:
// unit records, status and operation enums, the unit naming rule, and the
// failure taxonomy surfaced by the lifecycle controller.
package model
