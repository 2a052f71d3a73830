// Package domain contains core domain types for the CareerCompass application.
package domain

import "time"

// Role identifies who authored a transcript message.
type Role string

const (
	// RoleUser marks a message typed by the person taking the assessment.
	RoleUser Role = "user"
	// RoleAssistant marks a scripted guide message.
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. Messages are never mutated after
// they are appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

