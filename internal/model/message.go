// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "fmt"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the roles the completion API accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Genie"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// ParseRole converts an API role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// =============================================================================
// MESSAGE AND TURN
// =============================================================================

// Message is a role/content pair as sent to the completion API.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is one stored conversation entry together with the number of tokens
// it occupies in the conversation budget.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	TokenCost int    `json:"tokens"`
}

// NewTurn creates a turn.
func NewTurn(role Role, content string, cost int) Turn {
	return Turn{Role: role, Content: content, TokenCost: cost}
}

// Message strips the token cost from the turn.
func (t Turn) Message() Message {
	return Message{Role: t.Role, Content: t.Content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
