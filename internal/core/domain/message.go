package domain

// Role identifies the author of a chat message.
// The set is closed; anything else renders through the fallback rule.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
	RoleTool      Role = "tool"
	RoleData      Role = "data"
)

// ChatMessage is one turn of a conversation. Messages live in the
// client's conversation state; the server only reads them per request.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Render formats the message as a single history line.
// Each known role has its own rule; unknown roles fall back to a
// generic rendering rather than being dropped.
func (m ChatMessage) Render() string {
	switch m.Role {
	case RoleSystem:
		return "system: " + m.Content
	case RoleUser:
		return "user: " + m.Content
	case RoleAssistant:
		return "assistant: " + m.Content
	case RoleFunction:
		return "function: " + m.Content
	case RoleTool:
		return "tool: " + m.Content
	case RoleData:
		return "data: " + m.Content
	default:
		return string(m.Role) + ": " + m.Content
	}
}
