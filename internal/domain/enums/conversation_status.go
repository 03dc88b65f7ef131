package enums

type ConversationStatus string

const (
	ConversationStatusActive   ConversationStatus = "active"
	ConversationStatusClosed   ConversationStatus = "closed"
	ConversationStatusArchived ConversationStatus = "archived"
)

func (s ConversationStatus) Terminal() bool {
	return s == ConversationStatusClosed || s == ConversationStatusArchived
}
