package app

// Message is a chat message as seen by the host client. Content reflects the
// current edit state at lookup time.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
}

// MessageSource resolves message ids on demand. The selection tracker keeps
// ids only; content is looked up at translation time so edits and deletions
// between selecting and translating are honored.
type MessageSource interface {
	Message(id string) (Message, bool)
}
