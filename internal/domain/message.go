package domain

import "time"

// Message is a platform-owned channel message. The bot only reads these;
// attachments are carried as URLs, never re-encoded.
type Message struct {
	ID             string
	AuthorID       string
	AuthorTag      string
	Timestamp      time.Time
	Body           string
	AttachmentURLs []string
}

// ChannelInfo is the subset of live channel state the workflows consult.
type ChannelInfo struct {
	ID       string
	Name     string
	ParentID string
}

// TranscriptRecord is the ordered message history of one ticket at the
// moment of closure, oldest first. Immutable once built.
type TranscriptRecord struct {
	ChannelID   string
	ChannelName string
	Messages    []Message
}
