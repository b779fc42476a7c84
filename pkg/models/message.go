package models

type Message struct {
	ID     string `json:"id"`
	Author string `json:"author,omitempty"`
	// Content is the full raw text body of the inbound message.
	Content string `json:"content"`
	// TS is epoch milliseconds.
	TS int64 `json:"ts"`
	// Optional content of the prior message this one replied to
	ReplyTo string `json:"reply_to,omitempty"`
}
