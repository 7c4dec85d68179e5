package domain

import (
	"net/url"
	"time"
)

// LineEventType represents the type of webhook event from LINE
type LineEventType string

const (
	// LineEventTypeMessage - Message event
	LineEventTypeMessage LineEventType = "message"
	// LineEventTypeFollow - Follow event
	LineEventTypeFollow LineEventType = "follow"
	// LineEventTypeUnfollow - Unfollow event
	LineEventTypeUnfollow LineEventType = "unfollow"
	// LineEventTypePostback - Postback event, sent by the Won/Lost result buttons
	LineEventTypePostback LineEventType = "postback"
)

// LineMessageType represents the type of message
type LineMessageType string

const (
	// LineMessageTypeText - Text message
	LineMessageTypeText LineMessageType = "text"
	// LineMessageTypeImage - Image message
	LineMessageTypeImage LineMessageType = "image"
	// LineMessageTypeResultButtons - Text message with Won/Lost postback buttons
	LineMessageTypeResultButtons LineMessageType = "result_buttons"
)

// LineSourceType represents the source type of the event
type LineSourceType string

const (
	// LineSourceTypeUser - User source
	LineSourceTypeUser LineSourceType = "user"
	// LineSourceTypeGroup - Group source
	LineSourceTypeGroup LineSourceType = "group"
	// LineSourceTypeRoom - Room source
	LineSourceTypeRoom LineSourceType = "room"
)

// ResultPostbackData encodes a Won/Lost button press for one build
func ResultPostbackData(outcome Outcome, buildID string) string {
	return url.Values{"result": {string(outcome)}, "build": {buildID}}.Encode()
}

// ParseResultPostback decodes ResultPostbackData. ok is false for foreign payloads.
func ParseResultPostback(data string) (outcome Outcome, buildID string, ok bool) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return "", "", false
	}
	switch outcome = Outcome(values.Get("result")); outcome {
	case OutcomeWin, OutcomeLoss:
		return outcome, values.Get("build"), true
	default:
		return "", "", false
	}
}

// LineWebhookEvent represents a LINE webhook event (domain entity)
type LineWebhookEvent struct {
	ID           string
	Type         LineEventType
	Timestamp    time.Time
	Source       LineSource
	ReplyToken   string
	Message      *LineMessage
	PostbackData string
}

// LineSource represents the source of the event
type LineSource struct {
	Type    LineSourceType
	UserID  string
	GroupID string
	RoomID  string
}

// LineMessage represents a message from LINE
type LineMessage struct {
	ID   string
	Type LineMessageType
	Text string
}
