package http

import (
	"bytes"
	"net/http"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/input"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/sirupsen/logrus"
)

// LineWebhookHandler struct - Primary/Driving adapter for LINE webhook
type LineWebhookHandler struct {
	service       input.LineWebhookService
	channelSecret string
}

// NewLineWebhookHandler func - Creates new LINE webhook handler
func NewLineWebhookHandler(service input.LineWebhookService, channelSecret string) *LineWebhookHandler {
	return &LineWebhookHandler{
		service:       service,
		channelSecret: channelSecret,
	}
}

// HandleWebhook func - Handles incoming LINE webhook requests
// @Summary LINE Webhook
// @Description Chat commands and Won/Lost postbacks from the LINE Messaging API
// @Tags LINE
// @Accept application/json
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /webhook/line [post]
func (h *LineWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	// The SDK verifies the signature on a net/http request
	httpReq, err := http.NewRequest(http.MethodPost, "/webhook/line", bytes.NewReader(c.Body()))
	if err != nil {
		logrus.Errorf("Failed to create http request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
	c.Request().Header.VisitAll(func(key, value []byte) {
		httpReq.Header.Set(string(key), string(value))
	})

	cb, err := webhook.ParseRequest(h.channelSecret, httpReq)
	if err != nil {
		logrus.Warnf("Rejected webhook request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}

	webhookReq := domain.LineWebhookRequest{
		Events: make([]domain.LineWebhookEvent, 0, len(cb.Events)),
	}
	for _, event := range cb.Events {
		if domainEvent, ok := toDomainEvent(event); ok {
			webhookReq.Events = append(webhookReq.Events, domainEvent)
		}
	}

	if err := h.service.HandleWebhook(c.UserContext(), webhookReq); err != nil {
		logrus.Errorf("Failed to handle webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success})
}

// toDomainEvent maps the SDK events the bot reacts to, others are dropped
func toDomainEvent(event webhook.EventInterface) (domain.LineWebhookEvent, bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			logrus.Debugf("Ignoring message type: %T", e.Message)
			return domain.LineWebhookEvent{}, false
		}
		out := newEvent(domain.LineEventTypeMessage, e.WebhookEventId, e.Timestamp, e.Source)
		out.ReplyToken = e.ReplyToken
		out.Message = &domain.LineMessage{ID: text.Id, Type: domain.LineMessageTypeText, Text: text.Text}
		return out, true
	case webhook.PostbackEvent:
		if e.Postback == nil {
			return domain.LineWebhookEvent{}, false
		}
		out := newEvent(domain.LineEventTypePostback, e.WebhookEventId, e.Timestamp, e.Source)
		out.ReplyToken = e.ReplyToken
		out.PostbackData = e.Postback.Data
		return out, true
	case webhook.FollowEvent:
		out := newEvent(domain.LineEventTypeFollow, e.WebhookEventId, e.Timestamp, e.Source)
		out.ReplyToken = e.ReplyToken
		return out, true
	case webhook.UnfollowEvent:
		return newEvent(domain.LineEventTypeUnfollow, e.WebhookEventId, e.Timestamp, e.Source), true
	default:
		logrus.Debugf("Ignoring event type: %T", event)
		return domain.LineWebhookEvent{}, false
	}
}

func newEvent(kind domain.LineEventType, id string, timestamp int64, source webhook.SourceInterface) domain.LineWebhookEvent {
	return domain.LineWebhookEvent{
		ID:        id,
		Type:      kind,
		Timestamp: time.UnixMilli(timestamp),
		Source:    toDomainSource(source),
	}
}

// toDomainSource keeps the user id for every source kind, sessions are keyed by it
func toDomainSource(source webhook.SourceInterface) domain.LineSource {
	switch s := source.(type) {
	case webhook.UserSource:
		return domain.LineSource{Type: domain.LineSourceTypeUser, UserID: s.UserId}
	case webhook.GroupSource:
		return domain.LineSource{Type: domain.LineSourceTypeGroup, UserID: s.UserId, GroupID: s.GroupId}
	case webhook.RoomSource:
		return domain.LineSource{Type: domain.LineSourceTypeRoom, UserID: s.UserId, RoomID: s.RoomId}
	default:
		return domain.LineSource{}
	}
}
