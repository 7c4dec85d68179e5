package line

import (
	"fmt"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/sirupsen/logrus"
)

var _ output.LineClient = (*LineClientAdapter)(nil)

// LineClientAdapter struct - Output adapter for LINE messaging platform
type LineClientAdapter struct {
	client *messaging_api.MessagingApiAPI
}

// NewLineClientAdapter func - Creates new LINE client adapter
func NewLineClientAdapter(channelToken string) (*LineClientAdapter, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging API client: %w", err)
	}

	return &LineClientAdapter{
		client: client,
	}, nil
}

// ReplyMessage - Sends reply messages to LINE user via reply token
func (a *LineClientAdapter) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	messages, err := convertMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: request.ReplyToken,
		Messages:   messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send reply message: %w", err)
	}

	logrus.Debugf("Sent %d reply messages", len(messages))

	var sent []messaging_api.SentMessage
	if resp != nil {
		sent = resp.SentMessages
	}
	return &domain.LineMessageResponse{
		Status:    "success",
		MessageID: lastSentID(sent),
	}, nil
}

// PushMessage - Sends push messages to LINE user directly
func (a *LineClientAdapter) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	messages, err := convertMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.PushMessage(&messaging_api.PushMessageRequest{
		To:       request.To,
		Messages: messages,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to send push message: %w", err)
	}

	logrus.Infof("Successfully sent push message to: %s", request.To)

	var sent []messaging_api.SentMessage
	if resp != nil {
		sent = resp.SentMessages
	}
	return &domain.LineMessageResponse{
		Status:    "success",
		MessageID: lastSentID(sent),
	}, nil
}

// lastSentID returns the id of the final message, the one carrying the build text
func lastSentID(sent []messaging_api.SentMessage) string {
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1].Id
}

func convertMessages(in []domain.LineOutgoingMessage) ([]messaging_api.MessageInterface, error) {
	messages := make([]messaging_api.MessageInterface, 0, len(in))
	for _, msg := range in {
		lineMsg, err := convertToLineMessage(msg)
		if err != nil {
			logrus.Errorf("Failed to convert message: %v", err)
			continue
		}
		messages = append(messages, lineMsg)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no valid messages to send")
	}
	return messages, nil
}

// convertToLineMessage - Helper function to convert domain message to LINE SDK message
func convertToLineMessage(msg domain.LineOutgoingMessage) (messaging_api.MessageInterface, error) {
	switch msg.Type {
	case domain.LineMessageTypeText:
		return &messaging_api.TextMessage{
			Text: msg.Text,
		}, nil

	case domain.LineMessageTypeImage:
		if msg.ImageURL == "" {
			return nil, fmt.Errorf("image message without url")
		}
		return &messaging_api.ImageMessage{
			OriginalContentUrl: msg.ImageURL,
			PreviewImageUrl:    msg.ImageURL,
		}, nil

	case domain.LineMessageTypeResultButtons:
		return &messaging_api.TextMessage{
			Text:       msg.Text,
			QuickReply: resultQuickReply(msg.BuildID),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

// resultQuickReply tags both buttons with the build they were rendered for
func resultQuickReply(buildID string) *messaging_api.QuickReply {
	return &messaging_api.QuickReply{
		Items: []messaging_api.QuickReplyItem{
			{
				Type: "action",
				Action: &messaging_api.PostbackAction{
					Label:       "Won",
					Data:        domain.ResultPostbackData(domain.OutcomeWin, buildID),
					DisplayText: "Won",
				},
			},
			{
				Type: "action",
				Action: &messaging_api.PostbackAction{
					Label:       "Lost",
					Data:        domain.ResultPostbackData(domain.OutcomeLoss, buildID),
					DisplayText: "Lost",
				},
			},
		},
	}
}
