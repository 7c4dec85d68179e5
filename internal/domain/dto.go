package domain

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// BuildResult struct - ordered view of a live build handed to renderers and chat layers
	BuildResult struct {
		UserID        string       `json:"user_id"`
		BuildID       string       `json:"build_id"`
		PerkIDs       []string     `json:"perk_ids"`
		Titles        []string     `json:"titles"`
		ImageRefs     []string     `json:"image_refs"`
		State         SessionState `json:"state"`
		ResultClaimed bool         `json:"result_claimed"`
	}

	// BlacklistChange struct - outcome of a blacklist mutation.
	// Changed is false when the call was redundant.
	BlacklistChange struct {
		UserID  string `json:"user_id"`
		PerkID  string `json:"perk_id"`
		Title   string `json:"title"`
		Listed  bool   `json:"listed"`
		Changed bool   `json:"changed"`
	}

	// PerkHelp struct - formatted description of a perk
	PerkHelp struct {
		PerkID   string `json:"perk_id"`
		Title    string `json:"title"`
		Text     string `json:"text"`
		ImageRef string `json:"image_ref,omitempty"`
	}

	// LineWebhookRequest struct - Domain LINE webhook request DTO
	LineWebhookRequest struct {
		Events []LineWebhookEvent
	}

	// LineReplyMessageRequest struct - Domain LINE reply message request DTO
	LineReplyMessageRequest struct {
		ReplyToken string
		Messages   []LineOutgoingMessage
	}

	// LinePushMessageRequest struct - Domain LINE push message request DTO
	LinePushMessageRequest struct {
		To       string
		Messages []LineOutgoingMessage
	}

	// LineOutgoingMessage struct - Domain LINE outgoing message DTO
	LineOutgoingMessage struct {
		Type     LineMessageType
		Text     string
		ImageURL string // For image
		BuildID  string // For result_buttons, echoed back by the postback
	}

	// LineMessageResponse struct - Domain LINE API response DTO
	LineMessageResponse struct {
		Status    string
		MessageID string
	}
)
