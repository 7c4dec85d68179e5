package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/input"
	"perk-roulette/internal/ports/output"

	"github.com/sirupsen/logrus"
)

const helpText = `Available commands:
/roll - Roll a new build
/retry N - Re-roll slot N of your build
/ban N - Blacklist the perk in slot N and re-roll it
/bye <perk or N> - Blacklist a perk
/add <perk> - Remove a perk from your blacklist
/banlist - Show your blacklist
/set a, b, c, d - Use your own build
/win, /loss - Register the result of your build
/perk <perk> - Describe a perk
/usage [month|year] [win|loss] [least] - Your most played perks
/help - Show this message`

// usageRowsShown caps the rows listed by /usage
const usageRowsShown = 10

// LineWebhookService struct - Application service implementing LINE webhook use cases
type LineWebhookService struct {
	lineClient   output.LineClient
	roulette     input.RouletteService
	imageBaseURL string
}

var _ input.LineWebhookService = (*LineWebhookService)(nil)

// NewLineWebhookService func - Creates new LINE webhook service.
// imageBaseURL prefixes perk image refs; when empty builds are sent as text only.
func NewLineWebhookService(lineClient output.LineClient, roulette input.RouletteService, imageBaseURL string) *LineWebhookService {
	return &LineWebhookService{
		lineClient:   lineClient,
		roulette:     roulette,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// HandleWebhook func - Use case: Handle incoming webhook events from LINE
func (s *LineWebhookService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received LINE event: type=%s, source=%s, userID=%s",
			event.Type, event.Source.Type, event.Source.UserID)

		var err error
		switch event.Type {
		case domain.LineEventTypeMessage:
			err = s.handleMessageEvent(ctx, event)
		case domain.LineEventTypePostback:
			err = s.handlePostbackEvent(ctx, event)
		case domain.LineEventTypeFollow:
			err = s.handleFollowEvent(event)
		case domain.LineEventTypeUnfollow:
			err = s.handleUnfollowEvent(event)
		default:
			logrus.Infof("Unhandled event type: %s", event.Type)
		}
		if err != nil {
			logrus.Errorf("Failed to handle %s event: %v", event.Type, err)
			return err
		}
	}
	return nil
}

// handleMessageEvent - routes slash commands, other text is ignored
func (s *LineWebhookService) handleMessageEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	if event.Message == nil {
		return nil
	}
	if event.Message.Type != domain.LineMessageTypeText {
		logrus.Infof("Ignoring non-text message: type=%s", event.Message.Type)
		return nil
	}

	text := strings.TrimSpace(event.Message.Text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}
	messages, rendersBuild := s.handleCommand(ctx, text, event.Source.UserID)
	return s.reply(ctx, event, messages, rendersBuild)
}

// handlePostbackEvent - Won/Lost buttons under a rendered build
func (s *LineWebhookService) handlePostbackEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	outcome, buildID, ok := domain.ParseResultPostback(event.PostbackData)
	if !ok {
		logrus.Warnf("Unknown postback data: %q", event.PostbackData)
		return nil
	}
	won := outcome == domain.OutcomeWin
	_, err := s.roulette.RegisterResultForBuild(ctx, event.Source.UserID, buildID, won)
	return s.reply(ctx, event, resultReply(won, err), false)
}

func (s *LineWebhookService) reply(ctx context.Context, event domain.LineWebhookEvent, messages []domain.LineOutgoingMessage, rendersBuild bool) error {
	if len(messages) == 0 || event.ReplyToken == "" {
		return nil
	}
	response, err := s.lineClient.ReplyMessage(domain.LineReplyMessageRequest{
		ReplyToken: event.ReplyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	if rendersBuild && response != nil && response.MessageID != "" {
		if err := s.roulette.SetLastMessage(ctx, event.Source.UserID, response.MessageID); err != nil {
			logrus.Warnf("Failed to remember build message: %v", err)
		}
	}
	return nil
}

// handleCommand - returns the reply and whether it renders a build
func (s *LineWebhookService) handleCommand(ctx context.Context, text, userID string) ([]domain.LineOutgoingMessage, bool) {
	command, arg, _ := strings.Cut(text, " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	switch command {
	case "/help":
		return textReply(helpText), false

	case "/roll":
		result, err := s.roulette.Roll(ctx, userID)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		return s.renderBuild(result), true

	case "/retry", "/ban":
		index, err := parseSlot(arg)
		if err != nil {
			return textReply(fmt.Sprintf("Usage: %s N", command)), false
		}
		var result *domain.BuildResult
		if command == "/retry" {
			result, err = s.roulette.ReplaceAt(ctx, userID, index)
		} else {
			result, err = s.roulette.BanAndReplace(ctx, userID, index)
		}
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		return s.renderBuild(result), true

	case "/bye":
		if arg == "" {
			return textReply("Usage: /bye <perk or N>"), false
		}
		perkID, err := s.resolvePerk(ctx, userID, arg)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		change, err := s.roulette.AddToBlacklist(ctx, userID, perkID)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		if !change.Changed {
			return textReply(fmt.Sprintf("%s is already on your blacklist", change.Title)), false
		}
		return textReply(fmt.Sprintf("%s added to your blacklist", change.Title)), false

	case "/add":
		if arg == "" {
			return textReply("Usage: /add <perk>"), false
		}
		perk, err := s.roulette.PerkByTitle(arg)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		change, err := s.roulette.RemoveFromBlacklist(ctx, userID, perk.ID)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		if !change.Changed {
			return textReply(fmt.Sprintf("%s is not on your blacklist", change.Title)), false
		}
		return textReply(fmt.Sprintf("%s removed from your blacklist", change.Title)), false

	case "/banlist":
		titles, err := s.roulette.GetBlacklisted(ctx, userID)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		if len(titles) == 0 {
			return textReply("Your blacklist is empty"), false
		}
		return textReply("Blacklisted perks:\n" + strings.Join(titles, "\n")), false

	case "/set":
		titles := splitTitles(arg)
		result, err := s.roulette.SetCustomBuildByTitles(ctx, userID, titles)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		return s.renderBuild(result), true

	case "/win", "/loss":
		return s.registerResult(ctx, userID, command == "/win"), false

	case "/perk":
		if arg == "" {
			return textReply("Usage: /perk <perk>"), false
		}
		perk, err := s.roulette.PerkByTitle(arg)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		help, err := s.roulette.PerkHelp(perk.ID)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		messages := textReply(help.Text)
		if url := s.imageURL(help.ImageRef); url != "" {
			messages = append(messages, domain.LineOutgoingMessage{Type: domain.LineMessageTypeImage, ImageURL: url})
		}
		return messages, false

	case "/usage":
		filter, err := parseUsageFilter(userID, arg)
		if err != nil {
			return textReply("Usage: /usage [month|year] [win|loss] [least]"), false
		}
		rows, err := s.roulette.Usage(ctx, filter)
		if err != nil {
			return textReply(errorMessage(err)), false
		}
		return textReply(formatUsage(rows)), false

	default:
		return textReply(fmt.Sprintf("Unknown command: %s\nType /help for available commands", command)), false
	}
}

func (s *LineWebhookService) registerResult(ctx context.Context, userID string, won bool) []domain.LineOutgoingMessage {
	_, err := s.roulette.RegisterResult(ctx, userID, won, nil)
	return resultReply(won, err)
}

func resultReply(won bool, err error) []domain.LineOutgoingMessage {
	if err != nil {
		return textReply(errorMessage(err))
	}
	if won {
		return textReply("Win registered. GG!")
	}
	return textReply("Loss registered. Better luck next time.")
}

// resolvePerk accepts a 1-based build slot or an exact title
func (s *LineWebhookService) resolvePerk(ctx context.Context, userID, arg string) (string, error) {
	if index, err := parseSlot(arg); err == nil {
		return s.roulette.PerkIDAt(ctx, userID, index)
	}
	perk, err := s.roulette.PerkByTitle(arg)
	if err != nil {
		return "", err
	}
	return perk.ID, nil
}

// renderBuild lists the build with Won/Lost buttons, preceded by the perk images when available
func (s *LineWebhookService) renderBuild(result *domain.BuildResult) []domain.LineOutgoingMessage {
	messages := make([]domain.LineOutgoingMessage, 0, len(result.PerkIDs)+1)
	for _, ref := range result.ImageRefs {
		if url := s.imageURL(ref); url != "" {
			messages = append(messages, domain.LineOutgoingMessage{Type: domain.LineMessageTypeImage, ImageURL: url})
		}
	}
	var b strings.Builder
	b.WriteString("Your build:")
	for i, title := range result.Titles {
		fmt.Fprintf(&b, "\n%d. %s", i+1, title)
	}
	messages = append(messages, domain.LineOutgoingMessage{
		Type:    domain.LineMessageTypeResultButtons,
		Text:    b.String(),
		BuildID: result.BuildID,
	})
	return messages
}

func (s *LineWebhookService) imageURL(ref string) string {
	if s.imageBaseURL == "" || ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "https://") {
		return ref
	}
	return s.imageBaseURL + "/" + strings.TrimLeft(ref, "/")
}

func textReply(text string) []domain.LineOutgoingMessage {
	return []domain.LineOutgoingMessage{{Type: domain.LineMessageTypeText, Text: text}}
}

// parseSlot converts a 1-based slot number to an index
func parseSlot(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

func splitTitles(arg string) []string {
	parts := strings.Split(arg, ",")
	titles := make([]string, 0, len(parts))
	for _, part := range parts {
		if title := strings.TrimSpace(part); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

func parseUsageFilter(userID, arg string) (domain.UsageFilter, error) {
	filter := domain.UsageFilter{UserID: userID, Order: domain.UsageOrderMost, Limit: usageRowsShown}
	for _, word := range strings.Fields(strings.ToLower(arg)) {
		switch word {
		case string(domain.UsagePeriodMonth), string(domain.UsagePeriodYear), string(domain.UsagePeriodAll):
			since, err := domain.UsagePeriod(word).Since(time.Now())
			if err != nil {
				return filter, err
			}
			filter.Since = since
		case string(domain.OutcomeWin), string(domain.OutcomeLoss):
			filter.Outcome = domain.Outcome(word)
		case string(domain.UsageOrderLeast), string(domain.UsageOrderMost):
			filter.Order = domain.UsageOrder(word)
		default:
			return filter, fmt.Errorf("unknown usage option %q", word)
		}
	}
	return filter, nil
}

func formatUsage(rows []domain.UsageRow) string {
	if len(rows) == 0 {
		return "No matches registered yet"
	}
	var b strings.Builder
	b.WriteString("Perk usage:")
	for i, row := range rows {
		title := row.Title
		if title == "" {
			title = row.PerkID
		}
		fmt.Fprintf(&b, "\n%d. %s - %d games (%dW/%dL)", i+1, title, row.Games, row.Wins, row.Losses)
	}
	return b.String()
}

// errorMessage turns engine errors into chat replies without internal details
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoActiveBuild):
		return "You have no build yet. Type /roll first."
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "That slot is not part of your build."
	case errors.Is(err, domain.ErrInvalidBuild):
		return "A custom build needs one known perk per slot, separated by commas."
	case errors.Is(err, domain.ErrNotFound):
		return "I don't know that perk. Check the exact name."
	case errors.Is(err, domain.ErrStaleBuild):
		return "Those buttons belong to an older build. Use the ones under your latest build."
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "A result was already registered for this build."
	case errors.Is(err, domain.ErrInsufficientCatalog):
		return "Not enough perks left to roll. Remove some from your blacklist with /add."
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "Storage is unavailable right now, please try again later."
	default:
		return "Sorry, something went wrong."
	}
}

// handleFollowEvent - Business logic for follow events
func (s *LineWebhookService) handleFollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User followed: userID=%s", event.Source.UserID)

	welcomeMsg := domain.LinePushMessageRequest{
		To:       event.Source.UserID,
		Messages: textReply("Welcome to Perk Roulette!\n\nType /roll for a random build or /help to see every command."),
	}
	if _, err := s.lineClient.PushMessage(welcomeMsg); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}
	return nil
}

// handleUnfollowEvent - drops the in-memory session, stored constraints are kept
func (s *LineWebhookService) handleUnfollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User unfollowed: userID=%s", event.Source.UserID)
	if err := s.roulette.EndSession(event.Source.UserID, false); err != nil {
		logrus.Warnf("Session kept after unfollow: %v", err)
	}
	return nil
}
