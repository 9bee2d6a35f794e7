// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/utils"
)

// chatHistoryLimit is how many trailing non-empty messages seed the reply
// conversation.
const chatHistoryLimit = 5

// ChatMessageService synthesizes agent replies on the chat channel of a
// completed meeting.
type ChatMessageService struct {
	meetingRepo  domain.MeetingRepository
	agentRepo    domain.AgentRepository
	chatProvider domain.ChatProvider
	summarizer   domain.Summarizer
}

// NewChatMessageService creates a new chat message service.
func NewChatMessageService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	chatProvider domain.ChatProvider,
	summarizer domain.Summarizer,
) *ChatMessageService {
	return &ChatMessageService{
		meetingRepo:  meetingRepo,
		agentRepo:    agentRepo,
		chatProvider: chatProvider,
		summarizer:   summarizer,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *ChatMessageService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.chatProvider != nil &&
		s.summarizer != nil
}

// HandleMessageNew answers a user message on a completed meeting's channel
// as the meeting's agent. Messages authored by the agent itself are ignored
// so the agent never replies to its own output.
func (s *ChatMessageService) HandleMessageNew(ctx context.Context, payload *models.MessageNewPayload) error {
	meetingUID := payload.ChannelID
	if meetingUID == "" {
		return domain.NewValidationError("missing channel_id in message event")
	}
	if payload.User.ID == "" {
		return domain.NewValidationError("missing user id in message event")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.meetingRepo.GetMeeting(ctx, meetingUID)
	if err != nil {
		return err
	}
	if meeting.Status != models.MeetingStatusCompleted {
		slog.InfoContext(ctx, "ignoring chat message for meeting not completed",
			"status", meeting.Status)
		return domain.NewNotFoundError("completed meeting not found")
	}

	agent, err := s.agentRepo.GetAgent(ctx, meeting.AgentUID)
	if err != nil {
		return err
	}

	if payload.User.ID == agent.UID {
		slog.DebugContext(ctx, "ignoring message authored by the agent")
		return nil
	}

	if err := s.chatProvider.UpsertUser(ctx, &models.ChatUser{ID: agent.UID, Name: agent.Name}); err != nil {
		slog.ErrorContext(ctx, "failed to upsert agent chat identity", logging.ErrKey, err)
		return domain.NewInternalError("failed to prepare agent chat identity", err)
	}

	history, err := s.chatProvider.RecentMessages(ctx, meetingUID, chatHistoryLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch channel history", logging.ErrKey, err)
		return domain.NewInternalError("failed to fetch channel history", err)
	}

	conversation := buildConversation(history, payload.Message.Text, agent.UID)
	system := buildChatSystemPrompt(agent, utils.StringValue(meeting.Summary))

	reply, err := s.summarizer.Complete(ctx, system, conversation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate agent reply", logging.ErrKey, err)
		return domain.NewInternalError("failed to generate agent reply", err)
	}

	if err := s.chatProvider.SendMessage(ctx, meetingUID, agent.UID, reply); err != nil {
		slog.ErrorContext(ctx, "failed to send agent reply", logging.ErrKey, err)
		return domain.NewInternalError("failed to send agent reply", err)
	}

	slog.InfoContext(ctx, "sent agent chat reply", "agent_uid", agent.UID)
	return nil
}

// buildConversation turns the channel history plus the triggering message
// into role-tagged completion turns. Agent-authored messages are tagged
// assistant, everything else user. Only the trailing non-empty messages are
// kept.
func buildConversation(history []models.ChatMessage, latest string, agentUID string) []models.CompletionMessage {
	var nonEmpty []models.ChatMessage
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		nonEmpty = append(nonEmpty, msg)
	}
	if len(nonEmpty) > chatHistoryLimit {
		nonEmpty = nonEmpty[len(nonEmpty)-chatHistoryLimit:]
	}

	conversation := make([]models.CompletionMessage, 0, len(nonEmpty)+1)
	for _, msg := range nonEmpty {
		role := models.CompletionRoleUser
		if msg.UserID == agentUID {
			role = models.CompletionRoleAssistant
		}
		conversation = append(conversation, models.CompletionMessage{
			Role:    role,
			Content: msg.Text,
		})
	}

	if strings.TrimSpace(latest) != "" {
		last := ""
		if len(conversation) > 0 {
			last = conversation[len(conversation)-1].Content
		}
		if last != latest {
			conversation = append(conversation, models.CompletionMessage{
				Role:    models.CompletionRoleUser,
				Content: latest,
			})
		}
	}

	return conversation
}

// buildChatSystemPrompt combines the agent's original instructions with the
// meeting summary so the reply stays grounded in what happened on the call.
func buildChatSystemPrompt(agent *models.Agent, summary string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping the user revisit a recently completed meeting.\n")
	b.WriteString("Below is a summary of the meeting, generated from the transcript:\n\n")
	b.WriteString(summary)
	b.WriteString("\n\n")
	b.WriteString("The following are your original assistant instructions from the live meeting:\n\n")
	b.WriteString(agent.Instructions)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(
		"Respond as %s. Base your answers on the meeting summary above. If the summary does not contain the answer, say so.",
		agent.Name,
	))
	return b.String()
}
