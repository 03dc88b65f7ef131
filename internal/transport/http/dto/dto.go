package dto

import (
	"time"

	"github.com/amora-app/backend/internal/domain/model"
	"github.com/amora-app/backend/internal/services/discovery"
	"github.com/amora-app/backend/internal/services/health"
	"github.com/amora-app/backend/internal/services/matches"
)

type SwipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeResponse struct {
	Direction    string `json:"direction"`
	MatchCreated bool   `json:"match_created"`
}

type DiscoveryResponse struct {
	Candidates []discovery.Candidate `json:"candidates"`
}

type MatchListResponse struct {
	Matches []matches.Summary `json:"matches"`
}

type MatchStatusResponse struct {
	Matched   bool       `json:"matched"`
	MatchID   int64      `json:"match_id,omitempty"`
	MatchedAt *time.Time `json:"matched_at,omitempty"`
}

type OpenConversationRequest struct {
	TargetID string `json:"target_id"`
}

type ConversationResponse struct {
	Conversation model.Conversation `json:"conversation"`
}

type MessageRequest struct {
	Body string `json:"body"`
}

type MessageResponse struct {
	Message model.Message `json:"message"`
}

type MessageListResponse struct {
	Messages []model.Message `json:"messages"`
}

type HealthStateResponse struct {
	State health.State `json:"state"`
}

type SnoozeResponse struct {
	SnoozedUntil time.Time `json:"snoozed_until"`
}

type CloseConversationRequest struct {
	Resolution string `json:"resolution"`
	TemplateID int64  `json:"template_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

type CloseConversationResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	GracefulClosures int64  `json:"graceful_closures"`
}

type ClosureTemplatesResponse struct {
	Templates []model.ClosureTemplate `json:"templates"`
}

type CompatibilityResponse struct {
	Score model.CompatibilityScore `json:"score"`
}

type PreferencesRequest struct {
	AgeMin           int      `json:"age_min"`
	AgeMax           int      `json:"age_max"`
	MaxDistanceMiles float64  `json:"max_distance_miles"`
	InterestedIn     []string `json:"interested_in"`
}

type PreferencesResponse struct {
	Preference model.Preference `json:"preference"`
}

type PhotoURLResponse struct {
	URL string `json:"url"`
}
