package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// EventPayload is a tagged union over the event kinds. Exactly one variant
// matching Type is populated; unknown fields in the raw event detail are
// dropped during decode rather than carried around as an open map.
type EventPayload struct {
	Type EventType `json:"type"`

	Message      *MessagePayload      `json:"message,omitempty"`
	Join         *JoinPayload         `json:"join,omitempty"`
	Reaction     *ReactionPayload     `json:"reaction,omitempty"`
	Voice        *VoicePayload        `json:"voice,omitempty"`
	Subscription *SubscriptionPayload `json:"subscription,omitempty"`
	Donation     *DonationPayload     `json:"donation,omitempty"`
	Raid         *RaidPayload         `json:"raid,omitempty"`
}

type MessagePayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

type JoinPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type ReactionPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Emote       string `json:"emote"`
}

type VoicePayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Transcript  string `json:"transcript"`
	DurationMs  int64  `json:"duration_ms"`
}

type SubscriptionPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Tier        string `json:"tier"`
	Months      int    `json:"months"`
	IsGift      bool   `json:"is_gift"`
}

type DonationPayload struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Note        string  `json:"note"`
}

type RaidPayload struct {
	FromChannel string `json:"from_channel"`
	ViewerCount int    `json:"viewer_count"`
}

// ParseEventPayload decodes raw event detail into the variant matching
// eventType. Absent fields default to the zero value; an empty raw detail is
// tolerated and yields an empty variant.
func ParseEventPayload(eventType EventType, raw json.RawMessage) (EventPayload, error) {
	p := EventPayload{Type: eventType}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var dst any
	switch eventType {
	case EVENT_TYPE_MESSAGE:
		p.Message = &MessagePayload{}
		dst = p.Message
	case EVENT_TYPE_JOIN:
		p.Join = &JoinPayload{}
		dst = p.Join
	case EVENT_TYPE_REACTION:
		p.Reaction = &ReactionPayload{}
		dst = p.Reaction
	case EVENT_TYPE_VOICE_UTTERANCE:
		p.Voice = &VoicePayload{}
		dst = p.Voice
	case EVENT_TYPE_SUBSCRIPTION:
		p.Subscription = &SubscriptionPayload{}
		dst = p.Subscription
	case EVENT_TYPE_DONATION:
		p.Donation = &DonationPayload{}
		dst = p.Donation
	case EVENT_TYPE_RAID:
		p.Raid = &RaidPayload{}
		dst = p.Raid
	default:
		return p, fmt.Errorf("unknown event type %q", eventType)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return p, fmt.Errorf("failed to decode %s payload, %w", eventType, err)
	}
	return p, nil
}

// Actor returns the display identifier of whoever triggered the event,
// preferring the display name over the handle. May be empty.
func (p EventPayload) Actor() string {
	pick := func(display, username string) string {
		if display != "" {
			return display
		}
		return username
	}

	switch p.Type {
	case EVENT_TYPE_MESSAGE:
		if p.Message != nil {
			return pick(p.Message.DisplayName, p.Message.Username)
		}
	case EVENT_TYPE_JOIN:
		if p.Join != nil {
			return pick(p.Join.DisplayName, p.Join.Username)
		}
	case EVENT_TYPE_REACTION:
		if p.Reaction != nil {
			return pick(p.Reaction.DisplayName, p.Reaction.Username)
		}
	case EVENT_TYPE_VOICE_UTTERANCE:
		if p.Voice != nil {
			return pick(p.Voice.DisplayName, p.Voice.Username)
		}
	case EVENT_TYPE_SUBSCRIPTION:
		if p.Subscription != nil {
			return pick(p.Subscription.DisplayName, p.Subscription.Username)
		}
	case EVENT_TYPE_DONATION:
		if p.Donation != nil {
			return pick(p.Donation.DisplayName, p.Donation.Username)
		}
	case EVENT_TYPE_RAID:
		if p.Raid != nil {
			return p.Raid.FromChannel
		}
	}
	return ""
}

// Participants extracts the display identifiers present in the payload.
func (p EventPayload) Participants() []string {
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}

	switch p.Type {
	case EVENT_TYPE_MESSAGE:
		if p.Message != nil {
			add(p.Message.DisplayName, p.Message.Username)
		}
	case EVENT_TYPE_JOIN:
		if p.Join != nil {
			add(p.Join.DisplayName, p.Join.Username)
		}
	case EVENT_TYPE_REACTION:
		if p.Reaction != nil {
			add(p.Reaction.DisplayName, p.Reaction.Username)
		}
	case EVENT_TYPE_VOICE_UTTERANCE:
		if p.Voice != nil {
			add(p.Voice.DisplayName, p.Voice.Username)
		}
	case EVENT_TYPE_SUBSCRIPTION:
		if p.Subscription != nil {
			add(p.Subscription.DisplayName, p.Subscription.Username)
		}
	case EVENT_TYPE_DONATION:
		if p.Donation != nil {
			add(p.Donation.DisplayName, p.Donation.Username)
		}
	case EVENT_TYPE_RAID:
		if p.Raid != nil {
			add(p.Raid.FromChannel)
		}
	}

	// dedupe, keep order
	seen := make(map[string]struct{}, len(out))
	var uniq []string
	for _, v := range out {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq
}

// Summary renders the deterministic per-kind template used as the stored
// human readable summary.
func (p EventPayload) Summary() string {
	actor := p.Actor()
	if actor == "" {
		actor = "Someone"
	}

	switch p.Type {
	case EVENT_TYPE_MESSAGE:
		return fmt.Sprintf("%s sent a message", actor)
	case EVENT_TYPE_JOIN:
		return fmt.Sprintf("%s joined the chat", actor)
	case EVENT_TYPE_REACTION:
		if p.Reaction != nil && p.Reaction.Emote != "" {
			return fmt.Sprintf("%s reacted with %s", actor, p.Reaction.Emote)
		}
		return fmt.Sprintf("%s reacted", actor)
	case EVENT_TYPE_VOICE_UTTERANCE:
		return fmt.Sprintf("%s said something on voice", actor)
	case EVENT_TYPE_SUBSCRIPTION:
		return fmt.Sprintf("New subscription from %s", actor)
	case EVENT_TYPE_DONATION:
		if p.Donation != nil && p.Donation.Amount > 0 {
			return fmt.Sprintf("%s donated %.2f %s", actor, p.Donation.Amount, p.Donation.Currency)
		}
		return fmt.Sprintf("%s sent a donation", actor)
	case EVENT_TYPE_RAID:
		if p.Raid != nil && p.Raid.ViewerCount > 0 {
			return fmt.Sprintf("Raid from %s with %d viewers", actor, p.Raid.ViewerCount)
		}
		return fmt.Sprintf("Raid from %s", actor)
	}
	return fmt.Sprintf("%s triggered an event", actor)
}

// Text returns the raw text carried by the payload, if the kind has any.
func (p EventPayload) Text() string {
	switch p.Type {
	case EVENT_TYPE_MESSAGE:
		if p.Message != nil {
			return p.Message.Text
		}
	case EVENT_TYPE_VOICE_UTTERANCE:
		if p.Voice != nil {
			return p.Voice.Transcript
		}
	case EVENT_TYPE_DONATION:
		if p.Donation != nil {
			return p.Donation.Note
		}
	}
	return ""
}

func (p EventPayload) String() string {
	raw, _ := json.Marshal(p)
	return string(raw)
}

// Value/Scan store the payload as jsonb.
func (p EventPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *EventPayload) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported payload column type %T", value)
	}
}
