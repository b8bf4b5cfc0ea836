package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

type DiscordAdapter struct {
	client *HTTPClient
	panels *panelIDs
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client, panels: newPanelIDs()}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

func (a *DiscordAdapter) Send(ctx context.Context, target Target, msg Message) error {
	payload := discordPayload(msg)
	if strings.TrimSpace(msg.Key) == "" {
		_, err := a.client.Post(ctx, target.Endpoint, nil, payload)
		return err
	}

	if id := a.panels.get(target, msg.Key); id != "" {
		if editURL, ok := discordEditURL(target.Endpoint, id); ok {
			_, err := a.client.Patch(ctx, editURL, nil, payload)
			if err == nil || !isGone(err) {
				return err
			}
		}
	}
	id, err := a.create(ctx, target.Endpoint, payload)
	if err != nil {
		return err
	}
	a.panels.set(target, msg.Key, id)
	return nil
}

func (a *DiscordAdapter) Forget(target Target, key string) {
	a.panels.forget(target, key)
}

func (a *DiscordAdapter) create(ctx context.Context, endpoint string, payload map[string]any) (string, error) {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	body, err := a.client.Post(ctx, endpoint+sep+"wait=true", nil, payload)
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(body, &created) != nil || strings.TrimSpace(created.ID) == "" {
		return "", errors.New("discord webhook response missing message id")
	}
	return created.ID, nil
}

func discordPayload(msg Message) map[string]any {
	type embedField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}
	fields := make([]embedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := map[string]any{
		"title":       msg.Title,
		"description": msg.Description,
		"fields":      fields,
		"color":       msg.Color,
	}
	if !msg.SentAt.IsZero() {
		embed["timestamp"] = msg.SentAt.UTC().Format(time.RFC3339)
	}
	return map[string]any{"embeds": []map[string]any{embed}}
}

// discordEditURL maps /api/webhooks/{id}/{token} to the message edit route.
func discordEditURL(endpoint, msgID string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || msgID == "" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] != "api" || parts[1] != "webhooks" {
		return "", false
	}
	u.Path = "/api/webhooks/" + parts[2] + "/" + parts[3] + "/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}
