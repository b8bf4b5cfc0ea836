package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

type FeishuAdapter struct {
	client *HTTPClient
	panels *panelIDs
}

func NewFeishuAdapter(client *HTTPClient) *FeishuAdapter {
	return &FeishuAdapter{client: client, panels: newPanelIDs()}
}

func (a *FeishuAdapter) Name() string {
	return "feishu"
}

func (a *FeishuAdapter) Send(ctx context.Context, target Target, msg Message) error {
	signature, bearer := parseFeishuSecret(target.Secret)
	headers := map[string]string{}
	if signature != "" {
		headers["X-Lark-Signature"] = signature
	}
	payload := feishuCard(msg)
	if strings.TrimSpace(msg.Key) == "" {
		_, err := a.client.Post(ctx, target.Endpoint, headers, payload)
		return err
	}

	if id := a.panels.get(target, msg.Key); id != "" && bearer != "" {
		if editURL, ok := feishuEditURL(target.Endpoint, id); ok {
			_, err := a.client.Patch(ctx, editURL, map[string]string{"Authorization": "Bearer " + bearer}, payload)
			if err == nil || !isGone(err) {
				return err
			}
		}
	}
	body, err := a.client.Post(ctx, target.Endpoint, headers, payload)
	if err != nil {
		return err
	}
	id, err := feishuMessageID(body)
	if err != nil {
		// plain bot webhooks do not echo ids; the post itself went through
		return nil
	}
	a.panels.set(target, msg.Key, id)
	return nil
}

func (a *FeishuAdapter) Forget(target Target, key string) {
	a.panels.forget(target, key)
}

func feishuCard(msg Message) map[string]any {
	elements := []map[string]string{{"tag": "markdown", "text": msg.Description}}
	for _, f := range msg.Fields {
		elements = append(elements, map[string]string{"tag": "markdown", "text": "**" + f.Name + "**: " + f.Value})
	}
	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title":    map[string]any{"tag": "plain_text", "content": msg.Title},
				"template": "blue",
			},
			"elements": elements,
		},
	}
}

// parseFeishuSecret accepts either a bare signature or "sig:...;bearer:...".
func parseFeishuSecret(secret string) (signature, bearer string) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return "", ""
	}
	parts := strings.Split(s, ";")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "sig:"):
			signature = strings.TrimSpace(strings.TrimPrefix(p, "sig:"))
		case strings.HasPrefix(p, "bearer:"):
			bearer = strings.TrimSpace(strings.TrimPrefix(p, "bearer:"))
		case len(parts) == 1:
			signature = p
		}
	}
	return signature, bearer
}

func feishuEditURL(endpoint, msgID string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || msgID == "" {
		return "", false
	}
	u.Path = "/open-apis/im/v1/messages/" + msgID
	u.RawQuery = ""
	return u.String(), true
}

func feishuMessageID(body []byte) (string, error) {
	var resp struct {
		MessageID string `json:"message_id"`
		Data      struct {
			MessageID string `json:"message_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if id := strings.TrimSpace(resp.MessageID); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(resp.Data.MessageID); id != "" {
		return id, nil
	}
	return "", errors.New("feishu response missing message id")
}
