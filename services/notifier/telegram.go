package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moneyhunter/dealworker/logger"
	"moneyhunter/dealworker/services/store"
)

const defaultAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers deal alerts through the Telegram Bot API
type TelegramNotifier struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(token, chatID string, timeout time.Duration) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether credentials are present
func (n *TelegramNotifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Notify sends the alert synchronously, once. Any transport error,
// non-success status or malformed acknowledgment is a false result, never
// an error; the deal is persisted either way.
func (n *TelegramNotifier) Notify(ctx context.Context, deal store.Deal, label string, tags []string) bool {
	log := logger.ForNotifier()

	if !n.Enabled() {
		return false
	}

	payload := sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  FormatDealMessage(deal, label, tags),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message")
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("failed to create request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("텔레그램 네트워크 에러")
		return false
	}
	defer resp.Body.Close()

	var ack struct {
		Ok bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		log.Error().Err(err).Int("status", resp.StatusCode).Msg("malformed acknowledgment")
		return false
	}

	if resp.StatusCode != http.StatusOK || !ack.Ok {
		log.Error().Int("status", resp.StatusCode).Bool("ok", ack.Ok).Msg("텔레그램 발송 실패")
		return false
	}

	log.Debug().Str("url", deal.URL).Msg("텔레그램 발송 성공")
	return true
}

// FormatDealMessage renders the fixed-shape alert: a header naming the
// source and tags, then title, price and link lines.
func FormatDealMessage(deal store.Deal, label string, tags []string) string {
	price := deal.Price
	if price == "" {
		price = "정보 없음"
	}

	header := fmt.Sprintf("[🔥 %s]", label)
	if len(tags) > 0 {
		decorated := make([]string, len(tags))
		for i, t := range tags {
			decorated[i] = "[" + t + "]"
		}
		header = header + " " + strings.Join(decorated, " ")
	}

	return fmt.Sprintf("%s\n제목: %s\n가격: %s\n링크: %s", header, deal.Title, price, deal.URL)
}
