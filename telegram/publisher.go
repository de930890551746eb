// Package telegram delivers composed offer messages to the configured chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxCaptionLength is Telegram's limit for photo captions.
const MaxCaptionLength = 1024

// ErrNoChat is returned when no destination chat is known yet.
var ErrNoChat = errors.New("no destination chat configured")

// Sender sends a Telegram request. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatSource resolves the destination chat: a numeric id or an @channel name.
type ChatSource interface {
	ChatID(ctx context.Context) (string, error)
}

// StaticChat is a ChatSource that always returns the same chat.
type StaticChat string

func (c StaticChat) ChatID(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(c)) == "" {
		return "", ErrNoChat
	}
	return string(c), nil
}

// Delivery describes a sent message.
type Delivery struct {
	ChatID    int64
	MessageID int
	Photo     bool
}

// Publisher sends offers with Markdown formatting.
type Publisher struct {
	api       Sender
	chats     ChatSource
	sendPhoto bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPhotos makes Publish send the offer image with the text as caption
// whenever an image URL is available and the text fits in a caption.
func WithPhotos(enabled bool) Option {
	return func(p *Publisher) {
		p.sendPhoto = enabled
	}
}

// NewPublisher creates a Publisher.
func NewPublisher(api Sender, chats ChatSource, opts ...Option) *Publisher {
	p := &Publisher{api: api, chats: chats}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish delivers text, as a photo caption when enabled and possible.
func (p *Publisher) Publish(ctx context.Context, text, imageURL string) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}

	chat, err := p.chats.ChatID(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("resolve chat: %w", err)
	}
	target, err := ParseChat(chat)
	if err != nil {
		return Delivery{}, err
	}

	usePhoto := p.sendPhoto && imageURL != ""
	if n := CaptionLength(text); usePhoto && n > MaxCaptionLength {
		slog.Debug("message too long for a caption, sending text only", "length", n)
		usePhoto = false
	}

	var req tgbotapi.Chattable
	if usePhoto {
		photo := tgbotapi.NewPhoto(target.ID, tgbotapi.FileURL(imageURL))
		photo.ChannelUsername = target.Username
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		req = photo
	} else {
		msg := tgbotapi.NewMessage(target.ID, text)
		msg.ChannelUsername = target.Username
		msg.ParseMode = tgbotapi.ModeMarkdown
		req = msg
	}

	sent, err := p.api.Send(req)
	if err != nil {
		return Delivery{}, fmt.Errorf("send to %s: %w", chat, err)
	}

	d := Delivery{MessageID: sent.MessageID, Photo: usePhoto, ChatID: target.ID}
	if sent.Chat != nil {
		d.ChatID = sent.Chat.ID
	}
	slog.Info("offer published", "chat_id", d.ChatID, "message_id", d.MessageID, "photo", d.Photo)
	return d, nil
}

// CaptionLength measures text the way Telegram applies its caption limit:
// in UTF-16 code units, so emoji outside the BMP count twice.
func CaptionLength(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// Chat is a parsed destination.
type Chat struct {
	ID       int64
	Username string
}

// ParseChat accepts a numeric chat id or an @channel username.
func ParseChat(raw string) (Chat, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Chat{}, ErrNoChat
	}
	if strings.HasPrefix(raw, "@") {
		return Chat{Username: raw}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Chat{}, fmt.Errorf("invalid chat id %q", raw)
	}
	return Chat{ID: id}, nil
}
