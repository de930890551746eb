package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	methods  []string
	forms    []url.Values
	failWith string
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		f.mu.Lock()
		f.methods = append(f.methods, method)
		f.forms = append(f.forms, r.PostForm)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Pet","username":"pet_offers_bot"}}`))
		default:
			if f.failWith != "" {
				w.Write([]byte(`{"ok":false,"error_code":400,"description":"` + f.failWith + `"}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":-100123,"type":"channel"}}}`))
		}
	})
}

func (f *fakeTelegram) last() (string, url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.methods[len(f.methods)-1], f.forms[len(f.forms)-1]
}

func newTestBot(t *testing.T, fake *fakeTelegram) *tgbotapi.BotAPI {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("token", server.URL+"/bot%s/%s")
	require.NoError(t, err)
	return api
}

func TestPublishMessage(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat("-100123"))

	d, err := p.Publish(context.Background(), "*✨ Bolinha*", "https://img/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, Delivery{ChatID: -100123, MessageID: 42}, d)
	method, form := fake.last()
	assert.Equal(t, "sendMessage", method)
	assert.Equal(t, "-100123", form.Get("chat_id"))
	assert.Equal(t, "*✨ Bolinha*", form.Get("text"))
	assert.Equal(t, "Markdown", form.Get("parse_mode"))
}

func TestPublishToChannelUsername(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat("@petofertas"))

	_, err := p.Publish(context.Background(), "oferta", "")
	require.NoError(t, err)

	_, form := fake.last()
	assert.Equal(t, "@petofertas", form.Get("chat_id"))
}

func TestPublishPhoto(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat("55"), WithPhotos(true))

	d, err := p.Publish(context.Background(), "legenda", "https://img/x.jpg")
	require.NoError(t, err)
	assert.True(t, d.Photo)

	method, form := fake.last()
	assert.Equal(t, "sendPhoto", method)
	assert.Equal(t, "https://img/x.jpg", form.Get("photo"))
	assert.Equal(t, "legenda", form.Get("caption"))
	assert.Equal(t, "Markdown", form.Get("parse_mode"))
}

func TestPublishLongCaptionFallsBackToText(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat("55"), WithPhotos(true))

	d, err := p.Publish(context.Background(), strings.Repeat("é", MaxCaptionLength+1), "https://img/x.jpg")
	require.NoError(t, err)
	assert.False(t, d.Photo)

	method, _ := fake.last()
	assert.Equal(t, "sendMessage", method)
}

func TestPublishEmojiCaptionCountsUTF16Units(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat("55"), WithPhotos(true))

	// 1000 runes but 1040 UTF-16 units: over Telegram's caption limit.
	text := strings.Repeat("🐾", 40) + strings.Repeat("a", 960)
	require.Equal(t, 1000, len([]rune(text)))

	d, err := p.Publish(context.Background(), text, "https://img/x.jpg")
	require.NoError(t, err)
	assert.False(t, d.Photo)

	method, _ := fake.last()
	assert.Equal(t, "sendMessage", method)
}

func TestCaptionLength(t *testing.T) {
	assert.Equal(t, 6, CaptionLength("oferta"))
	assert.Equal(t, 3, CaptionLength("ção"))
	assert.Equal(t, 2, CaptionLength("🐾"))
	assert.Equal(t, 1, CaptionLength("✨"))
	assert.Equal(t, MaxCaptionLength, CaptionLength(strings.Repeat("🐶", MaxCaptionLength/2)))
}

func TestPublishDeliveryFailure(t *testing.T) {
	fake := &fakeTelegram{failWith: "Bad Request: chat not found"}
	p := NewPublisher(newTestBot(t, fake), StaticChat("55"))

	_, err := p.Publish(context.Background(), "oferta", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestPublishWithoutChat(t *testing.T) {
	fake := &fakeTelegram{}
	p := NewPublisher(newTestBot(t, fake), StaticChat(""))

	_, err := p.Publish(context.Background(), "oferta", "")
	assert.True(t, errors.Is(err, ErrNoChat))

	method, _ := fake.last()
	assert.Equal(t, "getMe", method, "nothing sent")
}

func TestParseChat(t *testing.T) {
	c, err := ParseChat(" 123 ")
	require.NoError(t, err)
	assert.Equal(t, Chat{ID: 123}, c)

	c, err = ParseChat("@canal")
	require.NoError(t, err)
	assert.Equal(t, Chat{Username: "@canal"}, c)

	_, err = ParseChat("abc")
	assert.Error(t, err)
}
