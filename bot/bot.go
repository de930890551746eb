// Package bot implements the Telegram commands used to operate the offer
// channel.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pet-offers-bot/rotation"
	"pet-offers-bot/runner"
	"pet-offers-bot/settings"
	"pet-offers-bot/shopee"
	"pet-offers-bot/storage"
	"pet-offers-bot/telegram"
)

// Keys of the persisted key/value settings the bot manages.
const (
	ChatIDKey   = "chat_id"
	ScheduleKey = "schedule"
)

// ErrSettingNotFound is returned by stores for a missing key.
var ErrSettingNotFound = storage.ErrNotFound

// MessageSender sends plain-text replies.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Store is the persistence the commands need.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetSettings(ctx context.Context, user string) (*settings.Settings, error)
	SaveSettings(ctx context.Context, user string, s *settings.Settings) error
	PostedStats(ctx context.Context) (storage.PostedStats, error)
}

// OfferTrigger runs the offer pipeline once.
type OfferTrigger interface {
	Run(ctx context.Context) (*runner.Result, error)
}

// ScheduleUpdater replaces the scheduled job.
type ScheduleUpdater interface {
	Schedule(spec string, fn func(ctx context.Context)) error
	Spec() string
	Next() time.Time
}

// CommandHandler handles bot commands.
type CommandHandler struct {
	sender    MessageSender
	store     Store
	trigger   OfferTrigger
	rotation  rotation.KV
	scheduler ScheduleUpdater
	job       func(ctx context.Context)
	admins    map[int64]bool
	user      string
	location  *time.Location
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithAdmins restricts /send, /settings changes and /schedule changes to the
// given Telegram user ids. No ids means everyone may use them.
func WithAdmins(ids []int64) Option {
	return func(h *CommandHandler) {
		for _, id := range ids {
			h.admins[id] = true
		}
	}
}

// WithScheduler lets /schedule replace the job with a new spec running job.
func WithScheduler(s ScheduleUpdater, job func(ctx context.Context)) Option {
	return func(h *CommandHandler) {
		h.scheduler = s
		h.job = job
	}
}

// WithRotationStore sets where the current sort type is read for /stats.
// Defaults to the main store.
func WithRotationStore(kv rotation.KV) Option {
	return func(h *CommandHandler) {
		h.rotation = kv
	}
}

// WithSettingsUser selects the settings row edited by /settings.
func WithSettingsUser(user string) Option {
	return func(h *CommandHandler) {
		if user != "" {
			h.user = user
		}
	}
}

// WithLocation sets the timezone used to display times.
func WithLocation(loc *time.Location) Option {
	return func(h *CommandHandler) {
		h.location = loc
	}
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(sender MessageSender, store Store, trigger OfferTrigger, opts ...Option) *CommandHandler {
	h := &CommandHandler{
		sender:   sender,
		store:    store,
		trigger:  trigger,
		rotation: store,
		admins:   make(map[int64]bool),
		user:     settings.DefaultUser,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle dispatches a message text to its command. Text that is not a
// command is ignored.
func (h *CommandHandler) Handle(ctx context.Context, chatID, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}

	cmd, args, _ := strings.Cut(text, " ")
	// Commands sent in groups may carry the bot name: /send@pet_offers_bot
	cmd, _, _ = strings.Cut(cmd, "@")
	args = strings.TrimSpace(args)

	switch strings.ToLower(cmd) {
	case "/start":
		return h.HandleStart(ctx, chatID)
	case "/chatid":
		return h.HandleChatID(ctx, chatID)
	case "/send":
		if !h.allowed(userID) {
			return h.reply(ctx, chatID, msgRestricted)
		}
		return h.HandleSend(ctx, chatID)
	case "/settings":
		if args != "" && !h.allowed(userID) {
			return h.reply(ctx, chatID, msgRestricted)
		}
		return h.HandleSettings(ctx, chatID, args)
	case "/stats":
		return h.HandleStats(ctx, chatID)
	case "/schedule":
		if args != "" && !h.allowed(userID) {
			return h.reply(ctx, chatID, msgRestricted)
		}
		return h.HandleSchedule(ctx, chatID, args)
	case "/help":
		return h.reply(ctx, chatID, helpText)
	default:
		return h.reply(ctx, chatID, "Comando desconhecido.\n\n"+helpText)
	}
}

const msgRestricted = "⛔ Comando restrito aos administradores."

const helpText = "Comandos:\n" +
	"/send - Buscar e enviar uma oferta agora\n" +
	"/settings - Ver ou alterar filtros de busca\n" +
	"/schedule - Ver ou alterar o agendamento\n" +
	"/stats - Ofertas publicadas e estratégia atual\n" +
	"/chatid - Mostrar o id deste chat"

func (h *CommandHandler) allowed(userID int64) bool {
	return len(h.admins) == 0 || h.admins[userID]
}

func (h *CommandHandler) reply(ctx context.Context, chatID int64, text string) error {
	return h.sender.SendMessage(ctx, chatID, text)
}

// HandleStart handles the /start command. The chat becomes the destination
// for offers unless one is configured explicitly.
func (h *CommandHandler) HandleStart(ctx context.Context, chatID int64) error {
	if err := h.store.SetSetting(ctx, ChatIDKey, strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("save chat_id: %w", err)
	}

	msg := "Bem-vindo ao Pet Offers Bot! 🐾\n\n" +
		"As ofertas serão publicadas neste chat.\n\n" + helpText
	return h.reply(ctx, chatID, msg)
}

// HandleChatID handles the /chatid command.
func (h *CommandHandler) HandleChatID(ctx context.Context, chatID int64) error {
	return h.reply(ctx, chatID, fmt.Sprintf("chat_id: %d", chatID))
}

// HandleSend handles the /send command.
func (h *CommandHandler) HandleSend(ctx context.Context, chatID int64) error {
	res, err := h.trigger.Run(ctx)
	if err != nil {
		msg := fmt.Sprintf("❌ Erro ao enviar oferta: %v", err)
		if res != nil {
			msg += fmt.Sprintf("\nRequisições: %d", res.TotalRequests)
		}
		return h.reply(ctx, chatID, msg)
	}
	return h.reply(ctx, chatID, FormatResult(res))
}

// FormatResult summarises a run for the operator.
func FormatResult(res *runner.Result) string {
	if !res.Found {
		return fmt.Sprintf("🔍 %s\nRequisições: %d\nPróxima estratégia: %s",
			res.Message, res.TotalRequests, shopee.SortTypeName(res.NextStrategy))
	}
	return fmt.Sprintf("✅ %s\nItem: %s\nCategoria: %d\nTipo: %s\nEstratégia: %s → %s\nRequisições: %d",
		res.Message,
		res.ItemID,
		res.CategoryID,
		res.ProductKind,
		shopee.SortTypeName(res.StrategyUsed),
		shopee.SortTypeName(res.NextStrategy),
		res.TotalRequests)
}

// HandleSettings handles the /settings command.
func (h *CommandHandler) HandleSettings(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		return h.displaySettings(ctx, chatID)
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		return h.sendSettingsUsage(ctx, chatID)
	}
	field, value := strings.ToLower(parts[0]), parts[1]

	row, err := h.store.GetSettings(ctx, h.user)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if row == nil {
		row = &settings.Settings{}
	}

	if err := row.SetField(field, value); err != nil {
		return h.reply(ctx, chatID, fmt.Sprintf("Valor inválido: %v", err))
	}

	if err := h.store.SaveSettings(ctx, h.user, row); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	eff := settings.Apply(row)
	msg := fmt.Sprintf("✅ %s atualizado.\n\n%s", field, formatEffective(eff))
	if eff.MinPrice > eff.MaxPrice {
		msg += "\n\n⚠️ Preço mínimo acima do máximo: nenhuma oferta será aceita."
	}
	return h.reply(ctx, chatID, msg)
}

func (h *CommandHandler) displaySettings(ctx context.Context, chatID int64) error {
	eff := settings.Resolve(ctx, h.store, h.user)
	msg := "Configuração atual:\n\n" + formatEffective(eff) + "\n\n" +
		"Alterar com:\n" +
		"/settings <campo> <valor>\n" +
		"/settings <campo> reset\n\n" +
		"Campos: " + strings.Join(settings.Fields, ", ")
	return h.reply(ctx, chatID, msg)
}

func formatEffective(eff settings.Effective) string {
	return fmt.Sprintf("💰 Preço: R$ %.2f a R$ %.2f\n"+
		"📈 Comissão: %.1f%% a %.1f%%\n"+
		"📄 Itens por página: %d\n"+
		"🔁 Páginas por execução: %d",
		eff.MinPrice, eff.MaxPrice,
		eff.MinCommissionRate, eff.MaxCommissionRate,
		eff.ItemsPerPage, eff.MaxPagesPerRun)
}

func (h *CommandHandler) sendSettingsUsage(ctx context.Context, chatID int64) error {
	msg := "Uso:\n" +
		"/settings - Mostrar configuração\n" +
		"/settings <campo> <valor> - Alterar um campo\n" +
		"/settings <campo> reset - Voltar ao padrão\n\n" +
		"Campos: " + strings.Join(settings.Fields, ", ")
	return h.reply(ctx, chatID, msg)
}

// HandleStats handles the /stats command.
func (h *CommandHandler) HandleStats(ctx context.Context, chatID int64) error {
	stats, err := h.store.PostedStats(ctx)
	if err != nil {
		return fmt.Errorf("get posted stats: %w", err)
	}

	current := rotation.NewTracker(h.rotation).Current(ctx)

	var sb strings.Builder
	sb.WriteString("📊 Estatísticas\n\n")
	fmt.Fprintf(&sb, "Ofertas publicadas: %d\n", stats.Count)
	if stats.LastPostedAt != nil {
		fmt.Fprintf(&sb, "Última: %s em %s\n", stats.LastItemID,
			stats.LastPostedAt.In(h.location).Format("02/01/2006 15:04"))
	}
	fmt.Fprintf(&sb, "Próxima estratégia: %s", shopee.SortTypeName(current))
	if h.scheduler != nil {
		if next := h.scheduler.Next(); !next.IsZero() {
			fmt.Fprintf(&sb, "\nPróxima execução: %s", next.In(h.location).Format("02/01/2006 15:04"))
		}
	}

	return h.reply(ctx, chatID, sb.String())
}

// HandleSchedule handles the /schedule command.
func (h *CommandHandler) HandleSchedule(ctx context.Context, chatID int64, spec string) error {
	if h.scheduler == nil {
		return h.reply(ctx, chatID, "Agendamento desativado.")
	}

	if spec == "" {
		current := h.scheduler.Spec()
		if current == "" {
			current = "(nenhum)"
		}
		return h.reply(ctx, chatID, fmt.Sprintf("Agendamento: %s\n\nAlterar com:\n/schedule <cron> ou /schedule HH:MM", current))
	}

	if err := h.scheduler.Schedule(spec, h.job); err != nil {
		return h.reply(ctx, chatID, fmt.Sprintf("Agendamento inválido: %v", err))
	}

	if err := h.store.SetSetting(ctx, ScheduleKey, spec); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}

	return h.reply(ctx, chatID, fmt.Sprintf("✅ Agendamento atualizado para %s", h.scheduler.Spec()))
}

// Destination resolves where offers are published: the configured chat,
// otherwise the chat saved by /start.
type Destination struct {
	Configured string
	Store      interface {
		GetSetting(ctx context.Context, key string) (string, error)
	}
}

func (d Destination) ChatID(ctx context.Context) (string, error) {
	if c := strings.TrimSpace(d.Configured); c != "" {
		return c, nil
	}
	v, err := d.Store.GetSetting(ctx, ChatIDKey)
	if errors.Is(err, ErrSettingNotFound) || (err == nil && v == "") {
		return "", telegram.ErrNoChat
	}
	if err != nil {
		return "", fmt.Errorf("load chat_id: %w", err)
	}
	return v, nil
}
