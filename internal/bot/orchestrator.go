package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medusaxd/medusa-bot/internal/command"
	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/imagegen"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

// Generator produces images for a request. Satisfied by imagegen.Client.
type Generator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Result, error)
}

// Options configures the Orchestrator.
type Options struct {
	DefaultModel       string
	DefaultAspectRatio string
	MaxImages          int
	RateWindow         time.Duration
	RateMax            int
}

// Orchestrator drives the user-facing command flows: image generation and
// the informational commands. It composes the gate, the rate limiter, the
// generator and the stores, and owns the reply texts.
type Orchestrator struct {
	opts      Options
	gate      *Gate
	users     domain.UserStore
	limiter   domain.RateLimiter
	audit     domain.AuditStore
	generator Generator
	channel   *ChannelLogger
	logger    *infra.Logger
}

// NewOrchestrator creates a new Orchestrator. Zero Options fields fall back
// to the generation defaults.
func NewOrchestrator(opts Options, gate *Gate, users domain.UserStore, limiter domain.RateLimiter,
	audit domain.AuditStore, generator Generator, channel *ChannelLogger, logger *infra.Logger) *Orchestrator {
	if opts.DefaultModel == "" {
		opts.DefaultModel = imagegen.DefaultModel
	}
	if opts.DefaultAspectRatio == "" {
		opts.DefaultAspectRatio = imagegen.DefaultAspectRatio
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = imagegen.MaxImages
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = 5 * time.Minute
	}
	if opts.RateMax <= 0 {
		opts.RateMax = 10
	}
	return &Orchestrator{
		opts:      opts,
		gate:      gate,
		users:     users,
		limiter:   limiter,
		audit:     audit,
		generator: generator,
		channel:   channel,
		logger:    logger,
	}
}

// admit runs the gate and, on denial, sends the matching refusal. Returns
// true when the user may proceed.
func (o *Orchestrator) admit(ctx context.Context, m Messenger, in Incoming) bool {
	decision, ban := o.gate.Admit(ctx, in.UserID)
	switch decision {
	case Admitted:
		return true
	case DeniedDisabled:
		o.reply(ctx, m, "🔒 The bot is currently disabled. Please try again later.")
	case DeniedUnauthorized:
		o.reply(ctx, m, "⛔ You are not authorized to use this bot.\nContact an administrator to request access.")
	case DeniedBanned:
		text := "🚫 You are banned from using this bot."
		if ban != nil && ban.Reason != "" {
			text += "\nReason: " + escapeMarkdown(ban.Reason)
		}
		o.reply(ctx, m, text)
	}
	return false
}

// HandleGenerate runs the full generation flow for /generate, /flux,
// /turbo and /gptimage.
func (o *Orchestrator) HandleGenerate(ctx context.Context, m Messenger, in Incoming) {
	o.recordCommand(ctx, in)
	if !o.admit(ctx, m, in) {
		return
	}
	o.touch(ctx, in)

	inv, err := command.Parse(in.Text)
	if err != nil {
		o.reply(ctx, m, usageText)
		return
	}
	prompt := strings.TrimSpace(inv.Prompt)
	if len(prompt) < imagegen.MinPromptLen {
		o.reply(ctx, m, fmt.Sprintf("✏️ The prompt is too short. Please describe the image in at least %d characters.", imagegen.MinPromptLen))
		return
	}

	// Denied requests consume no quota: Record only runs once the request
	// is admitted past the window check.
	allowed, err := o.limiter.Check(ctx, in.UserID, o.opts.RateWindow, o.opts.RateMax)
	if err != nil {
		o.logger.Warn().Err(err).Int64("user_id", in.UserID).Msg("rate limit check failed, allowing request")
		allowed = true
	}
	if !allowed {
		o.reply(ctx, m, fmt.Sprintf("⏳ Rate limit reached: at most %d requests per %s. Please wait a bit.",
			o.opts.RateMax, o.opts.RateWindow))
		return
	}
	if err := o.limiter.Record(ctx, in.UserID); err != nil {
		o.logger.Warn().Err(err).Int64("user_id", in.UserID).Msg("rate limit record failed")
	}

	model := command.ModelForVerb(inv.Verb, inv.Quality, o.opts.DefaultModel)
	ratio := inv.AspectRatio
	if ratio == "" {
		ratio = o.opts.DefaultAspectRatio
	}
	count := inv.NumImages
	if count > o.opts.MaxImages {
		count = o.opts.MaxImages
	}

	placeholder, err := m.SendMessage(ctx, fmt.Sprintf("🎨 Generating %d image(s) with %s...", count, model))
	if err != nil {
		o.logger.Warn().Err(err).Msg("placeholder send failed")
	}

	result, genErr := o.generator.Generate(ctx, imagegen.Request{
		Prompt:      prompt,
		Model:       model,
		NumImages:   count,
		AspectRatio: ratio,
		Style:       inv.Style,
		Seed:        inv.Seed,
	})

	hasPlaceholder := err == nil

	if genErr != nil {
		if hasPlaceholder {
			o.dropPlaceholder(ctx, m, placeholder)
		}
		o.reply(ctx, m, failureText(genErr))
		o.auditGeneration(ctx, in, prompt, model, nil, genErr)
		o.channel.Generation(ctx, in.UserID, in.Username, prompt, model, 0, genErr)
		return
	}

	if hasPlaceholder {
		if eerr := m.EditMessage(ctx, placeholder, fmt.Sprintf("📤 Uploading %d image(s)...", len(result.Images))); eerr != nil {
			o.logger.Debug().Err(eerr).Msg("placeholder edit failed")
		}
	}
	delivered := o.deliver(ctx, m, result, prompt, model, ratio)
	if hasPlaceholder {
		o.dropPlaceholder(ctx, m, placeholder)
	}
	if delivered > 0 {
		if err := o.users.IncrementGenerations(ctx, in.UserID); err != nil {
			o.logger.Warn().Err(err).Int64("user_id", in.UserID).Msg("generation counter update failed")
		}
	}
	urls := make([]string, 0, len(result.Images))
	for _, img := range result.Images {
		urls = append(urls, img.URL)
	}
	o.auditGeneration(ctx, in, prompt, model, urls, nil)
	o.channel.Generation(ctx, in.UserID, in.Username, prompt, model, delivered, nil)
}

// deliver sends each generated image as a photo. A failed delivery of one
// image does not stop the rest.
func (o *Orchestrator) deliver(ctx context.Context, m Messenger, result *imagegen.Result, prompt, model, ratio string) int {
	delivered := 0
	for i, img := range result.Images {
		caption := fmt.Sprintf("🖼 %d/%d | %s | %s\n%s",
			i+1, len(result.Images), model, ratio, escapeMarkdown(truncate(prompt, 180)))
		if err := m.SendPhoto(ctx, img.URL, caption); err != nil {
			o.logger.Warn().Err(err).Int("image", i+1).Msg("photo delivery failed")
			o.reply(ctx, m, fmt.Sprintf("⚠️ Image %d/%d could not be delivered.", i+1, len(result.Images)))
			continue
		}
		delivered++
	}
	return delivered
}

// HandleStart answers /start.
func (o *Orchestrator) HandleStart(ctx context.Context, m Messenger, in Incoming) {
	o.recordCommand(ctx, in)
	if !o.admit(ctx, m, in) {
		return
	}
	o.touch(ctx, in)
	name := in.Username
	if name == "" {
		name = "there"
	}
	o.reply(ctx, m, fmt.Sprintf("👋 Hi %s! I turn text prompts into images.\n\nSend /generate followed by a description, or /help for the full command list.",
		escapeMarkdown(name)))
}

// HandleHelp answers /help.
func (o *Orchestrator) HandleHelp(ctx context.Context, m Messenger, in Incoming) {
	o.recordCommand(ctx, in)
	if !o.admit(ctx, m, in) {
		return
	}
	o.touch(ctx, in)
	o.reply(ctx, m, helpText)
}

// HandleModels answers /models with the model and ratio tables.
func (o *Orchestrator) HandleModels(ctx context.Context, m Messenger, in Incoming) {
	o.recordCommand(ctx, in)
	if !o.admit(ctx, m, in) {
		return
	}
	o.touch(ctx, in)
	var sb strings.Builder
	sb.WriteString("*Models*\n")
	for _, model := range imagegen.Models() {
		fmt.Fprintf(&sb, "• `%s`\n", model)
	}
	sb.WriteString("\n*Aspect ratios*\n")
	for _, ratio := range imagegen.AspectRatios() {
		fmt.Fprintf(&sb, "• `%s`\n", ratio)
	}
	sb.WriteString("\nPick a model by verb (/flux, /turbo, /gptimage) and a ratio with -r, e.g. `-r16:9` or `-rportrait`.")
	o.reply(ctx, m, sb.String())
}

// HandleProfile answers /profile with the caller's account summary.
func (o *Orchestrator) HandleProfile(ctx context.Context, m Messenger, in Incoming) {
	o.recordCommand(ctx, in)
	if !o.admit(ctx, m, in) {
		return
	}
	o.touch(ctx, in)

	user, err := o.users.Get(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			o.reply(ctx, m, "No profile found for your account.")
			return
		}
		o.logger.Error().Err(err).Int64("user_id", in.UserID).Msg("profile lookup failed")
		o.reply(ctx, m, "Profile is unavailable right now. Please try again later.")
		return
	}

	var sb strings.Builder
	sb.WriteString("*Your profile*\n\n")
	fmt.Fprintf(&sb, "ID: `%d`\n", user.ID)
	if user.Username != "" {
		fmt.Fprintf(&sb, "Username: @%s\n", escapeMarkdown(user.Username))
	}
	fmt.Fprintf(&sb, "Authorized: %s\n", user.AuthorizedAt.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Images generated: %d\n", user.TotalGenerations)
	fmt.Fprintf(&sb, "Rate limit: %d requests per %s", o.opts.RateMax, o.opts.RateWindow)
	o.reply(ctx, m, sb.String())
}

func (o *Orchestrator) dropPlaceholder(ctx context.Context, m Messenger, handle MessageHandle) {
	if err := m.DeleteMessage(ctx, handle); err != nil {
		o.logger.Debug().Err(err).Msg("placeholder delete failed")
	}
}

func (o *Orchestrator) reply(ctx context.Context, m Messenger, text string) {
	if _, err := m.SendMessage(ctx, text); err != nil {
		o.logger.Warn().Err(err).Msg("reply send failed")
	}
}

func (o *Orchestrator) touch(ctx context.Context, in Incoming) {
	if err := o.users.Touch(ctx, in.UserID, in.Username); err != nil {
		o.logger.Debug().Err(err).Int64("user_id", in.UserID).Msg("activity touch failed")
	}
}

// recordCommand writes the raw command to the audit log and mirrors it to
// the log channel. Both are best effort.
func (o *Orchestrator) recordCommand(ctx context.Context, in Incoming) {
	verb := in.Text
	if fields := strings.Fields(in.Text); len(fields) > 0 {
		verb = fields[0]
	}
	if err := o.audit.Append(ctx, domain.AuditEntry{
		UserID:     in.UserID,
		Username:   in.Username,
		ActionType: domain.ActionCommand,
		Action:     verb,
		Prompt:     truncate(in.Text, 500),
		Success:    true,
	}); err != nil {
		o.logger.Warn().Err(err).Msg("command audit failed")
	}
	o.channel.UserAction(ctx, in.UserID, in.Username, verb)
}

func (o *Orchestrator) auditGeneration(ctx context.Context, in Incoming, prompt, model string, urls []string, genErr error) {
	entry := domain.AuditEntry{
		UserID:     in.UserID,
		Username:   in.Username,
		ActionType: domain.ActionGeneration,
		Action:     "generate",
		Prompt:     truncate(prompt, 500),
		Model:      model,
		Images:     urls,
		Success:    genErr == nil,
	}
	if genErr != nil {
		entry.Error = genErr.Error()
	}
	if err := o.audit.Append(ctx, entry); err != nil {
		o.logger.Warn().Err(err).Msg("generation audit failed")
	}
}

// failureText maps a generation error to the user-facing explanation.
func failureText(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrValidation):
		return "❌ Your request was rejected: " + escapeMarkdown(err.Error())
	case errors.Is(err, imagegen.ErrUpstreamRejected):
		return "❌ The image service rejected this request. Try rephrasing the prompt."
	case errors.Is(err, imagegen.ErrMalformedResponse):
		return "⚠️ The image service returned an unusable response. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "⌛ Generation took too long and was cancelled. Please try again."
	default:
		return "⚠️ The image service is unavailable right now. Please try again in a few minutes."
	}
}

const usageText = `Usage: /generate [flags] <prompt>

Flags come before the prompt:
  -r<ratio>   aspect ratio: 16:9, 9:16, 1:1, 21:9, 2.35:1, 4:3 or a preset name
  -s<style>   style, e.g. realistic, anime, cinematic
  -n<count>   number of images (1-4)
  -seed<n>    fixed seed for reproducible output
  -q<quality> high or fast

Example: /generate -r16:9 -n2 a lighthouse at dawn`

const helpText = `*Commands*

/generate <prompt> - generate images (default model)
/flux <prompt> - generate with flux
/turbo <prompt> - generate with turbo
/gptimage <prompt> - generate with gptimage
/models - list models and aspect ratios
/profile - your account summary
/help - this message

*Flags* (before the prompt)
` + "`-r16:9` `-sanime` `-n2` `-seed42` `-qhigh`" + `

Example: ` + "`/flux -rportrait -n2 a fox in the snow`"
