package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	knowledgex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/knowledge"
	llmx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/llm"
	promptx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/prompt"
	storex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/store"
	toolx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/tool"
	configx "github.com/tanpawarit/Chative-Slot-Filling-Agent/pkg/config"
	_ "github.com/tanpawarit/Chative-Slot-Filling-Agent/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/Chative-Slot-Filling-Agent/pkg/qstash"
)

type AppConfig struct {
	Variant       string `split_words:"true" default:"order"`
	OrdersDir     string `split_words:"true" default:"orders"`
	LeadsPath     string `split_words:"true" default:"leads_db.json"`
	KnowledgePath string `split_words:"true" default:"knowledge_base.json"`
	MaxSteps      int    `split_words:"true" default:"8"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	variant := contractx.Variant(strings.ToLower(strings.TrimSpace(appCfg.Variant)))
	if !variant.Valid() {
		log.Fatal().Str("variant", appCfg.Variant).Msg("APP_VARIANT must be order or lead")
	}

	writer := mustWriter(ctx, appCfg, variant)

	var kb *knowledgex.Base
	if variant == contractx.VariantLead {
		kb = knowledgex.NewBase(appCfg.KnowledgePath)
		entries, err := kb.Entries()
		if err != nil {
			log.Warn().Err(err).Str("path", kb.Path()).Msg("knowledge base unavailable, faq lookups will be empty")
		} else {
			log.Info().Int("entries", len(entries)).Str("path", kb.Path()).Msg("knowledge base loaded")
		}
	}

	catalog, err := toolx.New(variant, writer, kb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool catalog")
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid model config")
	}
	orCfg := llmCfg.OpenRouterFor(variant)
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat model")
	}

	systemPrompt, err := promptx.LoadPromptSet().For(variant)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prompt")
	}

	orch, err := orchestratorx.New(ctx, chatModel, catalog, systemPrompt, orchestratorx.Config{
		MaxSteps:      appCfg.MaxSteps,
		EndOnFinalize: variant == contractx.VariantLead,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	log.Info().Str("variant", string(variant)).Str("model", orCfg.Model).Strs("tools", catalog.Names()).Msg("agent ready")
	converse(ctx, orch.NewRunner())
}

func mustWriter(ctx context.Context, appCfg *AppConfig, variant contractx.Variant) storex.Writer {
	storeCfg := configx.MustNew[storex.Config]("STORE")
	writer, err := storex.Open(ctx, *storeCfg, variant, storex.Paths{
		OrdersDir: appCfg.OrdersDir,
		LeadsPath: appCfg.LeadsPath,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", storeCfg.Backend).Msg("failed to open store")
	}

	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	if qstashCfg.Enabled() {
		writer = storex.NewNotifyingWriter(writer, qstashx.MustNew(*qstashCfg), qstashCfg.Destination)
		log.Info().Str("destination", qstashCfg.Destination).Msg("finalized records will be published")
	}
	return writer
}

// converse reads one utterance per line from stdin until the conversation ends.
func converse(ctx context.Context, runner *orchestratorx.Runner) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply, ended, err := runner.HandleTurn(ctx, text)
		if err != nil {
			log.Error().Err(err).Str("session_id", runner.Session().ID).Msg("turn failed")
			fmt.Println("Sorry, something went wrong. Could you say that again?")
			continue
		}
		fmt.Println(reply)
		if ended {
			break
		}
	}

	sess := runner.Session()
	if !sess.Finalized() {
		log.Info().Str("session_id", sess.ID).Str("progress", sess.Record.Summary()).Msg("session closed without finalizing")
	}
}
