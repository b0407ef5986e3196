package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/avamind/ava-core/adapter"
	calendarx "github.com/avamind/ava-core/agent/calendar"
	chatx "github.com/avamind/ava-core/agent/chat"
	contractx "github.com/avamind/ava-core/agent/contract"
	"github.com/avamind/ava-core/agent/llm"
	modeswitchx "github.com/avamind/ava-core/agent/modeswitch"
	searchx "github.com/avamind/ava-core/agent/search"
	sessionx "github.com/avamind/ava-core/agent/session"
	skillx "github.com/avamind/ava-core/agent/skill"
	storagex "github.com/avamind/ava-core/agent/storage"
	configx "github.com/avamind/ava-core/pkg/config"
	_ "github.com/avamind/ava-core/pkg/logger/autoload"
	openaix "github.com/avamind/ava-core/pkg/openai"
	tavilyx "github.com/avamind/ava-core/pkg/tavily"
	whatsappx "github.com/avamind/ava-core/pkg/whatsapp"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CreateSchema    bool          `envconfig:"CREATE_SCHEMA" default:"false"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("APP")

	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	openaiClient := openaix.NewClient(*openaiCfg)
	if openaiClient == nil {
		log.Fatal().Msg("openai client initialization failed")
	}

	tavilyCfg := configx.MustNew[tavilyx.Config]("TAVILY")
	tavilyClient, err := tavilyx.NewClient(*tavilyCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("tavily client initialization failed")
	}

	whatsappCfg := configx.MustNew[whatsappx.Config]("WHATSAPP")
	whatsappClient := whatsappx.MustNew(*whatsappCfg)

	calendarCfg := configx.MustNew[calendarx.Config]("CALENDAR")
	calendarClient := calendarx.NewClient(*calendarCfg)

	dbCfg := configx.MustNew[storagex.Config]("DB")
	db := storagex.Open(*dbCfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("database close failed")
		}
	}()
	store := storagex.NewStore(db)
	if appCfg.CreateSchema {
		if err := store.CreateSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("schema creation failed")
		}
	}

	// Orchestration core.
	sessions := sessionx.NewStore()
	calendarSkill := skillx.NewCalendarSkill(calendarClient)
	researchSkill := skillx.NewResearchSkill(searchx.NewTavilyBackend(tavilyClient))

	registry := skillx.NewRegistry()
	registry.Register(contractx.SkillCalendarAdd, calendarSkill)
	registry.Register(contractx.SkillCalendarView, calendarSkill)
	registry.Register(contractx.SkillResearch, researchSkill)
	log.Info().Strs("skills", registry.Names()).Msg("skill registry ready")

	service := chatx.NewService(chatx.Deps{
		Store:      sessions,
		Profiles:   store,
		Detector:   modeswitchx.NewDetector(modeswitchx.DefaultConfig()),
		Classifier: skillx.NewClassifier(openaiClient, openaiCfg.IntentModelName()),
		Registry:   registry,
		Calendar:   calendarSkill,
		LLM:        llm.NewOpenAIProvider(openaiClient, openaiCfg.Model),
		Audit:      store,
		Archive:    store,
	})

	// Channel surfaces.
	router := adapter.NewRouter(service, store)
	web := adapter.NewWebAdapter(router, store, sessions)
	whatsapp := adapter.NewWhatsAppAdapter(router, whatsappClient, store)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	web.Mount(r)
	whatsapp.Mount(r)

	server := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
