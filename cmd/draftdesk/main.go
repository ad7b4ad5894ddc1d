package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"draftdesk/internal/activities"
	"draftdesk/internal/api"
	"draftdesk/internal/chat"
	"draftdesk/internal/config"
	"draftdesk/internal/providers"
	"draftdesk/internal/store"
	"draftdesk/internal/workflows"
)

// The worker and the HTTP API share one process because the knowledge and
// draft stores live in memory.
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	pm, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatal(err)
	}
	knowledge := store.NewKnowledge()
	drafts := store.NewDrafts()
	chatMgr := chat.NewManager(pm, knowledge)

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(cfg, knowledge, drafts, chatMgr, pm))
	if err := w.Start(); err != nil {
		log.Fatal(err)
	}
	defer w.Stop()

	s := api.NewServer(cfg, knowledge, drafts, chatMgr, pm, c)
	log.Printf("draftdesk listening on %s temporal=%s queue=%s llm_providers=%q", cfg.APIAddr, cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.LLMProviders)
	if err := http.ListenAndServe(cfg.APIAddr, s.Routes()); err != nil {
		log.Fatal(err)
	}
}
