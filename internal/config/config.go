package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIAddr               string
	TemporalAddress       string
	TemporalTaskQueue     string
	DataInRoot            string
	LLMProviders          string
	SimilarityMinRunes    int
	SimilaritySourceRunes int
	MetadataMaxRunes      int
}

func Load() Config {
	return Config{
		APIAddr:           getenv("DRAFTDESK_API_ADDR", ":8080"),
		TemporalAddress:   getenv("DRAFTDESK_TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTaskQueue: getenv("DRAFTDESK_TEMPORAL_TASK_QUEUE", "draftdesk"),
		DataInRoot:        getenv("DRAFTDESK_DATA_IN", "./data/in"),
		LLMProviders:      getenv("DRAFTDESK_LLM_PROVIDERS", "mock"),
		// Per-source bound for similarity prompts. Zero sends full texts;
		// the default keeps a handful of long PDFs inside a model context.
		SimilaritySourceRunes: getenvInt("DRAFTDESK_SIMILARITY_SOURCE_RUNES", 24000),
		SimilarityMinRunes:    getenvInt("DRAFTDESK_SIMILARITY_MIN_RUNES", 100),
		MetadataMaxRunes:      getenvInt("DRAFTDESK_METADATA_MAX_RUNES", 16000),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
