package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"graphrlm.dev/core/common/id"
	"graphrlm.dev/core/common/llm"
	"graphrlm.dev/core/common/logger"
	"graphrlm.dev/core/common/otel"
	"graphrlm.dev/core/core/config"
	"graphrlm.dev/core/core/db"
	"graphrlm.dev/core/core/run"
	"graphrlm.dev/core/internal/bank"
	"graphrlm.dev/core/internal/graph"
	"graphrlm.dev/core/internal/graph/memstore"
	"graphrlm.dev/core/internal/store"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.Load()

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "otel: disabled (%v)\n", err)
	} else if telemetry != nil {
		defer telemetry.Shutdown(ctx)
	}
	logger.Setup(cfg)

	if err := id.Init(1); err != nil {
		fmt.Fprintf(os.Stderr, "id: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	stores := store.New(database.Queries())

	if cfg.LLM.APIKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required")
		os.Exit(1)
	}
	root, err := llm.NewAgentClient(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.RootModel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "root llm client: %v\n", err)
		os.Exit(1)
	}
	sub, err := llm.NewAgentClient(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.SubModel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sub llm client: %v\n", err)
		os.Exit(1)
	}
	judge, err := llm.New(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.SubModel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "judge llm client: %v\n", err)
		os.Exit(1)
	}

	var index bank.Index
	tsIndex, err := bank.NewTypesenseIndex(ctx, cfg.Typesense.Protocol+"://"+cfg.Typesense.Host+":"+cfg.Typesense.Port, cfg.Typesense.APIKey, "memory_items")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Typesense: disabled, falling back to in-process BM25 (%v)\n", err)
	} else {
		index = tsIndex
	}

	var remote graph.RemoteClient
	remoteEndpoint := os.Getenv("GRAPHRLM_REMOTE_SPARQL_ENDPOINT")
	if remoteEndpoint != "" {
		remote = graph.NewHTTPRemoteClient()
	}

	library := graph.Library(memstore.New())

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Redis: disabled, retrieval runs uncached (%v)\n", err)
	} else if index != nil {
		index = bank.NewCachedIndex(rdb, 0, index)
	}

	ontologyReference := os.Getenv("GRAPHRLM_ONTOLOGY_PATH")
	if ontologyReference == "" {
		fmt.Fprintln(os.Stderr, "GRAPHRLM_ONTOLOGY_PATH is required")
		os.Exit(1)
	}

	deps := run.Deps{
		Library: library,
		Remote:  remote,
		Root:    root,
		Sub:     sub,
		Judge:   judge,
		Stores:  stores,
		Index:   index,
	}
	opts := run.DefaultOptions()
	opts.RetrieveK = cfg.RLM.RetrieveK
	opts.ExtractMemories = cfg.RLM.ExtractMemories
	opts.MaxIterations = cfg.RLM.MaxIterations
	opts.MaxLLMCalls = cfg.RLM.MaxLLMCalls
	opts.OutputTruncationLimit = cfg.RLM.OutputTruncationLimit
	opts.EnableVerification = cfg.RLM.EnableVerification

	fmt.Fprintf(os.Stderr, "graphrlm ready (ontology=%s)\n", ontologyReference)
	fmt.Fprintln(os.Stderr, "Enter your query (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" || query == "q" {
			break
		}

		result, err := run.Run(ctx, deps, query, ontologyReference, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}
