// Command-line interface: crawl a site, then ask questions about it.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"websage/config"
	"websage/controllers"
	"websage/services/llm"
	"websage/services/rag"
	"websage/sources/history"
	"websage/sources/vectorstore"
	"websage/utils/logging"
	"websage/utils/types"
)

func main() {
	godotenv.Load()
	logging.InitLogger()
	cfg := config.LoadConfig()

	args := os.Args[1:]
	if len(args) < 2 || args[0] != "crawl" {
		fmt.Println("websage CLI usage:")
		fmt.Println("  websage crawl <url> [max_pages]   # Crawl a site, then ask questions about it")
		os.Exit(1)
	}

	rawURL := args[1]
	maxPages := 0
	if len(args) >= 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "max_pages must be a positive number")
			os.Exit(1)
		}
		maxPages = n
	}

	embed, completer, err := buildClients(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup failed:", err)
		os.Exit(1)
	}

	store, err := vectorstore.NewClient(cfg.DataDir, embed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vector store setup failed:", err)
		os.Exit(1)
	}
	dao, err := history.Open(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "history database setup failed:", err)
		os.Exit(1)
	}
	defer dao.Close()

	index := rag.NewIndex(store)
	engine := rag.NewEngine(index, rag.NewSynthesizer(completer, cfg.ChatModel))
	crawlCtrl := controllers.NewCrawlController(cfg, index, nil)
	queryCtrl := controllers.NewQueryController(engine, dao, cfg.SearchThreshold)

	ctx := context.Background()

	events := make(chan types.ProgressEvent, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			fmt.Printf("\r[%3.0f%%] %-60s", ev.Percent, ev.Detail)
		}
	}()

	fmt.Println("Crawling", rawURL, "...")
	resp, err := crawlCtrl.Crawl(ctx, types.CrawlRequest{URL: rawURL, MaxPages: maxPages}, events)
	close(events)
	<-done
	fmt.Println()

	if err != nil {
		logging.ErrorLogger.Error("crawl failed", zap.String("url", rawURL), zap.Error(err))
		fmt.Fprintln(os.Stderr, "crawl failed:", err)
		os.Exit(1)
	}

	fmt.Printf("\nIndexed %d pages (%d documents) into collection %s\n\n", resp.Pages, resp.Documents, resp.Collection)
	fmt.Println("Ask questions about the site. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("websage> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		result := queryCtrl.Query(ctx, types.QueryRequest{
			Collection: resp.Collection,
			Question:   line,
		})
		fmt.Println()
		fmt.Println(result.Answer)
		if len(result.Sources) > 0 {
			fmt.Println("\nSources:")
			for i, src := range result.Sources {
				fmt.Printf("  %d. %s (similarity %.2f)\n", i+1, src.URL, src.Similarity)
			}
		}
		fmt.Println()
	}
}

func buildClients(cfg config.Config) (vectorstore.EmbeddingFunc, llm.Completer, error) {
	completer, err := llm.NewGPTClient(cfg.OpenAIAPIKey)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.EmbeddingProvider {
	case "ollama":
		return llm.NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbeddingModel).Embed, completer, nil
	case "openai", "":
		embedder, err := llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return embedder.Embed, completer, nil
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
