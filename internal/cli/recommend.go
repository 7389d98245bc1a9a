package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alphaboost/shoprec/internal/adapter"
	"github.com/alphaboost/shoprec/internal/config"
	"github.com/alphaboost/shoprec/internal/engine"
	"github.com/alphaboost/shoprec/internal/prompt"
)

func newRecommendCmd() *cobra.Command {
	var (
		limit       int
		one         bool
		pitch       bool
		model       string
		maxTokens   int
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "recommend <message…>",
		Short: "Recommend products for a customer message",
		Long: `Run the recommendation pipeline against the shop catalog and print the
ranked products with their scores.

Examples:
  shoprec recommend "looking for a breathable gym shirt"
  shoprec recommend "anniversary gift for my wife" --pitch
  shoprec recommend "no energy lately" --one`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			root, err := findRoot()
			if err != nil {
				return err
			}
			gcfg, err := config.Load(root)
			if err != nil {
				gcfg = config.DefaultGlobal()
			}
			scfg, _ := config.LoadShop(root)
			if one {
				gcfg.Engine.Mode = "single"
			}

			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			pipeline, _, _, err := buildPipeline(root, gcfg, store)
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = gcfg.Engine.DefaultLimit
			}

			ctx := cmd.Context()
			results, err := pipeline.Recommend(ctx, message, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No specific match — try describing what you're shopping for.")
				return nil
			}

			class := engine.TriggerClass(message)
			if _, logErr := store.LogRecommendation(ctx, message, class, results); logErr != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", logErr)
			}

			decorated := term.IsTerminal(int(os.Stdout.Fd())) && gcfg.Output.Color
			printResults(results, class, scfg.Shop.BaseURL, decorated)

			if pitch {
				return printPitch(cmd, gcfg, scfg, message, class, results, model, maxTokens, temperature)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of recommendations")
	cmd.Flags().BoolVar(&one, "one", false, "single-best-match mode (one result, rule fallback)")
	cmd.Flags().BoolVar(&pitch, "pitch", false, "generate an LLM sales pitch for the results")
	cmd.Flags().StringVarP(&model, "model", "m", "", "LLM provider override: claude, openai, ollama")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum pitch tokens")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "pitch sampling temperature")

	return cmd
}

func printResults(results []engine.Scored, class, baseURL string, decorated bool) {
	bold, reset := "", ""
	if decorated {
		bold, reset = "\033[1m", "\033[0m"
	}
	fmt.Printf("Trigger class: %s\n\n", class)
	for i, r := range results {
		p := r.Product
		fmt.Printf("%d. %s%s%s (score %d)\n", i+1, bold, p.Title, reset, r.Score)
		if p.Price > 0 {
			fmt.Printf("   $%.2f", p.Price)
			if p.Material != "" {
				fmt.Printf(" — %s", p.Material)
			}
			fmt.Println()
		}
		fmt.Printf("   %s\n", prompt.Link(baseURL, p))
	}
}

// printPitch turns the results into a short sales pitch via the
// configured LLM provider, streaming to stdout.
func printPitch(cmd *cobra.Command, gcfg config.GlobalConfig, scfg config.ShopConfig,
	message, class string, results []engine.Scored, model string, maxTokens int, temperature float64) error {

	providerName := gcfg.DefaultModel
	if model != "" {
		providerName = model
	}

	budgeter, err := prompt.NewBudgeter()
	if err != nil {
		return fmt.Errorf("init budgeter: %w", err)
	}
	built := prompt.NewBuilder(budgeter).Build(prompt.BuildOptions{
		Query:   message,
		Class:   class,
		Results: results,
		BaseURL: scfg.Shop.BaseURL,
		Budget:  gcfg.Pitch.PromptBudget,
	})

	llm, err := adapter.New(providerName, providerKey(gcfg, providerName),
		gcfg.Ollama.Host, gcfg.Ollama.CompletionModel)
	if err != nil {
		return fmt.Errorf("init LLM adapter: %w", err)
	}

	mt := maxTokens
	if mt <= 0 {
		mt = gcfg.Pitch.MaxTokens
	}
	temp := temperature
	if temp == 0 {
		temp = gcfg.Pitch.Temperature
	}

	stream, err := llm.Complete(cmd.Context(), adapter.CompletionRequest{
		SystemPrompt: built.SystemPrompt,
		Context:      built.ContextText,
		UserMessage:  built.UserMessage,
		MaxTokens:    mt,
		Temperature:  temp,
		Stream:       gcfg.Output.Stream,
	})
	if err != nil {
		return fmt.Errorf("LLM request: %w", err)
	}

	fmt.Println()
	for chunk := range stream {
		if chunk.Error != nil {
			return fmt.Errorf("stream error: %w", chunk.Error)
		}
		fmt.Print(chunk.Text)
	}
	fmt.Println()
	return nil
}

// providerKey returns the correct API key from the global config for the
// given provider.
func providerKey(cfg config.GlobalConfig, provider string) string {
	switch provider {
	case adapter.ProviderClaude:
		return cfg.Keys.Anthropic
	case adapter.ProviderOpenAI:
		return cfg.Keys.OpenAI
	default:
		return ""
	}
}
