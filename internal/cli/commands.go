package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/haggle/backend/internal/config"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
	"github.com/zhouzirui/haggle/backend/internal/service/ai"
)

// rootState carries configuration loaded before any subcommand runs.
type rootState struct {
	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	state := &rootState{}

	rootCmd := &cobra.Command{
		Use:   "haggle",
		Short: "Haggle - negotiate a price with an AI seller",
		Long: `Haggle runs a price negotiation against a seller that concedes by fixed rules
and answers questions through a language model. Enter a whole-dollar amount to make
an offer or any other text to talk with the seller.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("[cli] no .env file loaded: %v", err)
			}

			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			state.cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: negotiate in process
			return runLocalMode(cmd.Context(), cmd, state.cfg)
		},
	}

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newProductCmd(state))

	return rootCmd
}

// newChatCmd creates the remote chat command
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Negotiate against a running haggle API server",
		Long: `Open a session on a haggle API server and negotiate over REST.
Example: haggle chat --server http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			return runRemoteMode(cmd.Context(), cmd, NewClient(server, timeout))
		},
	}

	cmd.Flags().String("server", "http://localhost:8080", "API server base URL")
	cmd.Flags().Duration("timeout", 45*time.Second, "Per-request timeout")

	return cmd
}

// newProductCmd creates the product command
func newProductCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Show the product terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			if server == "" {
				fmt.Fprintln(cmd.OutOrStdout(), renderProduct(termsFromProduct(state.cfg.Product)))
				return nil
			}

			terms, err := NewClient(server, 10*time.Second).Product(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProduct(terms))
			return nil
		},
	}

	cmd.Flags().String("server", "", "Read the terms from an API server instead of local configuration")

	return cmd
}

// runLocalMode negotiates against an engine in this process.
func runLocalMode(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	var advisor negotiation.Advisor
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("[cli] AI service unavailable, questions get the fallback reply: %v", err)
		} else {
			advisor = aiService
		}
	}

	engine, err := negotiation.New(cfg.Product, advisor,
		negotiation.WithDelegateTimeout(cfg.Negotiation.DelegateTimeout),
		negotiation.WithHistoryLimit(cfg.Negotiation.HistoryLimit),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderProduct(termsFromProduct(cfg.Product)))
	return runConversation(ctx, out, newLocalNegotiator(engine), PromptForMessage)
}

// runRemoteMode negotiates over the REST API.
func runRemoteMode(ctx context.Context, cmd *cobra.Command, client *Client) error {
	terms, err := client.Product(ctx)
	if err != nil {
		return err
	}

	session, err := client.Open(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderProduct(terms))
	fmt.Fprintln(out, mutedStyle.Render("Session "+session.SessionID()))
	return runConversation(ctx, out, session, PromptForMessage)
}
