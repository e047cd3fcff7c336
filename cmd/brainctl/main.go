package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"subbrain/internal/auth"
	"subbrain/internal/bootstrap"
	"subbrain/internal/config"
	"subbrain/internal/domain/models/brain"
	"subbrain/internal/seed"
	brainService "subbrain/internal/service/brain"
	"subbrain/internal/storage"
)

var verbose bool

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "brainctl",
		Short:         "Administer a subbrain store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log store and service activity")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env bundles what every store-backed command needs
type env struct {
	cfg      *config.Config
	stores   *bootstrap.Stores
	services *bootstrap.Services
	logger   *slog.Logger
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()

	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clk := clock.New()
	stores, err := bootstrap.OpenStores(ctx, cfg, clk, logger)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		stores: stores,
		// The CLI is short-lived, so the collection cache is off
		services: bootstrap.NewServices(stores, storage.NewNoopBlobStore(logger), nil, 0, clk, logger),
		logger:   logger,
	}, nil
}

func migrateCmd() *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.stores.Close()

			if drop && e.cfg.Environment == "prod" {
				return errors.New("refusing to drop tables in prod")
			}

			if err := e.stores.Migrate(ctx, drop); err != nil {
				return err
			}
			fmt.Printf("Migrated %s store (prefix %q, dropped: %v)\n", e.stores.Driver, e.cfg.TablePrefix, drop)
			return nil
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "drop all tables before migrating")
	return cmd
}

func seedCmd() *cobra.Command {
	var userID, fixture string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a starter brain for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.stores.Close()

			f, err := seed.LoadFixture(fixture)
			if err != nil {
				return err
			}

			sum, err := seed.NewSeeder(e.services.Collections, e.services.Contents, e.logger).Seed(ctx, userID, f)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d collections and %d items for %s (%d collections already existed)\n",
				sum.Collections, sum.Content, userID, sum.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID to seed")
	cmd.Flags().StringVar(&fixture, "fixture", "starter", "embedded fixture name")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func treeCmd() *cobra.Command {
	var userID string
	var flat bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a user's collection hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.stores.Close()

			tree, err := e.services.Collections.GetTree(ctx, userID)
			if err != nil {
				return err
			}
			if len(tree) == 0 {
				fmt.Println("No collections")
				return nil
			}

			for _, n := range brainService.FlattenCollectionTree(tree) {
				fmt.Println(formatNode(n, flat))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().BoolVar(&flat, "flat", false, "one line per collection with its depth")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// formatNode renders one collection line; nested levels get an arrow prefix
func formatNode(n *brain.CollectionTreeNode, flat bool) string {
	label := fmt.Sprintf("%s %s (%d)", n.Icon, n.Name, n.ContentCount)
	if n.IsDefault {
		label += " [default]"
	}
	if flat {
		return fmt.Sprintf("%d\t%s\t%s", n.Depth, n.ID, label)
	}
	if n.Depth == 0 {
		return label
	}
	return strings.Repeat("  ", n.Depth-1) + "↳ " + label
}

func searchCmd() *cobra.Command {
	var userID, query, typ, sortBy, collection string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a user's content",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.stores.Close()

			opts := &brain.SearchOptions{
				UserID: userID,
				Query:  query,
				Type:   typ,
				SortBy: brain.SortBy(sortBy),
			}
			if collection != "" {
				opts.CollectionID = &collection
			}

			res, err := e.services.Search.Search(ctx, opts)
			if err != nil {
				return err
			}

			fmt.Printf("%d results (sorted by %s)\n", res.Count, res.SortBy)
			for _, r := range res.Results {
				fmt.Printf("%5d  %-4s  %s  %s\n", r.Score, r.Content.Type, r.Content.Title, r.Content.Link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text")
	cmd.Flags().StringVar(&typ, "type", "all", "all, link or file")
	cmd.Flags().StringVar(&sortBy, "sort", "relevance", "relevance, date or title")
	cmd.Flags().StringVar(&collection, "collection", "", "restrict to one collection ID")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func tokenCmd() *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an HS256 bearer token signed with JWT_SECRET (dev only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.Environment == "prod" {
				return errors.New("refusing to mint tokens in prod")
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := auth.SignHS256(cfg.JWTSecret, userID, jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (token subject)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
