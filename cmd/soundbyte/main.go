package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/soundbyte/internal/api"
	"github.com/pbaille/soundbyte/internal/collections"
	"github.com/pbaille/soundbyte/internal/config"
	"github.com/pbaille/soundbyte/internal/dashboard"
	"github.com/pbaille/soundbyte/internal/feed"
	"github.com/pbaille/soundbyte/internal/fetcher"
	"github.com/pbaille/soundbyte/internal/filter"
	"github.com/pbaille/soundbyte/internal/logging"
	"github.com/pbaille/soundbyte/internal/search"
	"github.com/pbaille/soundbyte/internal/share"
	"github.com/pbaille/soundbyte/internal/sorting"
	"github.com/pbaille/soundbyte/internal/store"
	"github.com/pbaille/soundbyte/internal/trends"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "soundbyte",
		Short:         "Tech intelligence feed: search, filter, trends and collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .soundbyte.yaml in . or $HOME)")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(timelineCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(collectionsCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// app bundles what the commands share
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	loader *feed.Loader
	dash   *dashboard.Dashboard
	kv     store.KV
	cols   *collections.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)

	client := fetcher.New(cfg.API.URL, cfg.API.Timeout)
	client.PageSize = cfg.API.PageSize
	client.HealthTimeout = cfg.API.HealthTimeout

	kv, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		loader: feed.NewLoader(client, cfg.Snapshot, log),
		dash: dashboard.New(nil, trends.Options{
			Days:       cfg.Trends.Days,
			Hot:        cfg.Trends.Hot,
			RecentDays: cfg.Trends.RecentDays,
			TopTags:    cfg.Trends.TopTags,
		}),
		kv:   kv,
		cols: collections.Open(kv, cfg.Storage.Key, log),
	}, nil
}

func (a *app) Close() error {
	return store.Close(a.kv)
}

// load fetches the entries into the dashboard, warning when the feed is offline
func (a *app) load(ctx context.Context) feed.Result {
	res := a.loader.Load(ctx)
	a.dash.SetEntries(res.Entries)
	if res.Unavailable() {
		fmt.Fprintln(os.Stderr, color.YellowString("data unavailable: showing no entries"))
	}
	return res
}

type viewFlags struct {
	query    string
	category string
	priority string
	window   string
	sort     string
	limit    int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "fuzzy search over title, summary and tags")
	cmd.Flags().StringVar(&f.category, "category", filter.All, "category filter")
	cmd.Flags().StringVar(&f.priority, "priority", filter.All, "priority tier filter")
	cmd.Flags().StringVar(&f.window, "time", string(filter.WindowAll), "time window: all, today, week, month")
	cmd.Flags().StringVar(&f.sort, "sort", string(sorting.ModeDate), "sort by date, priority or relevance")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "number of entries to show (0 for all)")
}

func (f *viewFlags) state() (dashboard.State, error) {
	criteria, err := filter.ParseCriteria(f.category, f.priority, f.window)
	if err != nil {
		return dashboard.State{}, err
	}
	mode, err := sorting.ParseMode(f.sort)
	if err != nil {
		return dashboard.State{}, err
	}
	return dashboard.State{Query: f.query, Criteria: criteria, Sort: mode}, nil
}

func listCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries matching a search and filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := flags.state()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context())
			view := a.dash.View(state)
			if view.Count == 0 {
				fmt.Println("No matching entries.")
				return nil
			}
			printMatches(view.Entries, flags.limit, search.Active(state.Query))
			printFooter(view)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func timelineCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show entries grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := flags.state()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context())
			view := a.dash.View(state)
			printTimeline(dashboard.Timeline(view))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func trendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show tag, category and daily trends over the whole feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context())
			printTrends(a.dash.Trends())
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tags [input]",
		Short: "List tags by frequency, or complete a partial tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context())
			if len(args) == 1 {
				for _, t := range a.dash.Suggest(args[0], limit) {
					fmt.Println(t)
				}
				return nil
			}
			printTags(a.dash.Tags(), limit)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of tags to show")
	return cmd
}

func shareCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "share [id]",
		Short: "Print ready-to-post text for an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context())
			entry, ok := a.dash.Entry(args[0])
			if !ok {
				return fmt.Errorf("entry not found: %s", args[0])
			}
			if long {
				fmt.Println(share.Long(entry, a.cfg.SiteURL))
			} else {
				fmt.Println(share.Post(entry, a.cfg.SiteURL))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "include the summary instead of its first sentence")
	return cmd
}

func collectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"col"},
		Short:   "Manage local collections of entries",
	}

	// withStore runs fn against the collection store; no entries are fetched
	withStore := func(fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(a, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		RunE: withStore(func(a *app, args []string) error {
			printCollections(a.cols.List())
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: withStore(func(a *app, args []string) error {
			id, err := a.cols.Create(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Println("(blank name, nothing created)")
				return nil
			}
			fmt.Printf("Created collection: %s\n", id)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a collection",
		Args:  cobra.MinimumNArgs(2),
		RunE: withStore(func(a *app, args []string) error {
			return a.cols.Rename(args[0], strings.Join(args[1:], " "))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(a *app, args []string) error {
			return a.cols.Delete(args[0])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [id] [entry-id...]",
		Short: "Add entries to a collection",
		Args:  cobra.MinimumNArgs(2),
		RunE: withStore(func(a *app, args []string) error {
			for _, entryID := range args[1:] {
				if err := a.cols.AddEntry(args[0], entryID); err != nil {
					return err
				}
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [id] [entry-id...]",
		Short: "Remove entries from a collection",
		Args:  cobra.MinimumNArgs(2),
		RunE: withStore(func(a *app, args []string) error {
			for _, entryID := range args[1:] {
				if err := a.cols.RemoveEntry(args[0], entryID); err != nil {
					return err
				}
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show the entries of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok := a.cols.Get(args[0])
			if !ok {
				return fmt.Errorf("collection not found: %s", args[0])
			}
			a.load(cmd.Context())
			printCollection(c, a.cols.Entries(c.ID, a.dash.Entries()))
			return nil
		},
	})

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API for the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			server := api.New(a.loader, a.dash, a.cols, api.Options{Addr: addr, SiteURL: a.cfg.SiteURL}, a.log)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}
