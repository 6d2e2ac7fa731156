package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/catalog/internal/api"
	"github.com/h0rv/catalog/internal/config"
	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/kv"
	"github.com/h0rv/catalog/internal/store"
	"github.com/h0rv/catalog/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// CLI flags
	configFlag     string
	collectionFlag string
	logFileFlag    string
	filterFlag     string
	pageFlag       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Terminal browser for a game catalog service",
		Long: `catalog is a terminal user interface for a REST catalog of heroes,
items, forum posts and reviews.

Browse paginated collections with a filter, open entries in a detail view and
add or delete entries. Form drafts are autosaved between sessions.

Configuration is read from ~/.config/catalog/config.toml when present.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Write debug logs to this file")
	rootCmd.Flags().StringVarP(&collectionFlag, "collection", "c", "", "Collection to open first (e.g. heroes)")

	listCmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print one page of a collection and exit",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&filterFlag, "filter", domain.AllValue, "Filter value for the collection's filter attribute")
	listCmd.Flags().IntVar(&pageFlag, "page", 1, "Page to print")
	rootCmd.AddCommand(listCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes the standard logger to the log file, or discards it so
// that nothing is written over the TUI.
func setupLogging() (func(), error) {
	if logFileFlag == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(logFileFlag, "catalog")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() { _ = f.Close() }, nil
}

func run(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	// Saved filters and drafts live in a local database; the session still
	// works without it.
	state, err := kv.Open(cfg.StatePath)
	if err != nil {
		log.Printf("state storage unavailable, using memory: %v", err)
	}
	defer state.Close()

	deps := tui.Deps{
		Lister:        client,
		Mutator:       client,
		KV:            state,
		Clock:         store.RealClock{},
		RevealBase:    cfg.RevealBase,
		RevealStagger: cfg.RevealStagger,
		DraftDebounce: cfg.DraftDebounce,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := tui.NewAppModel(ctx, deps, cfg.Collections, collectionFlag)
	if err != nil {
		return err
	}

	// Run Bubble Tea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(tui.AppModel); ok {
		m.Close()
	} else {
		app.Close()
	}
	if err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	c, ok := cfg.Collection(args[0])
	if !ok {
		names := make([]string, len(cfg.Collections))
		for i, col := range cfg.Collections {
			names[i] = col.Name
		}
		return fmt.Errorf("unknown collection %q (have: %s)", args[0], strings.Join(names, ", "))
	}

	client, err := api.New(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	view, err := store.NewView(c, nil)
	if err != nil {
		return err
	}
	defer view.Close()

	load := view.Fetcher().Load(cmd.Context(), client)
	view.Commit(load())
	if err := view.State().Err; err != nil {
		return err
	}

	view.SetFilter(filterFlag)
	if pageFlag != 1 && !view.GoToPage(pageFlag) {
		return fmt.Errorf("page %d out of range (1-%d)", pageFlag, view.TotalPages())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d entries", c.Title, len(view.Filtered()))
	if c.FilterKey != "" {
		fmt.Fprintf(out, ", %s = %s", c.FilterKey, view.FilterValue())
	}
	fmt.Fprintf(out, ", page %d/%d\n\n", view.CurrentPage(), view.TotalPages())

	offset := (view.CurrentPage() - 1) * c.PageSize
	for i, e := range view.PageItems() {
		label := e.Attr("name")
		if label == "" {
			label = e.Attr("title")
		}
		line := fmt.Sprintf("%3d. %s", offset+i+1, label)
		if c.FilterKey != "" && e.Has(c.FilterKey) {
			line += "  [" + e.Attr(c.FilterKey) + "]"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
