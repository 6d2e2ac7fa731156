// Command probe checks that a catalog service is reachable and summarizes
// every configured collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/h0rv/catalog/internal/api"
	"github.com/h0rv/catalog/internal/config"
	"github.com/h0rv/catalog/internal/store"
)

func main() {
	configPath := flag.String("config", "", "config file")
	baseURL := flag.String("base-url", "", "override the service base URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	client, err := api.New(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Service: %s\n\n", client.BaseURL())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, c := range cfg.Collections {
		start := time.Now()
		items, err := client.List(ctx, c.Path)
		if err != nil {
			fmt.Printf("%s (/%s): ERROR %v\n", c.Name, c.Path, err)
			continue
		}
		fmt.Printf("%s (/%s): %d entries, %d pages, %s\n",
			c.Name, c.Path, len(items), store.TotalPages(len(items), c.PageSize), time.Since(start).Round(time.Millisecond))

		if c.FilterKey == "" {
			continue
		}
		for _, v := range store.Options(items, c.FilterKey, c.FilterValues)[1:] {
			fmt.Printf("  %s = %s: %d\n", c.FilterKey, v, len(store.Apply(items, c.FilterKey, v)))
		}
	}
}
