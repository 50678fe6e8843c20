// scrape-events tails the job event stream: connects to NATS and prints
// every scrape lifecycle event as it is published. Useful for watching a
// long run without polling the jobs API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscout/eventbus"
)

func main() {
	url := getenv("NATS_URL", "nats://127.0.0.1:4222")
	subject := getenv("NATS_SUBJECT", "")

	bus, err := eventbus.New(eventbus.Config{URL: url, Subject: subject})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect NATS: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = bus.Subscribe(ctx, func(evt eventbus.JobEvent) {
		b, _ := json.MarshalIndent(evt, "", "  ")
		fmt.Printf("[%s] %s job=%s\n%s\n", time.Now().Format(time.RFC3339), evt.Type, evt.JobID, string(b))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "subscribe error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("listening for scrape job events")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	fmt.Println("shutting down")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
