package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"user-search/internal/client"
	"user-search/internal/config"
	"user-search/internal/form"
	applog "user-search/internal/logger"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := client.NewConsoleView(os.Stdout)
	dispatcher := client.NewDispatcher(client.NewHTTPTransport(cfg.ServerURL, nil), view, logger)

	fmt.Printf("Search users on %s\n", cfg.ServerURL)
	fmt.Println("Enter: email [number], e.g. a@x.com 12-34-56. A new line cancels the previous search.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("failed to read input", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			dispatcher.Cancel()
			return

		case line, ok := <-lines:
			if !ok {
				waitCurrent(ctx, dispatcher)
				return
			}

			f := form.ParseLine(line)
			if err := f.Validate(); err != nil {
				view.ShowValidation(err)
				continue
			}
			dispatcher.Submit(f.Query())
		}
	}
}

// waitCurrent - по концу ввода дожидается последнего поиска
func waitCurrent(ctx context.Context, d *client.Dispatcher) {
	tok := d.Current()
	if tok == nil {
		return
	}
	select {
	case <-tok.Done():
	case <-ctx.Done():
		d.Cancel()
	}
}
