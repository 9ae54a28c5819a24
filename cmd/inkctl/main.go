// Command inkctl is the operator tool for capture devices: it submits
// stroke recordings, inspects the offline queue, and re-sends parked
// submissions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"inkrelay-backend/internal/kvstore"
	"inkrelay-backend/internal/stroke"
	"inkrelay-backend/internal/submit"
	"inkrelay-backend/pkg/api"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var exitErr error
	switch os.Args[1] {
	case "submit":
		exitErr = runSubmit(os.Args[2:], logger)
	case "queue":
		exitErr = runQueue(os.Args[2:], logger)
	case "reset-id":
		exitErr = runResetID(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if exitErr != nil {
		fmt.Fprintf(os.Stderr, "inkctl: %v\n", exitErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: inkctl <command> [flags]

commands:
  submit    submit a recorded stroke document
  queue     inspect or drain the offline queue (list|resend|clear)
  reset-id  generate a fresh client identity`)
}

func openStore(path string) (*kvstore.SQLiteStore, error) {
	if path == "" {
		path = "inkctl.db"
	}
	return kvstore.OpenSQLite(path)
}

func runSubmit(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	file := fs.String("file", "", "path to a recorded stroke document (JSON)")
	endpoint := fs.String("endpoint", "http://localhost:8080/v1/handwriting", "ingestion endpoint URL")
	token := fs.String("token", os.Getenv("SERVICE_TOKEN"), "bearer token")
	session := fs.String("session", "default", "session id")
	storePath := fs.String("store", "", "local state database (default inkctl.db)")
	color := fs.String("color", "", "stroke color override")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("submit: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	var doc stroke.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("submit: invalid document: %w", err)
	}

	store, err := openStore(*storePath)
	if err != nil {
		return fmt.Errorf("submit: open store: %w", err)
	}
	defer store.Close()

	identity, err := submit.LoadClientContext(store, *session)
	if err != nil {
		return fmt.Errorf("submit: load identity: %w", err)
	}

	client := submit.NewClient(
		submit.DefaultConfig(*endpoint, *token),
		identity,
		submit.NewQueue(store, logger),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := client.Submit(ctx, doc.PointSequences(), submit.SubmitOptions{
		Canvas: api.CanvasSize{Width: doc.Width, Height: doc.Height},
		Color:  *color,
	})

	switch {
	case result.Success:
		fmt.Printf("delivered: id=%s url=%s broadcasted=%v\n",
			result.Response.ID, result.Response.StoragePathSVG, result.Response.Broadcasted)
		return nil
	case result.Queued:
		fmt.Println("delivery failed, submission saved to the offline queue")
		return nil
	default:
		return result.Err
	}
}

func runQueue(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("queue", flag.ExitOnError)
	endpoint := fs.String("endpoint", "http://localhost:8080/v1/handwriting", "ingestion endpoint URL")
	token := fs.String("token", os.Getenv("SERVICE_TOKEN"), "bearer token")
	session := fs.String("session", "default", "session id")
	storePath := fs.String("store", "", "local state database (default inkctl.db)")
	maxAttempts := fs.Int("max-attempts", submit.DefaultMaxAttempts, "attempt ceiling for resends")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("queue: expected subcommand (list|resend|clear)")
	}

	store, err := openStore(*storePath)
	if err != nil {
		return fmt.Errorf("queue: open store: %w", err)
	}
	defer store.Close()

	queue := submit.NewQueue(store, logger)

	switch fs.Arg(0) {
	case "list":
		items := queue.All()
		if len(items) == 0 {
			fmt.Println("offline queue is empty")
			return nil
		}
		for _, item := range items {
			state := "pending"
			if item.Attempts >= *maxAttempts {
				state = "abandoned"
			}
			fmt.Printf("%s  %-9s attempts=%d strokes=%d created=%s\n",
				item.ID, state, item.Attempts,
				len(item.Payload.Strokes),
				time.UnixMilli(item.CreatedAt).Format(time.RFC3339),
			)
		}
		return nil

	case "resend":
		identity, err := submit.LoadClientContext(store, *session)
		if err != nil {
			return fmt.Errorf("queue: load identity: %w", err)
		}
		client := submit.NewClient(submit.DefaultConfig(*endpoint, *token), identity, queue, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		delivered, failed := client.ResendPending(ctx, *maxAttempts)
		fmt.Printf("resend finished: delivered=%d failed=%d remaining=%d\n",
			delivered, failed, queue.Size())
		return nil

	case "clear":
		if err := queue.Clear(); err != nil {
			return fmt.Errorf("queue: clear: %w", err)
		}
		fmt.Println("offline queue cleared")
		return nil

	default:
		return fmt.Errorf("queue: unknown subcommand %q", fs.Arg(0))
	}
}

func runResetID(args []string) error {
	fs := flag.NewFlagSet("reset-id", flag.ExitOnError)
	storePath := fs.String("store", "", "local state database (default inkctl.db)")
	fs.Parse(args)

	store, err := openStore(*storePath)
	if err != nil {
		return fmt.Errorf("reset-id: open store: %w", err)
	}
	defer store.Close()

	id, err := submit.ResetClientID(store)
	if err != nil {
		return fmt.Errorf("reset-id: %w", err)
	}
	fmt.Printf("new client id: %s\n", id)
	return nil
}
