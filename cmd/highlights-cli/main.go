package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tennishighlights/internal/app"
	"tennishighlights/internal/config"
	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/service"
)

const usage = `Usage: highlights-cli <command> [flags]

Commands:
  info   -url <video-url>      Show metadata for a video
  add    -url <video-url>      Add a video as a highlight
  list                         List all highlights
  delete -id <video-id|url>    Delete a highlight
  today                        Show today's highlight
  rotate                       Choose another highlight for today

Example:
  highlights-cli add -url https://www.youtube.com/watch?v=dQw4w9WgXcQ
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	verbose := os.Getenv("VERBOSE") != ""
	logOut := io.Discard
	if verbose {
		logOut = os.Stderr
	}
	logger := log.New(logOut, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := run(ctx, a.Catalog, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *service.Catalog, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	url := fs.String("url", "", "YouTube video URL")
	id := fs.String("id", "", "Video id or URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "info":
		if *url == "" {
			return errors.New("-url is required")
		}
		h, err := c.Lookup(ctx, *url)
		if err != nil {
			return err
		}
		printHighlight(out, h)
		fmt.Fprintf(out, "Views:    %d\n", h.ViewCount)
	case "add":
		if *url == "" {
			return errors.New("-url is required")
		}
		h, err := c.AddFromURL(ctx, *url)
		if err != nil {
			return err
		}
		printHighlight(out, h)
		fmt.Fprintln(out, "Highlight added successfully!")
	case "list":
		all, err := c.List(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Fprintln(out, "No Highlights in Database!")
			return nil
		}
		for _, h := range all {
			fmt.Fprintf(out, "%-12s %s\n             %s - %s\n", h.VideoID, h.Title, h.Channel, formatDuration(h.Duration))
		}
	case "delete":
		videoID := service.VideoIDFromURL(*id)
		if videoID == "" {
			return errors.New("-id is required")
		}
		if err := c.Delete(ctx, videoID); err != nil {
			return err
		}
		fmt.Fprintln(out, "Highlight deleted successfully!")
	case "today":
		h, err := c.Today(ctx)
		if err != nil {
			return err
		}
		printHighlight(out, h)
	case "rotate":
		h, err := c.ChooseAnother(ctx)
		if err != nil {
			return err
		}
		printHighlight(out, h)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	return nil
}

func printHighlight(out io.Writer, h domain.Highlight) {
	fmt.Fprintf(out, "Title:    %s\n", h.Title)
	fmt.Fprintf(out, "Channel:  %s - %s\n", h.Channel, formatDuration(h.Duration))
	fmt.Fprintf(out, "Watch:    %s\n", service.WatchURL(h.VideoID))
}

// formatDuration renders seconds as MM:SS, or HH:MM:SS from one hour up.
func formatDuration(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoHighlights):
		return "No Highlights in Database!"
	case domain.IsValidation(err):
		return fmt.Sprintf("Invalid data: %v", err)
	case domain.IsStoreError(err):
		return "Database operation failed"
	}
	if e, ok := domain.AsExtractionError(err); ok {
		if e.Kind == domain.KindProviderError {
			return "Failed to process video URL"
		}
		return e.Message
	}
	return err.Error()
}
