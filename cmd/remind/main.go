// Command remind runs a single reminder cycle and exits. It ignores the
// send hour but still respects dedup and the run lock.
//
// With -remote it asks a running server over the admin gRPC API instead of
// opening the database itself, so the server's run lock covers the cycle.
// With -preview it prints the email a borrower would get and sends nothing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/flagx"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/config"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/reminders"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	gs "github.com/dmitrijs2005/kitlibrarian/internal/server/grpc"
)

type options struct {
	remote  string
	token   string
	preview string
}

func parseOptions(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	fs.StringVar(&o.remote, "remote", "", "admin gRPC address of a running server")
	fs.StringVar(&o.token, "token", os.Getenv("ADMIN_TOKEN"), "admin JWT used with -remote")
	fs.StringVar(&o.preview, "preview", "", "borrower id to preview instead of running a cycle")
	err := fs.Parse(flagx.FilterArgs(args, []string{"-remote", "-token", "-preview"}))
	return o, err
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	o, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	if o.remote != "" {
		if err := runRemote(ctx, o, os.Stdout); err != nil {
			log.Printf("%v", err)
			return 1
		}
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}
	defer app.Close()

	if o.preview != "" {
		email, err := app.Preview(ctx, o.preview)
		if err != nil {
			logger.Error(ctx, "preview failed", "error", err)
			return 1
		}
		printEmail(os.Stdout, email.Subject, email.Text)
		return 0
	}

	res, err := app.RunOnce(ctx)
	if err != nil {
		logger.Error(ctx, "reminder cycle failed", "error", err)
		return 1
	}
	printResult(os.Stdout, res)
	return 0
}

func runRemote(ctx context.Context, o options, w io.Writer) error {
	conn, err := grpc.NewClient(o.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, o.token)
	return callAdmin(ctx, gs.NewAdminClient(conn), o.preview, w)
}

// callAdmin runs a cycle, or a preview when borrowerID is set, through the admin client.
func callAdmin(ctx context.Context, c *gs.AdminClient, borrowerID string, w io.Writer) error {
	if borrowerID != "" {
		out, err := c.PreviewEmail(ctx, borrowerID)
		if err != nil {
			return err
		}
		fields := out.GetFields()
		printEmail(w, fields["subject"].GetStringValue(), fields["text"].GetStringValue())
		return nil
	}

	out, err := c.RunCycle(ctx)
	if err != nil {
		return err
	}
	fields := out.GetFields()
	printResult(w, reminders.Result{
		Sent:     int(fields["sent"].GetNumberValue()),
		Skipped:  int(fields["skipped"].GetNumberValue()),
		Total:    int(fields["total"].GetNumberValue()),
		Disabled: fields["disabled"].GetBoolValue(),
	})
	return nil
}

func printResult(w io.Writer, res reminders.Result) {
	if res.Disabled {
		fmt.Fprintln(w, "notifications disabled")
		return
	}
	fmt.Fprintf(w, "sent=%d skipped=%d total=%d\n", res.Sent, res.Skipped, res.Total)
}

func printEmail(w io.Writer, subject, text string) {
	fmt.Fprintf(w, "Subject: %s\n\n%s\n", subject, text)
}
