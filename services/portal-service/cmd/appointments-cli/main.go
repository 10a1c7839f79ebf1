package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/md-rashed-zaman/patientportal/libs/auth"
	"github.com/md-rashed-zaman/patientportal/libs/config"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/backend"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/directory"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/page"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/payment"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
)

const usage = `usage: appointments-cli [flags] <command>

commands:
  list                         show my appointments, newest first
  cancel <appointment-id>      cancel an appointment
  pay <appointment-id> k=v...  pay with cardholderName=, cardNumber=, expiryDate=, cvv=
  doctors                      show the doctor directory
`

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// printer shows page notifications on the terminal.
type printer struct{ w io.Writer }

func (p printer) Success(msg string) { fmt.Fprintln(p.w, "ok:", msg) }
func (p printer) Error(msg string)   { fmt.Fprintln(p.w, "error:", msg) }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("appointments-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		baseURL   = fs.String("base-url", config.String("BACKEND_URL", "http://localhost:4000"), "booking backend base url")
		token     = fs.String("token", config.String("PORTAL_TOKEN", ""), "patient token; skips login")
		email     = fs.String("email", config.String("PORTAL_EMAIL", ""), "login email")
		password  = fs.String("password", config.String("PORTAL_PASSWORD", ""), "login password")
		userID    = fs.String("user-id", config.String("PORTAL_USER_ID", ""), "patient id; read from the token when empty")
		jwtSecret = fs.String("jwt-secret", config.String("JWT_SECRET", ""), "verify the token with this HS256 secret")
		timeout   = fs.Duration("timeout", 10*time.Second, "backend timeout")
	)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	client := backend.New(*baseURL, *timeout)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if rest[0] == "doctors" {
		doctors := directory.New(client, logger)
		if err := doctors.Refresh(ctx); err != nil {
			msg := backend.ServerMessage(err)
			if msg == "" {
				msg = err.Error()
			}
			fmt.Fprintln(stderr, "error:", msg)
			return 1
		}
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSPECIALITY\tFEES")
		for _, d := range doctors.Doctors() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", d.ID, d.Name, d.Speciality, d.Fees)
		}
		_ = w.Flush()
		return 0
	}

	sess, err := login(ctx, client, *token, *email, *password, *userID, *jwtSecret)
	if err != nil {
		fmt.Fprintln(stderr, "login:", err)
		return 1
	}

	p := page.New(*sess, page.Config{
		Backend:          client,
		Notifier:         printer{w: stderr},
		RefreshDirectory: directory.New(client, logger).Refresh,
		Logger:           logger,
	})
	if err := p.Mount(ctx); err != nil {
		return 1
	}

	switch rest[0] {
	case "list":
		printList(stdout, p)
		return 0
	case "cancel":
		if len(rest) != 2 {
			fs.Usage()
			return 2
		}
		if err := p.Cancel(ctx, rest[1]); err != nil {
			return 1
		}
		printList(stdout, p)
		return 0
	case "pay":
		if len(rest) < 2 {
			fs.Usage()
			return 2
		}
		form, err := parseForm(rest[2:])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if err := p.OpenPayment(rest[1]); err != nil {
			fmt.Fprintf(stderr, "error: %s: %v\n", rest[1], err)
			return 1
		}
		if err := p.SubmitPayment(ctx, form); err != nil {
			return 1
		}
		printList(stdout, p)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		fs.Usage()
		return 2
	}
}

func login(ctx context.Context, client *backend.Client, token, email, password, userID, secret string) (*session.Session, error) {
	if token == "" {
		if email == "" || password == "" {
			return nil, errors.New("set -token or both -email and -password")
		}
		var err error
		token, userID, err = client.Login(ctx, email, password)
		if err != nil {
			if msg := backend.ServerMessage(err); msg != "" {
				return nil, errors.New(msg)
			}
			return nil, err
		}
	}
	if userID == "" {
		// Listing works without it; cancel reports the missing id itself.
		userID, _ = auth.UserID(token, secret)
	}
	return session.New(token, userID, time.Now()), nil
}

func parseForm(pairs []string) (payment.Form, error) {
	var form payment.Form
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || !form.Set(name, value) {
			return payment.Form{}, fmt.Errorf("bad card field %q", pair)
		}
	}
	return form, nil
}

func printList(w io.Writer, p *page.Page) {
	if p.View() == page.ViewEmpty {
		fmt.Fprintln(w, "No appointments found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOCTOR\tSPECIALITY\tDATE & TIME\tSTATUS")
	for _, a := range p.Appointments() {
		status := a.Status().Label()
		if status == "" {
			status = "Pay Online / Cancel"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.DocData.Name, a.DocData.Speciality, a.SlotLabel(), status)
	}
	_ = tw.Flush()
}
