// Command lostfound-admin manages admin invites and inspects the dashboard
// data of a running lost & found server over its HTTP API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
	"github.com/fatih/color"
)

const banner = `
  _              _      ___    ___                    _
 | |   ___  ___ | |_   ( _ )  | __|___  _  _  _ _  __| |
 | |__/ _ \(_-< |  _|  / _ \/ | _|/ _ \| || || ' \/ _' |
 |____\___//__/  \__|  \___/\ |_| \___/ \_,_||_||_\__,_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cli := &cli{
		client:      lostfoundsdk.NewSDKClient(serverURL()),
		sessionPath: sessionPath(),
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch cmd {
	case "login":
		err = cli.login(ctx, args)
	case "logout":
		err = cli.logout(ctx)
	case "me":
		err = cli.me(ctx)
	case "invite", "invites":
		err = cli.invite(ctx, args)
	case "users":
		err = cli.users(ctx, args)
	case "stats":
		err = cli.stats(ctx, args)
	case "health":
		err = cli.health(ctx)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: lostfound-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <email>             Sign in and store the session")
	fmt.Println("  logout                    Forget the stored session")
	fmt.Println("  me                        Show the signed-in account")
	fmt.Println("  invite list               List recent admin invites")
	fmt.Println("  invite create <email>     Invite someone to become an admin")
	fmt.Println("  invite resend <id>        Issue a fresh link for an invite")
	fmt.Println("  invite revoke <id>        Revoke a pending invite")
	fmt.Println("  users [query]             List accounts, optionally filtered")
	fmt.Println("  stats weekly|monthly      Lost/found report counts")
	fmt.Println("  health                    Show server readiness")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  LOSTFOUND_URL             Server URL (default: http://localhost:5000)")
	fmt.Println("  LOSTFOUND_SESSION         Session file (default: $XDG_CONFIG_HOME/lostfound/session)")
	fmt.Println("  LOSTFOUND_PASSWORD        Password for login (prompted when unset)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  lostfound-admin login admin@example.com")
	fmt.Println("  lostfound-admin invite create jane@example.com")
	fmt.Println("  lostfound-admin users --page 2 jane")
	fmt.Println()
}

func serverURL() string {
	if u := os.Getenv("LOSTFOUND_URL"); u != "" {
		return u
	}
	return "http://localhost:5000"
}

// sessionPath resolves where the session token is kept between runs.
func sessionPath() string {
	if p := os.Getenv("LOSTFOUND_SESSION"); p != "" {
		return p
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".lostfound-session"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lostfound", "session")
}

type cli struct {
	client      *lostfoundsdk.SDKClient
	sessionPath string
	in          *bufio.Reader
	out         io.Writer
}

var errNotLoggedIn = errors.New("not logged in (run: lostfound-admin login <email>)")

func (c *cli) session() (*lostfoundsdk.Session, error) {
	data, err := os.ReadFile(c.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, errNotLoggedIn
	}
	return c.client.NewSession(token), nil
}

func (c *cli) saveSession(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(c.sessionPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: lostfound-admin login <email>")
	}
	email := args[0]

	password := os.Getenv("LOSTFOUND_PASSWORD")
	if password == "" {
		fmt.Fprint(c.out, "Password: ")
		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	session, resp, err := c.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if resp.User.Role != "admin" {
		color.Yellow("  Signed in, but %s is not an admin; admin commands will be refused.\n", email)
	}
	if err := c.saveSession(session.Token()); err != nil {
		return err
	}

	color.Green("  Logged in as %s (%s)\n", resp.User.Name, resp.User.Email)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	session, err := c.session()
	if errors.Is(err, errNotLoggedIn) {
		return nil
	}
	if err != nil {
		return err
	}

	// The server keeps no session state; dropping the file is what matters.
	_ = session.Logout(ctx)
	if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	color.Green("  Logged out\n")
	return nil
}

func (c *cli) me(ctx context.Context) error {
	session, err := c.session()
	if err != nil {
		return err
	}

	resp, err := session.CheckAuth(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Fprintln(c.out)
	cyan.Fprintln(c.out, "  Account")
	cyan.Fprintln(c.out, "  -------")
	fmt.Fprintf(c.out, "  ID:        %s\n", resp.User.ID)
	fmt.Fprintf(c.out, "  Name:      %s\n", resp.User.Name)
	fmt.Fprintf(c.out, "  Email:     %s\n", resp.User.Email)
	fmt.Fprintf(c.out, "  Role:      %s\n", resp.User.Role)
	if resp.User.LastLogin != nil {
		fmt.Fprintf(c.out, "  Last seen: %s\n", resp.User.LastLogin.Local().Format(time.RFC1123))
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) invite(ctx context.Context, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	session, err := c.session()
	if err != nil {
		return err
	}

	switch subcmd {
	case "list":
		resp, err := session.ListInvites(ctx)
		if err != nil {
			return err
		}
		c.printInvites(resp.Invites)
		return nil
	case "create", "resend", "revoke":
		if len(args) < 1 {
			arg := "id"
			if subcmd == "create" {
				arg = "email"
			}
			return fmt.Errorf("usage: lostfound-admin invite %s <%s>", subcmd, arg)
		}
	default:
		return fmt.Errorf("unknown invite subcommand: %s (use list, create, resend or revoke)", subcmd)
	}

	var resp *lostfoundsdk.InviteResponse
	switch subcmd {
	case "create":
		resp, err = session.CreateInvite(ctx, args[0])
	case "resend":
		resp, err = session.ResendInvite(ctx, args[0])
	case "revoke":
		resp, err = session.RevokeInvite(ctx, args[0])
	}
	if err != nil {
		return err
	}

	c.printIssued(resp)
	return nil
}

func (c *cli) printIssued(resp *lostfoundsdk.InviteResponse) {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(c.out)
	green.Fprintf(c.out, "  %s\n", resp.Message)
	fmt.Fprintf(c.out, "  Invite %s for %s is %s\n", resp.Invite.ID, resp.Invite.Email, resp.Invite.Status)
	if resp.AcceptURL != "" {
		fmt.Fprintln(c.out)
		cyan.Fprintln(c.out, "  Accept URL:")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "  "+resp.AcceptURL)
		fmt.Fprintln(c.out)
		yellow.Fprintf(c.out, "  Expires: %s\n", resp.Invite.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintln(c.out)
}

func (c *cli) printInvites(invites []lostfoundsdk.Invite) {
	if len(invites) == 0 {
		fmt.Fprintln(c.out, "  No invites")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tEMAIL\tSTATUS\tEXPIRES\tCREATED")
	fmt.Fprintln(w, "  --\t-----\t------\t-------\t-------")
	for _, inv := range invites {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			inv.ID,
			truncate(inv.Email, 32),
			statusColor(inv.Status),
			inv.ExpiresAt.Local().Format("Jan 02 15:04"),
			inv.CreatedAt.Local().Format("Jan 02 15:04"),
		)
	}
	_ = w.Flush()
}

func statusColor(status string) string {
	switch status {
	case "pending":
		return color.YellowString(status)
	case "accepted":
		return color.GreenString(status)
	case "revoked", "expired":
		return color.RedString(status)
	default:
		return status
	}
}

func (c *cli) users(ctx context.Context, args []string) error {
	q, err := parseListArgs(args)
	if err != nil {
		return err
	}

	session, err := c.session()
	if err != nil {
		return err
	}

	resp, err := session.ListUsers(ctx, q)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tEMAIL\tROLE\tCREATED")
	fmt.Fprintln(w, "  --\t----\t-----\t----\t-------")
	for _, u := range resp.Users {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			u.ID,
			truncate(u.Name, 24),
			truncate(u.Email, 32),
			u.Role,
			u.CreatedAt.Local().Format("Jan 02 2006"),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(c.out, "\n  Page %d of %d (%d users)\n", resp.Page, max(resp.TotalPages, 1), resp.Total)
	return nil
}

// parseListArgs reads --page and --limit flags; remaining words form the
// search query.
func parseListArgs(args []string) (lostfoundsdk.ListQuery, error) {
	var q lostfoundsdk.ListQuery
	var words []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--page", "-p", "--limit", "-l":
			if i+1 >= len(args) {
				return q, fmt.Errorf("%s needs a value", args[i])
			}
			n, err := parseIntArg(args[i+1])
			if err != nil {
				return q, fmt.Errorf("invalid %s: %w", args[i], err)
			}
			if args[i] == "--page" || args[i] == "-p" {
				q.Page = n
			} else {
				q.Limit = n
			}
			i++
		default:
			words = append(words, args[i])
		}
	}

	q.Q = strings.Join(words, " ")
	return q, nil
}

func parseIntArg(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func (c *cli) stats(ctx context.Context, args []string) error {
	period := "weekly"
	if len(args) > 0 {
		period = args[0]
	}

	session, err := c.session()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	switch period {
	case "weekly":
		resp, err := session.WeeklyStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "  DAY\tDATE\tLOST\tFOUND")
		for _, b := range resp.Data {
			fmt.Fprintf(w, "  %s\t%s\t%d\t%d\n", b.Name, b.Key, b.Lost, b.Found)
		}
	case "monthly":
		resp, err := session.MonthlyStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "  MONTH\tKEY\tLOST\tFOUND")
		for _, b := range resp.Data {
			fmt.Fprintf(w, "  %s\t%s\t%d\t%d\n", b.Month, b.Key, b.Lost, b.Found)
		}
	default:
		return fmt.Errorf("unknown stats period: %s (use weekly or monthly)", period)
	}
	return w.Flush()
}

func (c *cli) health(ctx context.Context) error {
	resp, err := c.client.GetReadiness(ctx)
	if err != nil {
		return err
	}

	status := color.GreenString(resp.Status)
	if resp.Status != "ok" {
		status = color.RedString(resp.Status)
	}
	fmt.Fprintf(c.out, "  Status:   %s\n", status)
	fmt.Fprintf(c.out, "  Version:  %s\n", resp.Version)
	fmt.Fprintf(c.out, "  Uptime:   %s\n", resp.Uptime)
	if resp.Checks != nil {
		fmt.Fprintf(c.out, "  Database: %s\n", resp.Checks.Database)
		fmt.Fprintf(c.out, "  Signer:   %s\n", resp.Checks.Signer)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
