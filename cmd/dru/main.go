package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"dru/internal/api"
	"dru/internal/cli"
	"dru/internal/config"
	"dru/internal/core"
	"dru/internal/log"
	"dru/internal/session"
	"dru/internal/store"
)

const usage = `Usage: dru <command> [flags]

Commands:
  register    create an account
  login       obtain and store an access token
  logout      forget the stored token
  categories  list categories
  category    create a category
  tx          list transactions for a period
  spend       record a transaction
  summary     show the month summary
  habits      probe the habits module
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateClient)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	sess := openSession(cfg)
	client := api.NewClient(cfg.APIBaseURL, sess)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "register":
		err = runRegister(ctx, client, sess, os.Args[2:])
	case "login":
		err = runLogin(ctx, client, sess, os.Args[2:])
	case "logout":
		err = api.NewAuthService(client, sess).Logout()
	case "categories":
		err = runCategories(ctx, client)
	case "category":
		err = runCreateCategory(ctx, client, os.Args[2:])
	case "tx":
		err = runTransactions(ctx, client, os.Args[2:])
	case "spend":
		err = runSpend(ctx, client, os.Args[2:])
	case "summary":
		err = runSummary(ctx, client, logger, os.Args[2:])
	case "habits":
		err = runHabits(ctx, client)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		if api.IsAuthError(err) {
			fmt.Fprintln(os.Stderr, "not logged in (or token expired); run: dru login")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openSession(cfg *config.Config) *session.Session {
	path := cfg.TokenPath
	if path == "" {
		defaultPath, err := session.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		path = defaultPath
	}
	return session.Open(path)
}

func runRegister(ctx context.Context, client *api.Client, sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	fs.Parse(args)

	resp, err := api.NewAuthService(client, sess).Register(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (user %d)\n", resp.Email, resp.UserID)
	return nil
}

func runLogin(ctx context.Context, client *api.Client, sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := api.NewAuthService(client, sess).Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func runCategories(ctx context.Context, client *api.Client) error {
	categories, err := api.NewBudgetsService(client).Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("%4d  %-8s %s\n", c.ID, c.Kind, c.Name)
	}
	return nil
}

func runCreateCategory(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("category", flag.ExitOnError)
	name := fs.String("name", "", "category name")
	kind := fs.String("kind", "expense", "income or expense")
	fs.Parse(args)

	payload := core.CategoryPayload{Name: *name, Kind: core.CategoryKind(*kind)}
	if err := payload.Validate(); err != nil {
		return err
	}
	created, err := api.NewBudgetsService(client).CreateCategory(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Printf("created category %d: %s\n", created.ID, created.Name)
	return nil
}

func periodFlags(fs *flag.FlagSet) (*int, *int) {
	now := core.CurrentPeriod(time.Now())
	year := fs.Int("year", now.Year, "year")
	month := fs.Int("month", now.Month, "month (1-12)")
	return year, month
}

func runTransactions(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("tx", flag.ExitOnError)
	year, month := periodFlags(fs)
	fs.Parse(args)

	filter := core.PeriodFilter{Year: *year, Month: *month}
	if err := filter.Validate(); err != nil {
		return err
	}
	transactions, err := api.NewBudgetsService(client).Transactions(ctx, &filter)
	if err != nil {
		return err
	}
	for _, t := range transactions {
		fmt.Printf("%s  %10.2f  %s\n", t.OccurredOn, t.Amount, t.Note)
	}
	return nil
}

func runSpend(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("spend", flag.ExitOnError)
	amount := fs.Float64("amount", 0, "signed amount (negative for expenses)")
	date := fs.String("date", time.Now().Format(core.DateLayout), "date (YYYY-MM-DD)")
	note := fs.String("note", "", "free-form note")
	categoryID := fs.Int64("category", 0, "category id (0 for none)")
	fs.Parse(args)

	payload := core.TransactionPayload{
		Amount:     *amount,
		OccurredOn: *date,
		Note:       *note,
	}
	if *categoryID != 0 {
		payload.CategoryID = categoryID
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	created, err := api.NewBudgetsService(client).CreateTransaction(ctx, payload)
	if err != nil {
		return err
	}
	fmt.Printf("recorded transaction %d: %.2f on %s\n", created.ID, created.Amount, created.OccurredOn)
	return nil
}

// runSummary drives the period store the way a view would: subscribe,
// set the filter and render the snapshot that completes the cycle.
func runSummary(ctx context.Context, client *api.Client, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	year, month := periodFlags(fs)
	fs.Parse(args)

	filter := core.PeriodFilter{Year: *year, Month: *month}
	if err := filter.Validate(); err != nil {
		return err
	}

	periodStore := store.New(api.NewBudgetsService(client), logger)
	defer periodStore.Close()

	done := make(chan store.Snapshot, 1)
	unsubscribe := periodStore.Subscribe(func(snap store.Snapshot) {
		if !snap.Loading && (snap.Summary != nil || snap.Err != "") {
			select {
			case done <- snap:
			default:
			}
		}
	})
	defer unsubscribe()

	periodStore.SetFilter(ctx, filter)

	var snap store.Snapshot
	select {
	case snap = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if snap.Err != "" {
		return fmt.Errorf("%s", snap.Err)
	}

	fmt.Printf("%d-%02d\n", filter.Year, filter.Month)
	fmt.Printf("  income:  %10.2f\n", snap.Summary.Income)
	fmt.Printf("  expense: %10.2f\n", snap.Summary.Expense)
	fmt.Printf("  balance: %10.2f\n", snap.Summary.Balance)
	for _, row := range snap.Summary.ByCategory {
		fmt.Printf("    %-20s %10.2f\n", row.Category, row.Total)
	}
	fmt.Printf("  transactions: %d\n", len(snap.Transactions))
	return nil
}

func runHabits(ctx context.Context, client *api.Client) error {
	message, err := api.NewHabitsService(client).WelcomeMessage(ctx)
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}
