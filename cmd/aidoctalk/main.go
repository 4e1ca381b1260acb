// Command aidoctalk is the terminal client: an AI health chat with hospital
// discovery, doctor reservations, a health article library and paid
// subscription plans.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/auth"
	"github.com/galo61408022-ux/Aidoctalk/internal/config"
	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/infra"
	"github.com/galo61408022-ux/Aidoctalk/internal/router"
	"github.com/galo61408022-ux/Aidoctalk/internal/screens"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/chat"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/hospitals"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/location"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/payments"
	"github.com/galo61408022-ux/Aidoctalk/internal/statestore"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("aidoctalk exited")
	}
}

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	toasts *toast.Notifier

	account *auth.Store
	nav     *router.Router

	guest       *screens.GuestChat
	member      *screens.MemberChat
	locator     *screens.Locator
	search      *screens.Search
	reservation *screens.Reservation
	articles    *screens.Articles
	plans       *screens.Plans
	history     *payments.Client
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	state, err := statestore.NewFileStore(cfg.StateDir)
	if err != nil {
		return err
	}

	provider, err := auth.NewFirebaseProvider(auth.FirebaseOptions{
		APIKey:   cfg.FirebaseAPIKey,
		BaseURL:  cfg.FirebaseBaseURL,
		TokenURL: cfg.FirebaseTokenURL,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	account := auth.NewStore(auth.Options{
		Provider:    provider,
		State:       state,
		Logger:      logger,
		LoadTimeout: cfg.AuthLoadTimeout,
	})
	defer account.Close()

	nav := router.New(router.Options{State: state, Logger: logger})
	unsubscribe := account.OnEvent(func(ev auth.Event) {
		nav.HandleAuthChange(ev.User != nil, ev.Loading)
	})
	defer unsubscribe()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	chatClient, err := chat.NewClient(chat.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: httpClient,
		Tokens:     provider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	hospitalsClient, err := hospitals.NewClient(hospitals.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	paymentsClient, err := payments.NewClient(payments.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: httpClient,
		Tokens:     provider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	checkout, err := payments.NewCheckoutService(payments.CheckoutOptions{
		Client:    paymentsClient,
		Popup:     &payments.HostedPopup{In: os.Stdin, Out: os.Stdout},
		PublicKey: cfg.PaystackPublicKey,
		Timeout:   cfg.CheckoutTimeout,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	resolver, err := location.NewGeoIPResolver(location.GeoIPOptions{
		DBPath:     cfg.GeoIPDBPath,
		IPEchoURL:  cfg.IPEchoURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = resolver.Close() }()

	toasts := toast.NewNotifier()
	defer toasts.Close()

	a := &app{
		cfg:         cfg,
		logger:      logger,
		toasts:      toasts,
		account:     account,
		nav:         nav,
		guest:       screens.NewGuestChat(chatClient, toasts, logger),
		member:      screens.NewMemberChat(chatClient, account, toasts, logger),
		locator:     screens.NewLocator(hospitalsClient, resolver, toasts, logger),
		search:      screens.NewSearch(hospitalsClient, toasts, logger),
		reservation: screens.NewReservation(toasts, logger),
		articles:    screens.NewArticles(),
		plans:       screens.NewPlans(account, checkout, toasts, logger),
		history:     paymentsClient,
	}
	return a.loop(ctx)
}

func (a *app) loop(ctx context.Context) error {
	fmt.Println("AIDoctalk. Type 'help' for commands, Ctrl+C to quit.")
	a.render()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye.")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			a.handle(ctx, strings.TrimSpace(line))
			a.drainToasts()
		}
	}
}

func (a *app) handle(ctx context.Context, line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		a.printHelp()
	case "go":
		if len(args) != 1 {
			fmt.Println("usage: go <screen>")
			return
		}
		a.nav.Navigate(router.Screen(args[0]))
		a.render()
	case "login":
		if len(args) != 2 {
			fmt.Println("usage: login <email> <password>")
			return
		}
		if err := a.account.Login(ctx, args[0], args[1]); err == nil {
			fmt.Println("Signed in.")
		}
		a.render()
	case "signup":
		if len(args) < 3 {
			fmt.Println("usage: signup <name> <email> <password>")
			return
		}
		name := strings.Join(args[:len(args)-2], " ")
		email, password := args[len(args)-2], args[len(args)-1]
		if err := a.account.Signup(ctx, name, email, password); err == nil {
			fmt.Println("Account created.")
		}
		a.render()
	case "logout":
		if err := a.account.Logout(ctx); err == nil {
			fmt.Println("Signed out.")
		}
		a.render()
	case "say":
		a.say(ctx, strings.Join(args, " "))
		a.render()
	case "subscribe":
		if len(args) != 1 {
			fmt.Println("usage: subscribe <starter|professional|premium>")
			return
		}
		_ = a.plans.Subscribe(ctx, domain.SubscriptionPlan(args[0]))
	case "plans":
		for _, plan := range a.plans.Catalog() {
			fmt.Printf("  %-13s NGN %d/month\n", plan.Name, plan.Price)
			for _, f := range plan.Features {
				fmt.Printf("    - %s\n", f)
			}
		}
	case "payments":
		records, err := a.history.History(ctx)
		if err != nil {
			fmt.Println("Could not load payment history.")
			return
		}
		for _, r := range records {
			fmt.Printf("  %s  %-12s  %d kobo  %s\n", r.Reference, r.Plan, r.Amount, r.Status)
		}
	case "filter":
		a.applyFilter(strings.Join(args, " "))
		a.render()
	case "book":
		a.book(ctx, args)
	case "bookmark":
		a.bookmark(args)
	case "refresh":
		a.refresh(ctx)
		a.render()
	default:
		fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
	}
}

// say routes a chat message to whichever chat screen is showing.
func (a *app) say(ctx context.Context, text string) {
	if a.nav.Resolve(a.account.IsAuthenticated()) == router.ScreenChat {
		a.member.Send(ctx, text)
		return
	}
	a.guest.Send(ctx, text)
}

func (a *app) applyFilter(query string) {
	switch a.nav.Current() {
	case router.ScreenHospitalLocator:
		a.locator.SetFilter(query)
	case router.ScreenHospitalSearch:
		a.search.SetQuery(query)
	case router.ScreenHealthArticles:
		a.articles.SetQuery(query)
	default:
		fmt.Println("Nothing to filter on this screen.")
	}
}

func (a *app) book(ctx context.Context, args []string) {
	_ = ctx
	if len(args) == 0 {
		fmt.Println("usage: book <specialty|hospital|doctor|slot|confirm> <value...>")
		return
	}
	if args[0] == "confirm" {
		if booking, err := a.reservation.Confirm(); err == nil {
			fmt.Printf("Booked %s with %s on %s at %s.\n", booking.ID, booking.Doctor, booking.Date, booking.Time)
		}
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: book <specialty|hospital|doctor|slot|confirm> <value...>")
		return
	}
	value := strings.Join(args[1:], " ")
	switch args[0] {
	case "specialty":
		a.reservation.SelectSpecialty(value)
	case "hospital":
		a.reservation.SelectHospital(value)
	case "doctor":
		a.reservation.SelectDoctor(value)
	case "slot":
		if len(args) < 3 {
			fmt.Println("usage: book slot <date> <time>")
			return
		}
		a.reservation.SelectSlot(strings.Join(args[1:len(args)-2], " "), strings.Join(args[len(args)-2:], " "))
	default:
		fmt.Println("unknown booking step")
	}
}

func (a *app) bookmark(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: bookmark <article-id>")
		return
	}
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		fmt.Println("article id must be a number")
		return
	}
	if a.articles.ToggleBookmark(id) {
		fmt.Println("Bookmarked.")
	} else {
		fmt.Println("Bookmark removed.")
	}
}

func (a *app) refresh(ctx context.Context) {
	switch a.nav.Current() {
	case router.ScreenHospitalLocator:
		a.locator.Load(ctx)
	case router.ScreenHospitalSearch:
		a.search.Load(ctx)
	case router.ScreenChat:
		if err := a.member.Load(ctx); err != nil {
			fmt.Println("Could not load conversations.")
		}
	default:
		fmt.Println("Nothing to refresh on this screen.")
	}
}

func (a *app) render() {
	screen := a.nav.Resolve(a.account.IsAuthenticated())
	fmt.Printf("\n== %s ==\n", screen)
	switch screen {
	case router.ScreenGuest:
		for _, m := range a.guest.Messages() {
			fmt.Printf("  [%s] %s\n", m.Sender, m.Text)
		}
		if len(a.guest.Messages()) == 1 {
			fmt.Println("  Quick actions:")
			for _, q := range screens.GuestQuickActions {
				fmt.Printf("    - %s\n", q)
			}
		}
	case router.ScreenAuth:
		fmt.Println("  login <email> <password> | signup <name> <email> <password>")
	case router.ScreenChat:
		for _, c := range a.member.Conversations() {
			marker := " "
			if c.ID == a.member.ActiveConversation() {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, c.Title)
		}
		for _, m := range a.member.Messages() {
			fmt.Printf("  [%s] %s\n", m.Sender, m.Text)
		}
	case router.ScreenHospitalLocator:
		for _, h := range a.locator.Hospitals() {
			status := "closed"
			if h.Open {
				status = "open"
			}
			fmt.Printf("  %s (%s, %.1f, %s)\n", h.Name, h.Distance, h.Rating, status)
		}
	case router.ScreenHospitalSearch:
		for _, h := range a.search.Results() {
			fmt.Printf("  %s - %s, %s\n", h.Name, h.Specialty, h.Location)
		}
	case router.ScreenDoctorReservation:
		specialty, hospital, doctor, date, timeSlot := a.reservation.Selection()
		fmt.Printf("  specialty=%q hospital=%q doctor=%q slot=%q %q\n", specialty, hospital, doctor, date, timeSlot)
	case router.ScreenHealthArticles:
		for _, art := range a.articles.List() {
			mark := " "
			if a.articles.Bookmarked(art.ID) {
				mark = "*"
			}
			fmt.Printf("  %s [%d] %s (%s, %s)\n", mark, art.ID, art.Title, art.Category, art.ReadTime)
		}
	}
}

func (a *app) drainToasts() {
	for _, t := range a.toasts.Active() {
		fmt.Printf("  (%s) %s\n", t.Severity, t.Message)
		a.toasts.Dismiss(t.ID)
	}
}

func (a *app) printHelp() {
	fmt.Print(`Commands:
  go <screen>           guest | auth | hospital-locator | hospital-search |
                        doctor-reservation | health-articles | authenticated-chat
  login <email> <pw>    sign in
  signup <name> <email> <pw>
  logout
  say <message>         chat with the assistant
  refresh               reload the current screen's data
  filter <text>         filter the current screen's list
  book <step> <value>   walk the reservation wizard, then 'book confirm'
  bookmark <id>         toggle an article bookmark
  plans                 show subscription tiers
  subscribe <plan>      start a paid subscription
  payments              show payment history
`)
}
