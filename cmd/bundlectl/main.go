// bundlectl - Telecom bundle recommendation wizard
//
// Usage:
//   bundlectl wizard
//   bundlectl coverage A1001
//   bundlectl slots A1001 --tech vdsl
//   bundlectl recommend --user 1 --address A1001 --line 10:300:0 --line 20:500:5
//   bundlectl checkout --user 1 --address A1001 --slot S-42
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"bundle-wizard/cmd/bundlectl/ui"
	"bundle-wizard/internal/gateway"
	"bundle-wizard/internal/query"
	"bundle-wizard/internal/session"
	"bundle-wizard/internal/wizard"
	"bundle-wizard/pkg/api"
	"bundle-wizard/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "bundlectl",
		Usage:   "Bundle Recommendation Wizard - household setup, coverage, recommendations, checkout",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8000",
				Usage:   "Recommendation backend base URL",
				EnvVars: []string{"BUNDLE_API_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"BUNDLE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the session store (in-memory when unset)",
				EnvVars: []string{"BUNDLE_REDIS_ADDR"},
			},
		},

		Commands: []*cli.Command{
			wizardCommand(),
			healthCommand(),
			coverageCommand(),
			slotsCommand(),
			recommendCommand(),
			checkoutCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps wires config, gateway, orchestrator and session store from the
// CLI context. Flags override the environment-derived config.
func buildDeps(c *cli.Context) (*platform.Config, *query.Orchestrator, session.Store) {
	platform.InitLogger()

	cfg := platform.LoadConfig()
	if c.IsSet("api-url") {
		cfg.APIBaseURL = strings.TrimRight(c.String("api-url"), "/")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}

	orch := query.NewOrchestrator(gateway.New(cfg), cfg)

	var sess session.Store
	if cfg.RedisAddr != "" {
		sess = session.NewRedisStore(cfg.RedisAddr, uuid.NewString())
	} else {
		sess = session.NewMemoryStore()
	}
	return cfg, orch, sess
}

// =============================================================================
// WIZARD COMMAND
// =============================================================================

func wizardCommand() *cli.Command {
	return &cli.Command{
		Name:  "wizard",
		Usage: "Run the interactive setup → recommendations → checkout flow",
		Action: func(c *cli.Context) error {
			_, orch, sess := buildDeps(c)
			store := wizard.NewStore()

			p := tea.NewProgram(ui.NewWizard(store, orch, sess), tea.WithAltScreen())

			// Liveness poll for the footer; never gates a functional action.
			pollCtx, cancel := context.WithCancel(c.Context)
			defer cancel()
			orch.StartHealthPoll(pollCtx, func(h *api.HealthResponse, err error) {
				p.Send(ui.HealthMsg{Health: h, Err: err})
			})

			_, err := p.Run()
			return err
		},
	}
}

// =============================================================================
// DIRECT COMMANDS
// =============================================================================

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check backend liveness",
		Action: func(c *cli.Context) error {
			_, orch, _ := buildDeps(c)
			h, err := orch.Health(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("status:   %s\n", h.Status)
			fmt.Printf("database: %s\n", h.Database)
			fmt.Printf("service:  %s\n", h.Service)
			fmt.Printf("version:  %s\n", h.Version)
			return nil
		},
	}
}

func coverageCommand() *cli.Command {
	return &cli.Command{
		Name:      "coverage",
		Usage:     "Look up coverage for an address",
		ArgsUsage: "<address-id>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one address id")
			}
			_, orch, _ := buildDeps(c)
			cov, err := orch.Coverage(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return outputJSON(cov)
			}
			fmt.Printf("%s — %s / %s\n", cov.AddressID, cov.City, cov.District)
			fmt.Printf("  fiber: %v  vdsl: %v  fwa: %v\n", cov.Fiber, cov.VDSL, cov.FWA)
			fmt.Printf("  priority: %s\n", strings.Join(cov.AvailableTech, " > "))
			return nil
		},
	}
}

func slotsCommand() *cli.Command {
	return &cli.Command{
		Name:      "slots",
		Usage:     "List install slots for an address",
		ArgsUsage: "<address-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tech",
				Usage: "Technology (fiber, vdsl, fwa); resolved from coverage when unset",
			},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one address id")
			}
			_, orch, _ := buildDeps(c)
			addressID := c.Args().First()

			// Slots depend on coverage: resolve the tech first.
			tech := c.String("tech")
			if tech == "" {
				cov, err := orch.Coverage(c.Context, addressID)
				if err != nil {
					return err
				}
				tech = query.ResolveTech(cov)
			}

			slots, err := orch.InstallSlots(c.Context, addressID, tech)
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return outputJSON(slots)
			}
			fmt.Printf("Install slots for %s (%s):\n", slots.AddressID, slots.Tech)
			for _, s := range slots.Slots {
				marker := " "
				if !s.Available {
					marker = "x"
				}
				fmt.Printf("  [%s] %-12s %s → %s\n", marker, s.SlotID, s.SlotStart, s.SlotEnd)
			}
			return nil
		},
	}
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Request bundle recommendations for a household",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "user", Value: 1, Usage: "User id"},
			&cli.StringFlag{Name: "address", Required: true, Usage: "Address id"},
			&cli.StringSliceFlag{
				Name:  "line",
				Usage: "Household line as gb:min:tvhours (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "tech",
				Usage: "Technology preference order (repeatable)",
			},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			_, orch, _ := buildDeps(c)

			store := wizard.NewStore()
			store.SetUser(c.Int("user"))
			store.SetAddress(c.String("address"))
			if techs := c.StringSlice("tech"); len(techs) > 0 {
				store.SetPreferredTech(techs)
			}
			for _, spec := range c.StringSlice("line") {
				line, err := parseLine(spec)
				if err != nil {
					return err
				}
				store.AddLine(line)
			}

			state := store.Snapshot()
			if len(state.Household) == 0 {
				return fmt.Errorf("at least one --line is required")
			}

			req := &api.RecommendationRequest{
				UserID:     *state.UserID,
				AddressID:  state.AddressID,
				Household:  state.Household,
				PreferTech: state.PreferTech,
			}
			resp, err := orch.Recommend(c.Context, req)
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return outputJSON(resp)
			}
			printCandidates(resp.Top3)
			return nil
		},
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "Submit an order for the selected combo",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "user", Value: 1, Usage: "User id"},
			&cli.StringFlag{Name: "address", Required: true, Usage: "Address id"},
			&cli.StringFlag{Name: "slot", Required: true, Usage: "Install slot id"},
			&cli.StringFlag{
				Name:  "combo-file",
				Usage: "JSON file with the selected candidate (session store when unset)",
			},
		},
		Action: func(c *cli.Context) error {
			_, orch, sess := buildDeps(c)

			var combo *api.RecommendationCandidate
			if path := c.String("combo-file"); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				combo = &api.RecommendationCandidate{}
				if err := json.Unmarshal(raw, combo); err != nil {
					return fmt.Errorf("parsing combo file: %w", err)
				}
			} else {
				saved, ok, err := sess.LoadSelection(c.Context)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no selected combo in the session store; pass --combo-file")
				}
				combo = saved
			}

			resp, err := orch.Checkout(c.Context, &api.CheckoutRequest{
				UserID:        c.Int("user"),
				SelectedCombo: *combo,
				SlotID:        c.String("slot"),
				AddressID:     c.String("address"),
			})
			if err != nil {
				return err
			}
			if err := sess.ClearSelection(c.Context); err != nil {
				return err
			}
			fmt.Printf("✅ Order confirmed: %s (%s)\n", resp.OrderID, resp.Status)
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "table",
		Usage:   "Output format (table, json)",
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseLine parses a gb:min:tvhours triple into a household line.
func parseLine(spec string) (api.HouseholdLine, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return api.HouseholdLine{}, fmt.Errorf("invalid --line %q, expected gb:min:tvhours", spec)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return api.HouseholdLine{}, fmt.Errorf("invalid --line %q: %q is not a non-negative number", spec, p)
		}
		vals[i] = v
	}
	return api.HouseholdLine{
		LineID:      wizard.NewLineID(),
		ExpectedGB:  vals[0],
		ExpectedMin: vals[1],
		TVHDHours:   vals[2],
	}, nil
}

func printCandidates(top3 []api.RecommendationCandidate) {
	if len(top3) == 0 {
		fmt.Println("No candidates returned.")
		return
	}
	for i, cand := range top3 {
		badge := ""
		if i == 0 {
			badge = "  ★ Best Value"
		}
		fmt.Printf("\n%d. %s%s\n", i+1, cand.ComboLabel, badge)
		fmt.Printf("   monthly: %s   savings: %s   discounts: %s\n",
			money(cand.MonthlyTotal), money(cand.Savings), money(cand.Discounts.TotalDiscount))
		for _, m := range cand.Items.Mobile {
			fmt.Printf("   mobile %-14s %s (%s)\n", m.LineID, m.Plan.PlanName, money(m.LineCost))
		}
		if h := cand.Items.Home; h != nil {
			fmt.Printf("   home   %s [%s, %d Mbps] (%s)\n", h.Name, h.Tech, h.DownMbps, money(h.MonthlyPrice))
		}
		if tv := cand.Items.TV; tv != nil {
			fmt.Printf("   tv     %s (%s)\n", tv.Name, money(tv.MonthlyPrice))
		}
		if cand.Reasoning != "" {
			fmt.Printf("   %s\n", cand.Reasoning)
		}
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + " TL"
}
