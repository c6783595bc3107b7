package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/polysim/internal/domain"
)

// Console renderiza el estado del ledger, el feed y el advisor en texto.
type Console struct {
	out io.Writer
	now func() time.Time
}

// NewConsole crea un Console que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, now: time.Now}
}

// NewConsoleWriter crea un Console para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, now: time.Now}
}

// PrintPortfolio imprime el resumen y la tabla de apuestas (ya ordenadas).
func (c *Console) PrintPortfolio(profile string, s domain.PortfolioSummary, bets []domain.Bet) {
	fmt.Fprintf(c.out, "\n=== PORTFOLIO %s ===\n", profile)
	c.printSummary(s)

	if len(bets) == 0 {
		fmt.Fprintln(c.out, "  No bets placed yet.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Date", "Event", "Market", "Outcome", "Stake", "Entry", "Now", "Payout", "Value", "Status")
	for _, b := range bets {
		table.Append(
			fmt.Sprintf("%d", b.ID),
			b.Date.Local().Format("2006-01-02 15:04"),
			truncate(b.Event, 24),
			truncate(b.Market, 40),
			b.Outcome,
			money(b.Amount),
			cents(b.Price),
			cents(b.CurrentPrice),
			money(b.PotentialPayout),
			money(betValue(b)),
			statusLabel(b.Status),
		)
	}
	table.Render()
}

func (c *Console) printSummary(s domain.PortfolioSummary) {
	fmt.Fprintf(c.out, "  Balance:       %s\n", money(s.Balance))
	fmt.Fprintf(c.out, "  Open bets:     %d (stake %s, value %s)\n", s.OpenBets, money(s.OpenStake), money(s.OpenValue))
	fmt.Fprintf(c.out, "  Settled:       %d won / %d lost\n", s.WonBets, s.LostBets)
	fmt.Fprintf(c.out, "  Realized PnL:  %s\n", signedMoney(s.RealizedPnL))
	fmt.Fprintf(c.out, "  Equity:        %s\n\n", money(s.Balance.Add(s.OpenValue)))
}

// PrintSettlement imprime el resultado de una pasada de reconciliación.
func (c *Console) PrintSettlement(profile string, mutated int, s domain.PortfolioSummary) {
	now := c.now().Format("15:04:05")
	if mutated == 0 {
		fmt.Fprintf(c.out, "[%s] %s: no changes | bal %s | open %d\n", now, profile, money(s.Balance), s.OpenBets)
		return
	}
	fmt.Fprintf(c.out, "[%s] %s: %d bets updated | bal %s | open %d | W:%d L:%d | pnl %s\n",
		now, profile, mutated, money(s.Balance), s.OpenBets, s.WonBets, s.LostBets, signedMoney(s.RealizedPnL))
}

// PrintBetPlaced confirma una apuesta aceptada por el ledger.
func (c *Console) PrintBetPlaced(b domain.Bet, balance decimal.Decimal) {
	fmt.Fprintf(c.out, "%s: #%d %s @ %s on %q, stake %s, payout %s | balance %s\n",
		domain.MsgBetPlaced, b.ID, b.Outcome, cents(b.Price), b.Market,
		money(b.Amount), money(b.PotentialPayout), money(balance))
}

// PrintRejection imprime un rechazo legible (validación o matching).
func (c *Console) PrintRejection(what string, err error) {
	fmt.Fprintf(c.out, "  ✗ %s: %v\n", what, err)
}

// PrintFunds confirma un depósito.
func (c *Console) PrintFunds(amount, balance decimal.Decimal) {
	fmt.Fprintf(c.out, "Added %s to balance. New balance: %s\n", money(amount), money(balance))
}

// PrintProfiles lista los perfiles conocidos marcando el actual.
func (c *Console) PrintProfiles(profiles []string, current string) {
	if len(profiles) == 0 {
		fmt.Fprintln(c.out, "No profiles stored yet.")
		return
	}
	for _, p := range profiles {
		marker := " "
		if p == current {
			marker = "*"
		}
		fmt.Fprintf(c.out, " %s %s\n", marker, p)
	}
}

// PrintEvents imprime la tabla de eventos con sus mercados y precios.
func (c *Console) PrintEvents(events []domain.Event) {
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events found matching criteria.")
		return
	}
	fmt.Fprintf(c.out, "\n[%s] %d events\n", c.now().Format("15:04:05"), len(events))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Event", "Ends", "Market", "Market ID", "Outcomes")
	for i, e := range events {
		for j, m := range e.Markets {
			idx, title, ends := "", "", ""
			if j == 0 {
				idx = fmt.Sprintf("%d", i+1)
				title = truncate(e.Title, 30)
				ends = dateLabel(e.EndDate)
			}
			table.Append(idx, title, ends, truncate(m.Question, 45), m.ID, outcomesLabel(m))
		}
	}
	table.Render()
}

// PrintAnalysis imprime el resumen y las recomendaciones del advisor.
func (c *Console) PrintAnalysis(e domain.Event, a domain.Analysis) {
	fmt.Fprintf(c.out, "\n=== ANALYSIS: %s ===\n", e.Title)
	if a.Error != "" {
		fmt.Fprintf(c.out, "  ⚠ %s\n", a.Error)
		if a.Raw != "" {
			fmt.Fprintf(c.out, "  raw: %s\n", a.Raw)
		}
		return
	}
	if a.Summary != "" {
		fmt.Fprintf(c.out, "  Summary: %s\n", a.Summary)
	}
	if len(a.Bets) == 0 {
		fmt.Fprintln(c.out, "  No recommended bets.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Pick", "Conf", "Fair", "Edge", "Stake", "Amount")
	for i, r := range a.Bets {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(r.MarketQuestion, 45),
			r.Prediction,
			fmt.Sprintf("%.0f%%", r.Confidence*100),
			fmt.Sprintf("%.2f", r.FairValue),
			r.Edge,
			r.RecommendedStake,
			money(r.RecommendedAmount),
		)
	}
	table.Render()
	for i, r := range a.Bets {
		if r.Reasoning != "" {
			fmt.Fprintf(c.out, "  %d. %s\n", i+1, r.Reasoning)
		}
	}
}

// betValue es el valor de mercado de una apuesta abierta o el resultado de una cerrada.
func betValue(b domain.Bet) decimal.Decimal {
	switch b.Status {
	case domain.BetStatusWon:
		return b.PotentialPayout
	case domain.BetStatusLost:
		return decimal.Zero
	default:
		return b.MarkValue()
	}
}

func statusLabel(s domain.BetStatus) string {
	switch s {
	case domain.BetStatusWon:
		return "✓ WON"
	case domain.BetStatusLost:
		return "✗ LOST"
	default:
		return "OPEN"
	}
}

func outcomesLabel(m domain.MarketDetails) string {
	if m.PricesMalformed || len(m.Outcomes) == 0 {
		return "N/A"
	}
	parts := make([]string, 0, len(m.Outcomes))
	for i, o := range m.Outcomes {
		if i < len(m.Prices) {
			parts = append(parts, fmt.Sprintf("%s %s", o, cents(m.Prices[i])))
		} else {
			parts = append(parts, o)
		}
	}
	return strings.Join(parts, " | ")
}

func dateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func signedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

// cents muestra un precio 0..1 como céntimos (0.435 → 43.5¢).
func cents(p decimal.Decimal) string {
	return p.Shift(2).StringFixed(1) + "¢"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
