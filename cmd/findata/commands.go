package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/findata/internal/config"
	"github.com/seenimoa/findata/internal/stock"
	"github.com/seenimoa/findata/internal/statement"
)

// openStock resolves the symbol argument in the --country market.
func openStock(cmd *cobra.Command, symbol string) (*stock.Stock, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	country, _ := cmd.Flags().GetString("country")
	return client.Stock(cmd.Context(), symbol, country)
}

// statementFlags reads --kind and --period.
func statementFlags(cmd *cobra.Command) (statement.Kind, statement.Period, error) {
	k, _ := cmd.Flags().GetString("kind")
	p, _ := cmd.Flags().GetString("period")
	if p == "" {
		p = cfg.Statements.DefaultPeriod
	}
	kind, err := statement.ParseKind(k)
	if err != nil {
		return 0, 0, err
	}
	period, err := statement.ParsePeriod(p)
	if err != nil {
		return 0, 0, err
	}
	return kind, period, nil
}

func addStatementFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "income_statement", "statement: income_statement, balance_sheet or cash_flow")
	cmd.Flags().String("period", "", "annual or quarter (default from config)")
}

// --- CIK Command ---

var cikCmd = &cobra.Command{
	Use:   "cik [query]",
	Short: "List the market's company directory",
	Long:  "List companies whose ticker, name or code contains query. Without a query, list all.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		country, _ := cmd.Flags().GetString("country")
		limit, _ := cmd.Flags().GetInt("limit")
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		rows, err := client.Directory(cmd.Context(), country, query, limit)
		if err != nil {
			return err
		}
		return render(cmd, rows, func(p *printer) {
			p.row("CODE", "TICKER", "NAME", "EXCHANGE")
			for _, r := range rows {
				p.row(r.CIK, r.Symbol, r.Name, r.Exchange)
			}
		})
	},
}

func init() {
	cikCmd.Flags().Int("limit", 50, "maximum rows (0 for all)")
}

// --- Refresh Command ---

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the market's company directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		country, _ := cmd.Flags().GetString("country")
		n, err := client.Refresh(cmd.Context(), country)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s directory: %d companies\n", strings.ToUpper(country), n)
		return nil
	},
}

// --- Filings Command ---

var filingsCmd = &cobra.Command{
	Use:   "filings [symbol]",
	Short: "List a company's filings, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStock(cmd, args[0])
		if err != nil {
			return err
		}
		records, err := s.Filings(cmd.Context())
		if err != nil {
			return err
		}
		form, _ := cmd.Flags().GetString("form")
		limit, _ := cmd.Flags().GetInt("limit")
		out := records[:0:0]
		for _, r := range records {
			if form != "" && !strings.EqualFold(r.Form, form) {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return render(cmd, out, func(p *printer) {
			p.row("FILED", "FORM", "REPORT DATE", "ACCESSION", "DOCUMENT")
			for _, r := range out {
				p.row(r.FilingDate, r.Form, r.ReportDate, r.AccessionNumber, r.PrimaryURL())
			}
		})
	},
}

func init() {
	filingsCmd.Flags().String("form", "", "only this form type, e.g. 10-K")
	filingsCmd.Flags().Int("limit", 20, "maximum rows (0 for all)")
}

// --- Financials Command ---

var financialsCmd = &cobra.Command{
	Use:   "financials [symbol]",
	Short: "Show a financial statement as reported",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, period, err := statementFlags(cmd)
		if err != nil {
			return err
		}
		s, err := openStock(cmd, args[0])
		if err != nil {
			return err
		}

		if all, _ := cmd.Flags().GetBool("all"); all {
			set, err := s.AsReportedSet(cmd.Context(), period)
			if err != nil {
				return err
			}
			return render(cmd, set.Statements, func(p *printer) {
				for _, k := range statement.Kinds() {
					if r, ok := set.Statements[k]; ok {
						printReported(p, r)
					} else {
						p.line(fmt.Sprintf("%s: %v", k.Title(), set.Errors[k]))
					}
					p.line("")
				}
			})
		}

		r, err := s.Financials(cmd.Context(), kind, period)
		if err != nil {
			return err
		}
		return render(cmd, r, func(p *printer) { printReported(p, r) })
	},
}

func init() {
	addStatementFlags(financialsCmd)
	financialsCmd.Flags().Bool("all", false, "retrieve all three statements")
}

// --- Standard Command ---

var standardCmd = &cobra.Command{
	Use:   "standard [symbol]",
	Short: "Show a standardized financial statement built from XBRL facts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, period, err := statementFlags(cmd)
		if err != nil {
			return err
		}
		if ttm, _ := cmd.Flags().GetString("ttm"); ttm != "" {
			cfg.Statements.TTM = ttm
		}
		s, err := openStock(cmd, args[0])
		if err != nil {
			return err
		}
		st, err := s.StandardFinancials(cmd.Context(), kind, period)
		if err != nil {
			return err
		}
		return render(cmd, st, func(p *printer) { printStandard(p, st) })
	},
}

func init() {
	addStatementFlags(standardCmd)
	standardCmd.Flags().String("ttm", "", "TTM policy override: none or sum_last_four")
}

// --- Historical Command ---

var historicalCmd = &cobra.Command{
	Use:   "historical [symbol]",
	Short: "Show daily price history",
	Long:  "Show daily prices between --start and --end (YYYY-MM-DD or YY-MM-DD). Start defaults to the configured floor, end to today.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		s, err := openStock(cmd, args[0])
		if err != nil {
			return err
		}
		series, err := s.Historical(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return render(cmd, series, func(p *printer) {
			p.row("DATE", "OPEN", "HIGH", "LOW", "CLOSE", "ADJ CLOSE", "VOLUME")
			for _, b := range series.Bars {
				p.row(
					b.Timestamp.Format("2006-01-02"),
					money(b.Open), money(b.High), money(b.Low), money(b.Close), money(b.AdjClose),
					fmt.Sprint(b.Volume),
				)
			}
		})
	},
}

func init() {
	historicalCmd.Flags().String("start", "", "first date (default: config dates.start_floor)")
	historicalCmd.Flags().String("end", "", "last date, inclusive (default: today)")
}

// --- Feed Command ---

var feedCmd = &cobra.Command{
	Use:   "feed [symbol]",
	Short: "Show the company's recent filings feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, _ := cmd.Flags().GetString("form")
		s, err := openStock(cmd, args[0])
		if err != nil {
			return err
		}
		items, err := s.Feed(cmd.Context(), form)
		if err != nil {
			return err
		}
		return render(cmd, items, func(p *printer) {
			p.row("DATE", "FORM", "ACCESSION", "DESCRIPTION")
			for _, f := range items {
				p.row(f.Date.Format("2006-01-02"), f.FormType, f.AccessionNo, f.Description)
			}
		})
	},
}

func init() {
	feedCmd.Flags().String("form", "", "only this form type, e.g. 10-Q")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintln(w, "  findata status")
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintf(w, "  Version:    %s (%s)\n", version, commit)
		fmt.Fprintf(w, "  Markets:    %v\n", client.Registry().Countries())
		fmt.Fprintf(w, "  TTM policy: %s\n", cfg.Statements.TTM)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Identity:")
		for _, s := range config.CheckSettings(cfg) {
			status := fmt.Sprintf("%s (%s)", s.Masked, s.Source)
			if s.Source == config.SourceDefault {
				status += " - set FINDATA_SEC_USER_AGENT to your own contact"
			}
			fmt.Fprintf(w, "    %-16s %s\n", s.Name+":", status)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Providers:")
		for _, r := range client.Status(cmd.Context()) {
			status := "ok"
			if !r.OK() {
				status = "unreachable: " + r.Err.Error()
			}
			fmt.Fprintf(w, "    %-16s %s\n", r.Provider+":", status)
		}
		fmt.Fprintln(w, "═══════════════════════════════════════")
		return nil
	},
}
