// Package presenter turns session state into what the page and the JSON API
// show. All rounding happens here; stored records keep full precision.
package presenter

import (
	"fmt"

	"github.com/langowen/fxconverter/internal/converter/session"
	"github.com/langowen/fxconverter/internal/entities"
)

const ErrorNotice = "⚠️ Could not fetch live data or currency unavailable."

type Option struct {
	Code     string
	Label    string
	Selected bool
}

type Result struct {
	Headline string `json:"headline"`
	RateLine string `json:"rate_line"`
	Updated  string `json:"updated"`
}

type Row struct {
	Date      string `json:"date"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Converted string `json:"converted"`
	Rate      string `json:"rate"`
}

type Form struct {
	From   entities.CurrencyCode
	To     entities.CurrencyCode
	Amount string
	Error  string
}

type Page struct {
	State       session.State
	FromOptions []Option
	ToOptions   []Option
	Amount      string
	FormError   string
	Result      *Result
	Notice      string
	Rows        []Row
	Chart       *Chart
}

func DefaultForm() Form {
	return Form{
		From:   entities.DefaultFrom,
		To:     entities.DefaultTo,
		Amount: fmt.Sprintf("%.1f", entities.DefaultAmount),
	}
}

func NewResult(record entities.HistoryRecord, lastUpdate string) *Result {
	return &Result{
		Headline: fmt.Sprintf("💰 %s %s = %s %s", Money(record.Amount), record.From, Money(record.Converted), record.To),
		RateLine: fmt.Sprintf("1 %s = %s %s", record.From, Rate(record.Rate), record.To),
		Updated:  "Updated: " + lastUpdate,
	}
}

func NewRow(record entities.HistoryRecord) Row {
	return Row{
		Date:      record.Timestamp.Format(TimeLayout),
		From:      record.From.String(),
		To:        record.To.String(),
		Amount:    Money(record.Amount),
		Converted: Money(record.Converted),
		Rate:      Rate(record.Rate),
	}
}

func Rows(records []entities.HistoryRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, NewRow(record))
	}
	return rows
}

func options(selected entities.CurrencyCode) []Option {
	out := make([]Option, 0, len(entities.Currencies))
	for _, c := range entities.Currencies {
		out = append(out, Option{
			Code:     c.Code.String(),
			Label:    c.Label,
			Selected: c.Code == selected,
		})
	}
	return out
}

// NewPage renders the two-state page: Idle shows only the form (plus any
// result or notice), HasHistory adds the table and, from two records, the chart.
func NewPage(sess *session.Session, form Form, result *Result, notice string) Page {
	page := Page{
		State:       sess.State(),
		FromOptions: options(form.From),
		ToOptions:   options(form.To),
		Amount:      form.Amount,
		FormError:   form.Error,
		Result:      result,
		Notice:      notice,
	}

	if sess.State() == session.StateHasHistory {
		page.Rows = Rows(sess.History())
		page.Chart = NewChart(sess.ChartRecords())
	}

	return page
}

// History is the JSON shape of a session.
type History struct {
	State   session.State            `json:"state"`
	Records []entities.HistoryRecord `json:"records"`
	Rows    []Row                    `json:"rows"`
	Chart   *ChartData               `json:"chart,omitempty"`
}

func NewHistory(sess *session.Session) History {
	h := History{
		State:   sess.State(),
		Records: sess.History(),
		Rows:    Rows(sess.History()),
	}
	if chart := NewChart(sess.ChartRecords()); chart != nil {
		h.Chart = &chart.Data
	}
	return h
}
