// Package memory is an in-process fake of the settlement backend. It backs
// the handler tests and lets the UI run without the real service.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gastos/internal/backend"
	"gastos/internal/core"
)

type Store struct {
	mu          sync.Mutex
	email       string
	password    string
	tokens      map[string]struct{}
	expenses    []core.Expense
	settlements []core.Settlement
	nextID      int64
}

// Ensure interface conformance
var _ backend.Service = (*Store)(nil)

// New creates a fake backend accepting the given credentials.
func New(email, password string) *Store {
	return &Store{
		email:    email,
		password: password,
		tokens:   map[string]struct{}{},
		nextID:   1,
	}
}

func (s *Store) Login(_ context.Context, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if email != s.email || password != s.password {
		return "", backend.NewError("Credenciais inválidas")
	}
	token := uuid.NewString()
	s.tokens[token] = struct{}{}
	return token, nil
}

func (s *Store) authorize(token string) error {
	if _, ok := s.tokens[token]; !ok {
		return backend.NewError("Não autenticado")
	}
	return nil
}

func (s *Store) ListExpenses(_ context.Context, token string, filter core.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return nil, err
	}

	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if filter.Start != "" && e.Date < filter.Start {
			continue
		}
		if filter.End != "" && e.Date > filter.End {
			continue
		}
		if filter.PartnerName != "" && e.PartnerName != filter.PartnerName {
			continue
		}
		out = append(out, e)
	}
	// Newest first, as the real backend lists them.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, token string, e core.NewExpense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, backend.NewError(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return core.Expense{}, err
	}

	// Drain the receipt like a real upload would; the fake stores no files.
	if _, err := io.Copy(io.Discard, e.Receipt); err != nil {
		return core.Expense{}, backend.NewError(err.Error())
	}

	exp := core.Expense{
		ID:          s.nextID,
		Date:        e.Date,
		Amount:      canonicalDecimal(e.Amount),
		PartnerName: e.PartnerName,
		Platform:    e.Platform,
		Category:    e.Category,
		Note:        e.Note,
		ReceiptURL:  fmt.Sprintf("memory://receipts/%d/%s", s.nextID, e.ReceiptName),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	s.nextID++
	s.expenses = append(s.expenses, exp)
	return exp, nil
}

func (s *Store) CloseWeek(_ context.Context, token string, r core.CloseWeekRequest) (core.Settlement, error) {
	if err := r.Validate(); err != nil {
		return core.Settlement{}, backend.NewError(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return core.Settlement{}, err
	}

	ifood, _ := core.ParseDecimalCents(r.IfoodAmount)
	ninety9, _ := core.ParseDecimalCents(r.Ninety9Amount)
	rent, _ := core.ParseDecimalCents(r.RentFee)
	income := ifood + ninety9

	// Simplified stand-in for the server-side arithmetic: no reimbursements,
	// even split, rule decides whether rent comes off before or after.
	var net, share int64
	switch r.Rule {
	case core.RuleRentAfterSplit:
		net = income
		share = net/2 - rent/2
	default:
		net = income - rent
		share = net / 2
	}

	weekEnd, _ := time.Parse(core.ISODate, r.WeekEnd)
	st := core.Settlement{
		ID:             s.nextID,
		PayoutID:       s.nextID,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		WeekStart:      weekEnd.AddDate(0, 0, -6).Format(core.ISODate),
		WeekEnd:        r.WeekEnd,
		ReimbRafael:    centsDecimal(0),
		ReimbGuilherme: centsDecimal(0),
		NetForSplit:    centsDecimal(net),
		ShareRafael:    centsDecimal(share),
		ShareGuilherme: centsDecimal(share),
		TotalRafael:    centsDecimal(share),
		TotalGuilherme: centsDecimal(share),
		RentFee:        centsDecimal(rent),
		IncomeTotal:    centsDecimal(income),
	}
	s.nextID++
	s.settlements = append(s.settlements, st)
	return st, nil
}

func (s *Store) GetSettlement(_ context.Context, token string, id int64) (core.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return core.Settlement{}, err
	}
	for _, st := range s.settlements {
		if st.ID == id {
			return st, nil
		}
	}
	return core.Settlement{}, backend.NewError("Fechamento não encontrado")
}

func (s *Store) ListSettlements(_ context.Context, token string) ([]core.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return nil, err
	}
	out := append([]core.Settlement(nil), s.settlements...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeekEnd > out[j].WeekEnd })
	return out, nil
}

func (s *Store) DownloadWeeklyReport(_ context.Context, token, weekEnd, format string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.authorize(token); err != nil {
		return nil, "", err
	}

	var st *core.Settlement
	for i := range s.settlements {
		if s.settlements[i].WeekEnd == weekEnd {
			st = &s.settlements[i]
			break
		}
	}
	if st == nil {
		return nil, "", backend.NewError("Fechamento não encontrado")
	}

	switch format {
	case backend.FormatCSV:
		var b strings.Builder
		b.WriteString("week_start,week_end,income_total,rent_fee,net_for_split,total_rafael,total_guilherme\n")
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s\n",
			st.WeekStart, st.WeekEnd, st.IncomeTotal, st.RentFee, st.NetForSplit, st.TotalRafael, st.TotalGuilherme)
		return io.NopCloser(strings.NewReader(b.String())), "text/csv", nil
	case backend.FormatPDF:
		return io.NopCloser(bytes.NewReader([]byte("%PDF-1.4 fake report " + st.WeekEnd))), "application/pdf", nil
	default:
		return nil, "", backend.NewError(fmt.Sprintf("unknown report format %q", format))
	}
}

// SeedExpense inserts an expense directly, bypassing validation. Test setup
// only.
func (s *Store) SeedExpense(e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextID
		s.nextID++
	}
	s.expenses = append(s.expenses, e)
}

// SeedSettlement inserts a settlement directly. Test setup only.
func (s *Store) SeedSettlement(st core.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.nextID
		s.nextID++
	}
	s.settlements = append(s.settlements, st)
}

// SeedToken registers a token as authenticated. Test setup only.
func (s *Store) SeedToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
}

func canonicalDecimal(s string) string {
	cents, err := core.ParseDecimalCents(s)
	if err != nil {
		return s
	}
	return centsDecimal(cents)
}

func centsDecimal(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	out := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + out
	}
	return out
}
