package http

import (
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/core"
)

// maxReceiptUpload bounds the multipart form size (10 MiB).
const maxReceiptUpload = 10 << 20

type expenseForm struct {
	Amount      string
	Date        string
	PartnerName string
	Platform    string
	Category    string
	Note        string
}

type expensesView struct {
	Authenticated bool
	Partners      []string
	Form          expenseForm
	Filter        core.ExpenseFilter
	Expenses      []core.Expense
	Created       *core.Expense
	Error         string
	Success       string
}

func newExpensesView() expensesView {
	return expensesView{
		Authenticated: true,
		Partners:      []string{core.PartnerRafael, core.PartnerGuilherme},
		Form: expenseForm{
			Date:        time.Now().Format(core.ISODate),
			PartnerName: core.PartnerRafael,
		},
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleExpenseList(w, r)
	case http.MethodPost:
		s.handleExpenseCreate(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	view := newExpensesView()
	view.Filter = expenseFilterFromQuery(r)

	items, err := s.svc.ListExpenses(r.Context(), bearerToken(r), view.Filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", "error", err)
		view.Error = err.Error()
	}
	view.Expenses = items
	s.render(w, r, "despesas.html", view)
}

func (s *Server) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	view := newExpensesView()

	if err := r.ParseMultipartForm(maxReceiptUpload); err != nil {
		slog.ErrorContext(r.Context(), "Parse multipart form error", "error", err)
		view.Error = "Formulário inválido"
		s.renderExpensePage(w, r, view, http.StatusBadRequest)
		return
	}

	form := expenseForm{
		Amount:      formValue(r, "amount"),
		Date:        formValue(r, "date_value"),
		PartnerName: formValue(r, "partner_name"),
		Platform:    formValue(r, "platform"),
		Category:    formValue(r, "category"),
		Note:        formValue(r, "note"),
	}

	entry := core.NewExpense{
		Amount:      form.Amount,
		Date:        form.Date,
		PartnerName: form.PartnerName,
		Platform:    form.Platform,
		Category:    form.Category,
		Note:        form.Note,
	}
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		entry.Receipt = file
		entry.ReceiptName = header.Filename
	}

	if err := entry.Validate(); err != nil {
		view.Form = form
		view.Error = displayMessage(err)
		s.renderExpensePage(w, r, view, http.StatusUnprocessableEntity)
		return
	}

	created, err := s.svc.CreateExpense(r.Context(), bearerToken(r), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create error", "error", err, "amount", form.Amount, "partner", form.PartnerName)
		view.Form = form
		view.Error = err.Error()
		s.renderExpensePage(w, r, view, http.StatusOK)
		return
	}

	slog.InfoContext(r.Context(), "Expense created", "id", created.ID, "partner", created.PartnerName, "amount", created.Amount)
	view.Success = "Despesa cadastrada com sucesso!"
	view.Created = &created
	s.renderExpensePage(w, r, view, http.StatusOK)
}

// renderExpensePage refreshes the listing with the view's filter and renders
// the page, keeping any error or success banner already set.
func (s *Server) renderExpensePage(w http.ResponseWriter, r *http.Request, view expensesView, status int) {
	items, err := s.svc.ListExpenses(r.Context(), bearerToken(r), view.Filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list error", "error", err)
		if view.Error == "" {
			view.Error = err.Error()
		}
	}
	view.Expenses = items

	// A just-created record leads the list even when the refresh lags the
	// write on the backend side.
	if view.Created != nil {
		found := false
		for _, e := range items {
			if e.ID == view.Created.ID {
				found = true
				break
			}
		}
		if !found {
			view.Expenses = append([]core.Expense{*view.Created}, items...)
		}
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	s.render(w, r, "despesas.html", view)
}

func expenseFilterFromQuery(r *http.Request) core.ExpenseFilter {
	query := r.URL.Query()
	filter := core.ExpenseFilter{
		Start: sanitizeInput(query.Get("start")),
		End:   sanitizeInput(query.Get("end")),
	}
	if partner := sanitizeInput(query.Get("partner_name")); core.ValidPartner(partner) {
		filter.PartnerName = partner
	}
	return filter
}
