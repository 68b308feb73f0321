package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gastos/internal/backend"
	"gastos/internal/core"
)

type closeWeekForm struct {
	WeekEnd       string
	IfoodAmount   string
	Ninety9Amount string
	RentFee       string
	Rule          string
}

type closeWeekView struct {
	Authenticated bool
	Form          closeWeekForm
	PrevWeek      string
	NextWeek      string
	Result        *core.Settlement
	Error         string
}

func newCloseWeekView(weekEnd string) closeWeekView {
	week := core.WeekWednesdayISO(weekEnd)
	return closeWeekView{
		Authenticated: true,
		Form: closeWeekForm{
			WeekEnd:       week,
			IfoodAmount:   "0",
			Ninety9Amount: "0",
			RentFee:       "50",
			Rule:          core.RuleRentBeforeSplit,
		},
		PrevWeek: core.PrevWeekISO(week),
		NextWeek: core.NextWeekISO(week),
	}
}

func (s *Server) handleCloseWeek(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		view := newCloseWeekView(r.URL.Query().Get("week_end"))
		s.render(w, r, "fechamento.html", view)
	case http.MethodPost:
		s.handleCloseWeekSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCloseWeekSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view := newCloseWeekView("")
		view.Error = "Formulário inválido"
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "fechamento.html", view)
		return
	}

	// The picker only emits Wednesdays, but normalize again so the
	// guarantee survives hand-edited requests.
	form := closeWeekForm{
		WeekEnd:       core.WeekWednesdayISO(formValue(r, "week_end")),
		IfoodAmount:   formValue(r, "ifood_amount"),
		Ninety9Amount: formValue(r, "ninety9_amount"),
		RentFee:       formValue(r, "rent_fee"),
		Rule:          formValue(r, "rule"),
	}

	view := closeWeekView{
		Authenticated: true,
		Form:          form,
		PrevWeek:      core.PrevWeekISO(form.WeekEnd),
		NextWeek:      core.NextWeekISO(form.WeekEnd),
	}

	req := core.CloseWeekRequest{
		WeekEnd:       form.WeekEnd,
		IfoodAmount:   form.IfoodAmount,
		Ninety9Amount: form.Ninety9Amount,
		RentFee:       core.FirstNonEmpty(form.RentFee, "50"),
		Rule:          form.Rule,
	}
	if err := req.Validate(); err != nil {
		view.Error = displayMessage(err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "fechamento.html", view)
		return
	}

	settlement, err := s.svc.CloseWeek(r.Context(), bearerToken(r), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "Close week error", "error", err, "week_end", req.WeekEnd)
		view.Error = err.Error()
		s.render(w, r, "fechamento.html", view)
		return
	}

	slog.InfoContext(r.Context(), "Week closed", "settlement_id", settlement.ID, "week_end", settlement.WeekEnd)
	view.Result = &settlement
	s.render(w, r, "fechamento.html", view)
}

type settlementsView struct {
	Authenticated bool
	Settlements   []core.Settlement
	Error         string
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	view := settlementsView{Authenticated: true}

	items, err := s.svc.ListSettlements(r.Context(), bearerToken(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Settlement list error", "error", err)
		view.Error = err.Error()
	}
	view.Settlements = items
	s.render(w, r, "relatorios.html", view)
}

type settlementDetailView struct {
	Authenticated bool
	Settlement    *core.Settlement
	Error         string
}

func (s *Server) handleSettlementDetail(w http.ResponseWriter, r *http.Request) {
	suffix := strings.TrimPrefix(r.URL.Path, "/relatorios/")
	if suffix == "" {
		http.Redirect(w, r, "/relatorios", http.StatusFound)
		return
	}

	view := settlementDetailView{Authenticated: true}
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		view.Error = "Fechamento não encontrado"
		w.WriteHeader(http.StatusNotFound)
		s.render(w, r, "relatorio_detalhe.html", view)
		return
	}

	settlement, err := s.svc.GetSettlement(r.Context(), bearerToken(r), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settlement fetch error", "error", err, "settlement_id", id)
		view.Error = err.Error()
		s.render(w, r, "relatorio_detalhe.html", view)
		return
	}

	view.Settlement = &settlement
	s.render(w, r, "relatorio_detalhe.html", view)
}

// handleDownload proxies the weekly report to the browser as an attachment
// named relatorio-<week_end>.<ext>. The upstream body is closed as soon as
// the copy finishes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	weekEnd := sanitizeInput(query.Get("week_end"))
	format := sanitizeInput(query.Get("format"))

	if format != backend.FormatCSV && format != backend.FormatPDF {
		http.Error(w, "formato inválido", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse(core.ISODate, weekEnd); err != nil {
		http.Error(w, "semana inválida", http.StatusBadRequest)
		return
	}

	body, contentType, err := s.svc.DownloadWeeklyReport(r.Context(), bearerToken(r), weekEnd, format)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report download error", "error", err, "week_end", weekEnd, "format", format)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer body.Close()

	if contentType == "" {
		if format == backend.FormatCSV {
			contentType = "text/csv"
		} else {
			contentType = "application/pdf"
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=relatorio-%s.%s", weekEnd, format))

	if _, err := io.Copy(w, body); err != nil {
		slog.ErrorContext(r.Context(), "Report stream error", "error", err, "week_end", weekEnd)
	}
}
