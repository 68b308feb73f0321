package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestLoginSendsCredentialsAndReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rafael@delivery.com", body["email"])
		assert.Equal(t, "segredo", body["password"])

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	token, err := c.Login(context.Background(), "rafael@delivery.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
}

func TestListExpensesQueryAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/expenses", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "2024-01-01", q.Get("start"))
		assert.Equal(t, "2024-01-03", q.Get("end"))
		assert.Equal(t, core.PartnerRafael, q.Get("partner_name"))

		json.NewEncoder(w).Encode([]core.Expense{
			{ID: 7, Date: "2024-01-02", Amount: "12.50", PartnerName: core.PartnerRafael},
		})
	}))
	defer srv.Close()

	expenses, err := NewClient(srv.URL).ListExpenses(context.Background(), "tok-123", core.ExpenseFilter{
		Start:       "2024-01-01",
		End:         "2024-01-03",
		PartnerName: core.PartnerRafael,
	})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(7), expenses[0].ID)
	assert.Equal(t, "12.50", expenses[0].Amount)
}

func TestListExpensesOmitsEmptyFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		json.NewEncoder(w).Encode([]core.Expense{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListExpenses(context.Background(), "tok", core.ExpenseFilter{})
	require.NoError(t, err)
}

func TestCreateExpenseMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/expenses", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "12.50", r.FormValue("amount"))
		assert.Equal(t, "2024-01-03", r.FormValue("date_value"))
		assert.Equal(t, core.PartnerGuilherme, r.FormValue("partner_name"))
		assert.Equal(t, "ifood", r.FormValue("platform"))
		// Optional empty fields must not appear as parts.
		_, hasNote := r.MultipartForm.Value["note"]
		assert.False(t, hasNote)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "nota.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-image-bytes", string(content))

		json.NewEncoder(w).Encode(core.Expense{ID: 1, Amount: "12.50", Date: "2024-01-03"})
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL).CreateExpense(context.Background(), "tok", core.NewExpense{
		Amount:      "12.50",
		Date:        "2024-01-03",
		PartnerName: core.PartnerGuilherme,
		Platform:    "ifood",
		ReceiptName: "nota.jpg",
		Receipt:     strings.NewReader("fake-image-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestCloseWeekCanonicalizesAmounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payouts/close_week", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-01-03", body["week_end"])
		// Comma input crosses the wire as a plain JSON number.
		assert.Equal(t, 1234.5, body["ifood_amount"])
		assert.Equal(t, 50.0, body["ninety9_amount"])
		assert.Equal(t, 50.0, body["rent_fee"])
		assert.Equal(t, core.RuleRentAfterSplit, body["rule"])

		json.NewEncoder(w).Encode(core.Settlement{ID: 3, WeekEnd: "2024-01-03"})
	}))
	defer srv.Close()

	st, err := NewClient(srv.URL).CloseWeek(context.Background(), "tok", core.CloseWeekRequest{
		WeekEnd:       "2024-01-03",
		IfoodAmount:   "1234,50",
		Ninety9Amount: "50",
		RentFee:       "50",
		Rule:          core.RuleRentAfterSplit,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.ID)
}

func TestErrorDetailString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Credenciais inválidas"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Credenciais inválidas", err.Error())
}

func TestErrorDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"msg":"valor inválido"},{"msg":"segundo"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListSettlements(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, "valor inválido", err.Error())
}

func TestErrorFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListExpenses(context.Background(), "tok", core.ExpenseFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDownloadWeeklyReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/weekly.csv", r.URL.Path)
		assert.Equal(t, "2024-01-03", r.URL.Query().Get("week_end"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("week_end,total\n2024-01-03,100.00\n"))
	}))
	defer srv.Close()

	body, contentType, err := NewClient(srv.URL).DownloadWeeklyReport(context.Background(), "tok", "2024-01-03", "csv")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, "text/csv", contentType)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-03")
}

func TestDownloadRejectsUnknownFormat(t *testing.T) {
	c := NewClient("http://unused.invalid")
	_, _, err := c.DownloadWeeklyReport(context.Background(), "tok", "2024-01-03", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestDownloadErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Fechamento não encontrado"})
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL).DownloadWeeklyReport(context.Background(), "tok", "2024-01-03", "pdf")
	require.Error(t, err)
	assert.Equal(t, "Fechamento não encontrado", err.Error())
}
