package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func authedStore(t *testing.T) (*Store, string) {
	t.Helper()
	s := New("rafael@delivery.com", "segredo")
	token, err := s.Login(context.Background(), "rafael@delivery.com", "segredo")
	require.NoError(t, err)
	return s, token
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	s := New("rafael@delivery.com", "segredo")
	_, err := s.Login(context.Background(), "rafael@delivery.com", "errada")
	require.Error(t, err)
	assert.Equal(t, "Credenciais inválidas", err.Error())
}

func TestOperationsRequireToken(t *testing.T) {
	s := New("rafael@delivery.com", "segredo")
	ctx := context.Background()

	_, err := s.ListExpenses(ctx, "bogus", core.ExpenseFilter{})
	require.Error(t, err)
	assert.Equal(t, "Não autenticado", err.Error())

	_, _, err = s.DownloadWeeklyReport(ctx, "bogus", "2024-01-03", "csv")
	require.Error(t, err)
}

func TestCreateExpenseCanonicalizesAmount(t *testing.T) {
	s, token := authedStore(t)

	created, err := s.CreateExpense(context.Background(), token, core.NewExpense{
		Amount:      "12,5",
		Date:        "2024-01-02",
		PartnerName: core.PartnerGuilherme,
		ReceiptName: "nota.jpg",
		Receipt:     strings.NewReader("img"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12.50", created.Amount)
	assert.NotEmpty(t, created.ReceiptURL)
	assert.Equal(t, int64(1), created.ID)
}

func TestListExpensesFiltersAndSorts(t *testing.T) {
	s, token := authedStore(t)
	s.SeedExpense(core.Expense{Date: "2024-01-01", Amount: "10.00", PartnerName: core.PartnerRafael})
	s.SeedExpense(core.Expense{Date: "2024-01-03", Amount: "20.00", PartnerName: core.PartnerGuilherme})
	s.SeedExpense(core.Expense{Date: "2024-01-05", Amount: "30.00", PartnerName: core.PartnerRafael})

	ctx := context.Background()

	all, err := s.ListExpenses(ctx, token, core.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-05", all[0].Date)

	ranged, err := s.ListExpenses(ctx, token, core.ExpenseFilter{Start: "2024-01-02", End: "2024-01-04"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "20.00", ranged[0].Amount)

	byPartner, err := s.ListExpenses(ctx, token, core.ExpenseFilter{PartnerName: core.PartnerRafael})
	require.NoError(t, err)
	assert.Len(t, byPartner, 2)
}

func TestCloseWeekRentBeforeSplit(t *testing.T) {
	s, token := authedStore(t)

	st, err := s.CloseWeek(context.Background(), token, core.CloseWeekRequest{
		WeekEnd:       "2024-01-03",
		IfoodAmount:   "100",
		Ninety9Amount: "50",
		RentFee:       "50",
		Rule:          core.RuleRentBeforeSplit,
	})
	require.NoError(t, err)

	assert.Equal(t, "2023-12-28", st.WeekStart)
	assert.Equal(t, "150.00", st.IncomeTotal)
	assert.Equal(t, "100.00", st.NetForSplit)
	assert.Equal(t, "50.00", st.ShareRafael)
	assert.Equal(t, "50.00", st.ShareGuilherme)
	assert.Equal(t, "50.00", st.RentFee)
}

func TestCloseWeekRentAfterSplit(t *testing.T) {
	s, token := authedStore(t)

	st, err := s.CloseWeek(context.Background(), token, core.CloseWeekRequest{
		WeekEnd:       "2024-01-03",
		IfoodAmount:   "100",
		Ninety9Amount: "50",
		RentFee:       "50",
		Rule:          core.RuleRentAfterSplit,
	})
	require.NoError(t, err)

	assert.Equal(t, "150.00", st.NetForSplit)
	assert.Equal(t, "50.00", st.ShareRafael)
	assert.Equal(t, "50.00", st.ShareGuilherme)
}

func TestCloseWeekValidates(t *testing.T) {
	s, token := authedStore(t)

	_, err := s.CloseWeek(context.Background(), token, core.CloseWeekRequest{
		WeekEnd:       "2024-01-04",
		IfoodAmount:   "100",
		Ninety9Amount: "0",
		RentFee:       "50",
		Rule:          core.RuleRentBeforeSplit,
	})
	require.Error(t, err)
}

func TestDownloadWeeklyReportCSV(t *testing.T) {
	s, token := authedStore(t)
	s.SeedSettlement(core.Settlement{
		WeekStart:   "2023-12-28",
		WeekEnd:     "2024-01-03",
		IncomeTotal: "150.00",
		RentFee:     "50.00",
		NetForSplit: "100.00",
	})

	body, contentType, err := s.DownloadWeeklyReport(context.Background(), token, "2024-01-03", "csv")
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, "text/csv", contentType)

	var sb strings.Builder
	_, err = io.Copy(&sb, body)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "2024-01-03")
	assert.Contains(t, sb.String(), "150.00")
}

func TestDownloadWeeklyReportUnknownWeek(t *testing.T) {
	s, token := authedStore(t)
	_, _, err := s.DownloadWeeklyReport(context.Background(), token, "2024-01-03", "pdf")
	require.Error(t, err)
	assert.Equal(t, "Fechamento não encontrado", err.Error())
}
