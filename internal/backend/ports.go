// Package backend defines the ports this front-end uses to talk to the
// settlement backend. The REST adapter in backend/rest is the production
// implementation; backend/memory is a fake for tests and offline work.
package backend

import (
	"context"
	"io"

	"gastos/internal/core"
)

// Report formats accepted by the weekly download endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Ports for the outbound backend adapter. Every authenticated call takes
// the bearer token explicitly; the session layer owns where it comes from.
type (
	Authenticator interface {
		// Login exchanges credentials for a bearer token.
		Login(ctx context.Context, email, password string) (token string, err error)
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context, token string, filter core.ExpenseFilter) ([]core.Expense, error)
	}

	ExpenseCreator interface {
		// CreateExpense uploads the form and receipt as multipart data and
		// returns the stored record.
		CreateExpense(ctx context.Context, token string, e core.NewExpense) (core.Expense, error)
	}

	WeekCloser interface {
		CloseWeek(ctx context.Context, token string, req core.CloseWeekRequest) (core.Settlement, error)
	}

	SettlementReader interface {
		GetSettlement(ctx context.Context, token string, id int64) (core.Settlement, error)
	}

	SettlementLister interface {
		ListSettlements(ctx context.Context, token string) ([]core.Settlement, error)
	}

	// ReportDownloader streams a weekly report. The caller must close the
	// returned body as soon as it has been copied out.
	ReportDownloader interface {
		DownloadWeeklyReport(ctx context.Context, token, weekEnd, format string) (body io.ReadCloser, contentType string, err error)
	}
)

// Service bundles every port for wiring the HTTP layer.
type Service interface {
	Authenticator
	ExpenseLister
	ExpenseCreator
	WeekCloser
	SettlementReader
	SettlementLister
	ReportDownloader
}
