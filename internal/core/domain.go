package core

import (
	"errors"
	"io"
	"strings"
	"time"
)

// The business has exactly two partners. Every expense and settlement
// references one of these two names, verbatim as the backend stores them.
const (
	PartnerRafael    = "Rafael"
	PartnerGuilherme = "Guilherme"
)

// Split rules accepted by the close-week endpoint. The arithmetic behind
// them lives server-side; this layer only transports the choice.
const (
	RuleRentBeforeSplit = "rent_before_split"
	RuleRentAfterSplit  = "rent_after_split"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidPartner = errors.New("invalid partner name")
	ErrInvalidRule    = errors.New("invalid split rule")
	ErrMissingReceipt = errors.New("missing receipt file")
	ErrNotWednesday   = errors.New("week end must be a Wednesday")
)

type (
	// Expense mirrors the backend record. Monetary amounts travel as
	// decimal strings, never as floats.
	Expense struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		PartnerName string `json:"partner_name"`
		Platform    string `json:"platform,omitempty"`
		Category    string `json:"category,omitempty"`
		Note        string `json:"note,omitempty"`
		ReceiptURL  string `json:"receipt_url,omitempty"`
		CreatedAt   string `json:"created_at"`
	}

	// Settlement is the computed weekly summary returned by the backend.
	// Read-only from this layer's perspective.
	Settlement struct {
		ID             int64  `json:"id"`
		PayoutID       int64  `json:"payout_id"`
		CreatedAt      string `json:"created_at"`
		WeekStart      string `json:"week_start"`
		WeekEnd        string `json:"week_end"`
		ReimbRafael    string `json:"reimb_rafael"`
		ReimbGuilherme string `json:"reimb_guilherme"`
		NetForSplit    string `json:"net_for_split"`
		ShareRafael    string `json:"share_rafael"`
		ShareGuilherme string `json:"share_guilherme"`
		TotalRafael    string `json:"total_rafael"`
		TotalGuilherme string `json:"total_guilherme"`
		RentFee        string `json:"rent_fee"`
		IncomeTotal    string `json:"income_total"`
	}

	// ExpenseFilter narrows the expense listing. Empty fields are omitted
	// from the request.
	ExpenseFilter struct {
		Start       string
		End         string
		PartnerName string
	}

	// NewExpense carries the creation form, including the receipt stream
	// for the multipart upload.
	NewExpense struct {
		Amount      string
		Date        string
		PartnerName string
		Platform    string
		Category    string
		Note        string
		ReceiptName string
		Receipt     io.Reader
	}

	// CloseWeekRequest carries the week-closing form. Amounts are decimal
	// strings exactly as typed by the user.
	CloseWeekRequest struct {
		WeekEnd       string
		IfoodAmount   string
		Ninety9Amount string
		RentFee       string
		Rule          string
	}
)

// ValidPartner reports whether name is one of the two fixed partners.
func ValidPartner(name string) bool {
	return name == PartnerRafael || name == PartnerGuilherme
}

// Validate enforces the submission gate: amount, date and receipt are
// required; platform, category and note never block.
func (e NewExpense) Validate() error {
	if cents, err := ParseDecimalCents(e.Amount); err != nil || cents <= 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return ErrInvalidDate
	}
	if !ValidPartner(e.PartnerName) {
		return ErrInvalidPartner
	}
	if e.Receipt == nil {
		return ErrMissingReceipt
	}
	return nil
}

func (r CloseWeekRequest) Validate() error {
	day, err := time.Parse("2006-01-02", r.WeekEnd)
	if err != nil {
		return ErrInvalidDate
	}
	if day.Weekday() != time.Wednesday {
		return ErrNotWednesday
	}
	for _, amount := range []string{r.IfoodAmount, r.Ninety9Amount, r.RentFee} {
		cents, err := ParseDecimalCents(amount)
		if err != nil || cents < 0 {
			return ErrInvalidAmount
		}
	}
	switch r.Rule {
	case RuleRentBeforeSplit, RuleRentAfterSplit:
	default:
		return ErrInvalidRule
	}
	return nil
}

// FirstNonEmpty returns the first non-blank value, used for form defaults.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
