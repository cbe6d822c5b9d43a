package exports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tinko-recovery-backend/internal/auth"
	"tinko-recovery-backend/platform/httpkit"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
	noOrgContextMsg = "no organization context"
)

// Handler serves CSV exports of an organization's payment data.
type Handler struct {
	repo  *Repository
	users auth.UserProvider
}

// NewHandler creates a new export handler.
func NewHandler(repo *Repository, users auth.UserProvider) *Handler {
	return &Handler{repo: repo, users: users}
}

// HandleExportTransactions streams the organization's transactions as CSV,
// optionally bounded by from/to query params (YYYY-MM-DD, to is exclusive).
func (h *Handler) HandleExportTransactions(c *gin.Context) {
	orgID, ok := h.resolveOrgID(c)
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := h.repo.ListTransactionRows(c.Request.Context(), orgID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	writer := startCSVResponse(c, "transactions.csv", []string{
		"Transaction Ref",
		"Amount",
		"Currency",
		"Customer Email",
		"Customer Phone",
		"Failure Category",
		"Last Failure Reason",
		"Failure Count",
		"Created At",
	})
	if writer == nil {
		return
	}

	for _, row := range rows {
		record := []string{
			row.TransactionRef,
			formatAmount(row.AmountCents),
			strDeref(row.Currency),
			strDeref(row.CustomerEmail),
			strDeref(row.CustomerPhone),
			strDeref(row.FailureCategory),
			strDeref(row.FailureReason),
			strconv.FormatInt(row.FailureCount, 10),
			row.CreatedAt.UTC().Format(timestampLayout),
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}

// HandleExportRecoveries streams the organization's recovery attempts as CSV.
func (h *Handler) HandleExportRecoveries(c *gin.Context) {
	orgID, ok := h.resolveOrgID(c)
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := h.repo.ListRecoveryRows(c.Request.Context(), orgID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}

	writer := startCSVResponse(c, "recoveries.csv", []string{
		"Transaction Ref",
		"Channel",
		"Status",
		"Retry Count",
		"Max Retries",
		"Created At",
		"Opened At",
		"Used At",
		"Expires At",
		"Next Retry At",
	})
	if writer == nil {
		return
	}

	for _, row := range rows {
		record := []string{
			row.TransactionRef,
			row.Channel,
			row.Status,
			strconv.Itoa(row.RetryCount),
			strconv.Itoa(row.MaxRetries),
			row.CreatedAt.UTC().Format(timestampLayout),
			formatTimePtr(row.OpenedAt),
			formatTimePtr(row.UsedAt),
			row.ExpiresAt.UTC().Format(timestampLayout),
			formatTimePtr(row.NextRetryAt),
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}

func (h *Handler) resolveOrgID(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, false
	}

	user, err := h.users.GetUserByID(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return uuid.Nil, false
	}
	if user.OrganizationID == nil {
		httpkit.Error(c, http.StatusForbidden, noOrgContextMsg, nil)
		return uuid.Nil, false
	}
	return *user.OrganizationID, true
}

func parseDateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD", nil)
			return nil, nil, false
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD", nil)
			return nil, nil, false
		}
		// Exclusive upper bound covering the whole "to" day.
		end := parsed.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, true
}

func startCSVResponse(c *gin.Context, filename string, headers []string) *csv.Writer {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(headers); err != nil {
		return nil
	}
	return writer
}

// formatAmount renders cents as a decimal string, empty when unknown.
func formatAmount(cents *int64) string {
	if cents == nil {
		return ""
	}
	value := *cents
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return fmt.Sprintf("%s%d.%02d", sign, value/100, value%100)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
