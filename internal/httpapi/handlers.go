package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
)

const (
	defaultTopN = 5
	maxTopN     = 50
)

type messageRequest struct {
	Text string `json:"text"`
}

type askRequest struct {
	Question string `json:"question"`
}

// bindJSON decodes the body and answers 400 itself when it cannot.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		writeError(c, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(c *gin.Context) {
	if !a.loginLimiter.Allow(clientKey(c.Request)) {
		writeError(c, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(c, http.StatusUnauthorized, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) handleMessage(c *gin.Context) {
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := a.service.Submit(c.Request.Context(), req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	a.metrics.messageCount.WithLabelValues(string(result.Intent)).Inc()
	status := http.StatusCreated
	if result.Intent == domain.IntentQuery {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (a *API) handleListSales(c *gin.Context) {
	sales, err := a.service.ListSales(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (a *API) handleRecordSale(c *gin.Context) {
	var req domain.SaleRequest
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := a.service.RecordSale(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (a *API) handleListInventory(c *gin.Context) {
	items, err := a.service.ListInventory(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

func (a *API) handleAddInventory(c *gin.Context) {
	var req domain.InventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	change, err := a.service.AddInventory(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if change.Created {
		status = http.StatusCreated
	}
	c.JSON(status, change)
}

func (a *API) handleLowStock(c *gin.Context) {
	var threshold decimal.NullDecimal
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			writeError(c, http.StatusBadRequest, errors.New("threshold must be a non-negative number"))
			return
		}
		threshold = decimal.NewNullDecimal(d)
	}
	items, err := a.service.LowStock(c.Request.Context(), threshold)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"low_stock": items})
}

func (a *API) handleListExpenses(c *gin.Context) {
	expenses, err := a.service.ListExpenses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (a *API) handleRecordExpense(c *gin.Context) {
	var req domain.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := a.service.RecordExpense(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (a *API) handleSuggestCategory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"category":        a.service.SuggestCategory(c.Query("description")),
		"categories":      domain.ExpenseCategories,
		"payment_methods": domain.PaymentMethods,
	})
}

func (a *API) handleListCustomers(c *gin.Context) {
	customers, err := a.service.ListCustomers(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (a *API) handleSaveCustomer(c *gin.Context) {
	var req domain.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, created, err := a.service.SaveCustomer(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"customer": rec, "created": created})
}

func (a *API) handleDashboard(c *gin.Context) {
	dash, err := a.service.Dashboard(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (a *API) handleStatement(c *gin.Context) {
	st, err := a.service.Statement(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (a *API) handleTopItems(c *gin.Context) {
	items, err := a.service.TopItems(c.Request.Context(), parsePositiveLimit(c.Query("limit"), defaultTopN, maxTopN))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (a *API) handleTopCustomers(c *gin.Context) {
	customers, err := a.service.TopCustomers(c.Request.Context(), parsePositiveLimit(c.Query("limit"), defaultTopN, maxTopN))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (a *API) handleDailySales(c *gin.Context) {
	days, err := a.service.DailySales(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (a *API) handleExport(c *gin.Context) {
	table, err := store.ParseTable(c.Param("table"))
	if err != nil {
		writeError(c, http.StatusBadRequest, fmt.Errorf("unknown table %q", c.Param("table")))
		return
	}
	export, err := a.service.Export(c.Request.Context(), table, c.Query("format"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Body)
}

func (a *API) handleAdvice(c *gin.Context) {
	advice, err := a.service.Advice(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

func (a *API) handleAsk(c *gin.Context) {
	var req askRequest
	if !bindJSON(c, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(c, http.StatusBadRequest, domain.NewValidationError("Question is required"))
		return
	}
	answer, err := a.service.Insight(c.Request.Context(), question)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
