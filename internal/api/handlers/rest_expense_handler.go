package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestExpenseHandler handles REST requests for expenses.
type RestExpenseHandler struct {
	store *store.Store
}

// NewRestExpenseHandler creates a new RestExpenseHandler.
func NewRestExpenseHandler(st *store.Store) *RestExpenseHandler {
	return &RestExpenseHandler{store: st}
}

// ListExpenses handles GET /v1/expense. An optional category filter narrows
// the result (e.g. ?category=supplies).
func (h *RestExpenseHandler) ListExpenses(c *gin.Context) {
	expenses := h.store.Expenses()
	if categoryStr := c.Query("category"); categoryStr != "" {
		category := models.ExpenseCategory(categoryStr)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense category filter"})
			return
		}
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}
	c.JSON(http.StatusOK, gin.H{"data": expenses})
}

// CreateExpense handles POST /v1/expense
func (h *RestExpenseHandler) CreateExpense(c *gin.Context) {
	var req models.Expense
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	expense, err := h.store.AddExpense(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// DeleteExpense handles DELETE /v1/expense/:id
func (h *RestExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense ID format"})
		return
	}
	if err := h.store.DeleteExpense(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
