package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/service"
)

type transactionRequest struct {
	Amount      amountField `json:"amount"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	CreatedDate string      `json:"created_date"`
}

func (h HandlerSet) AddTransaction(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	var req transactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.ledger.AddTransaction(c.Request.Context(), brandID, clientID, service.TransactionInput{
		Amount:      string(req.Amount),
		Type:        req.Type,
		Description: req.Description,
		CreatedDate: req.CreatedDate,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Add transaction successfully", gin.H{"data": newTransactionResponse(tx)})
}

func (h HandlerSet) GetTransactions(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}

	page, err := h.ledger.ListTransactions(c.Request.Context(), brandID, clientID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]transactionResponse, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		data = append(data, newTransactionResponse(tx))
	}

	message := "Get transactions successfully"
	if len(data) == 0 {
		message = "No transactions found for this client"
	}
	respond(c, message, gin.H{
		"data":       data,
		"pagination": paginationBody(page.Pagination, "totalTransactions"),
	})
}

func (h HandlerSet) GetTransaction(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "transactionId", "transaction")
	if !ok {
		return
	}

	tx, err := h.ledger.GetTransaction(c.Request.Context(), brandID, transactionID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Get transaction successfully", gin.H{"data": newTransactionResponse(tx)})
}

func (h HandlerSet) DeleteTransaction(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransaction(c.Request.Context(), brandID, transactionID); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Transaction remove successfully", nil)
}
