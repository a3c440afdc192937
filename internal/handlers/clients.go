package handlers

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/service"
)

type createClientRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Mobile string `json:"mobile"`
}

func (h HandlerSet) CreateClient(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)
	var req createClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clients.Create(c.Request.Context(), brandID, userID, service.CreateClientInput{
		Name:   req.Name,
		Type:   req.Type,
		Mobile: req.Mobile,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Client added successfully", gin.H{"data": newClientResponse(client)})
}

func (h HandlerSet) GetClients(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}

	list, err := h.ledger.ListClients(c.Request.Context(), brandID, c.Query("search"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]clientSummaryResponse, 0, len(list.Clients))
	for _, s := range list.Clients {
		data = append(data, newClientSummaryResponse(s))
	}

	message := "Get clients successfully"
	if len(data) == 0 {
		message = "No clients found"
		if list.Search != "" {
			message = "No clients found matching your search"
		}
	}
	respond(c, message, gin.H{
		"data":          data,
		"total":         len(data),
		"customerCount": list.Customers,
		"supplierCount": list.Suppliers,
	})
}

func (h HandlerSet) GetClient(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}

	summary, err := h.ledger.GetClient(c.Request.Context(), brandID, clientID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Get client successfully", gin.H{"data": newClientSummaryResponse(summary)})
}

func (h HandlerSet) EditClient(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	fields, avatar, err := editForm(c, "name", "mobile")
	if err != nil {
		_ = c.Error(err)
		return
	}

	client, changed, err := h.clients.Edit(c.Request.Context(), brandID, clientID, service.EditClientInput{
		Name:   fields["name"],
		Mobile: fields["mobile"],
		Avatar: avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !changed {
		respond(c, "No changes detected. Client data is already up to date", gin.H{"data": newClientResponse(client)})
		return
	}

	respond(c, "Client updated successfully", gin.H{"data": newClientResponse(client)})
}

func (h HandlerSet) DeleteClient(c *gin.Context) {
	brandID, ok := h.tenant(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clients.Delete(c.Request.Context(), brandID, clientID); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, "Client removed successfully", nil)
}
