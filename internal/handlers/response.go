package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockify/internal/apperr"
	"stockify/internal/middleware"
	"stockify/internal/models"
	"stockify/internal/service"
	"stockify/internal/validate"
)

// respond writes the success envelope; extra keys sit next to message.
func respond(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		_ = c.Error(apperr.Unauthorized("Access token is required"))
		return 0, false
	}
	return claims.UserID, true
}

// tenant resolves the brand of the authenticated user.
func (h HandlerSet) tenant(c *gin.Context) (int64, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return 0, false
	}
	brandID, err := h.brands.TenantOf(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return 0, false
	}
	return brandID, true
}

func pathID(c *gin.Context, name, title string) (int64, bool) {
	id, err := validate.ID(c.Param(name), title)
	if err != nil {
		_ = c.Error(err)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

// editForm reads optional text fields and the "avatar" file from a
// multipart or urlencoded body, or text fields from a JSON object.
func editForm(c *gin.Context, fields ...string) (map[string]*string, *multipart.FileHeader, error) {
	values := make(map[string]*string, len(fields))
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]*string
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, apperr.Validation("Invalid request body")
		}
		for _, f := range fields {
			values[f] = body[f]
		}
		return values, nil, nil
	}

	for _, f := range fields {
		if v, ok := c.GetPostForm(f); ok {
			values[f] = &v
		}
	}
	file, err := c.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return values, nil, nil
		}
		return nil, nil, apperr.Validation("Invalid avatar upload")
	}
	return values, file, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// amountField accepts a JSON number or a numeric string.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

type userResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile"`
	Role         string     `json:"role"`
	ActiveStatus string     `json:"active_status"`
	BannedUser   bool       `json:"banned_user"`
	BrandID      *int64     `json:"brand_id"`
	Avatar       *string    `json:"avatar"`
	DeviceCount  int        `json:"device_count"`
	LastLoginAt  *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		Role:         string(u.Role),
		ActiveStatus: string(u.ActiveStatus),
		BannedUser:   u.Banned,
		BrandID:      u.BrandID,
		Avatar:       u.AvatarURL,
		DeviceCount:  u.DeviceCount,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}

type brandResponse struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	AltMobile  *string   `json:"alt_mobile"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode *string   `json:"postal_code"`
	Logo       *string   `json:"logo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newBrandResponse(b models.Brand) brandResponse {
	return brandResponse{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		Name:       b.Name,
		Mobile:     b.Mobile,
		AltMobile:  b.AltMobile,
		Address:    b.Address,
		City:       b.City,
		PostalCode: b.PostalCode,
		Logo:       b.LogoURL,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type clientResponse struct {
	ID        int64      `json:"id"`
	BrandID   int64      `json:"brand_id"`
	CreatedBy int64      `json:"created_by"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Mobile    *string    `json:"mobile"`
	Avatar    *string    `json:"avatar"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func newClientResponse(c models.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		BrandID:   c.BrandID,
		CreatedBy: c.CreatedBy,
		Name:      c.Name,
		Type:      string(c.Type),
		Mobile:    c.Mobile,
		Avatar:    c.AvatarURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type clientSummaryResponse struct {
	clientResponse
	DebitSum  string `json:"debitSum"`
	CreditSum string `json:"creditSum"`
	Balance   string `json:"balance"`
}

func newClientSummaryResponse(s models.ClientSummary) clientSummaryResponse {
	return clientSummaryResponse{
		clientResponse: newClientResponse(s.Client),
		DebitSum:       money(s.DebitSum),
		CreditSum:      money(s.CreditSum),
		Balance:        money(s.Balance.Balance),
	}
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	CreatedDate string    `json:"created_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		Amount:      money(t.Amount),
		Type:        string(t.Type),
		Description: t.Description,
		CreatedDate: t.CreatedDate.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt,
	}
}

type sessionResponse struct {
	ID           string    `json:"id"`
	DeviceName   string    `json:"device_name"`
	DeviceType   string    `json:"device_type"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	IPAddress    string    `json:"ip_address"`
	LastActiveAt time.Time `json:"last_active"`
	CreatedAt    time.Time `json:"created_at"`
	Current      bool      `json:"current"`
}

func newSessionResponse(s models.Session, currentID string) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		DeviceName:   s.DeviceName,
		DeviceType:   s.DeviceType,
		Browser:      s.Browser,
		OS:           s.OS,
		IPAddress:    s.IPAddress,
		LastActiveAt: s.LastActiveAt,
		CreatedAt:    s.CreatedAt,
		Current:      s.ID == currentID,
	}
}

// paginationBody renders p with the total under totalKey, e.g.
// "totalTransactions".
func paginationBody(p service.Pagination, totalKey string) gin.H {
	return gin.H{
		"currentPage": p.CurrentPage,
		"totalPages":  p.TotalPages,
		totalKey:      p.Total,
		"limit":       p.Limit,
		"hasNextPage": p.HasNextPage,
		"hasPrevPage": p.HasPrevPage,
	}
}

func (h HandlerSet) NotFound(c *gin.Context) {
	_ = c.Error(apperr.NotFound("Route not found!"))
}
