package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/auth"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/billing"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/export"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/invoice"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/middleware"
	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type itemRowRequest struct {
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

type billRequest struct {
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []itemRowRequest `json:"items"`
}

type billResponse struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	TotalAmount   string `json:"total_amount"`
	CreatedAt     int64  `json:"created_at"`
}

type itemResponse struct {
	ID        string `json:"id"`
	ItemName  string `json:"item_name"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	ItemTotal string `json:"item_total"`
}

type errorResponse struct {
	Error string `json:"error"`
	Item  int    `json:"item,omitempty"` // 1-based offending row for validation errors
}

func toBillResponse(b models.Bill) billResponse {
	return billResponse{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		TotalAmount:   b.TotalAmount.StringFixed(2),
		CreatedAt:     b.CreatedAt,
	}
}

func toBillResponses(bills []models.Bill) []billResponse {
	out := make([]billResponse, len(bills))
	for i, b := range bills {
		out[i] = toBillResponse(b)
	}
	return out
}

func toItemResponse(it models.Item) itemResponse {
	return itemResponse{
		ID:        it.ID,
		ItemName:  it.ItemName,
		Quantity:  it.Quantity.String(),
		Price:     it.Price.StringFixed(2),
		ItemTotal: it.ItemTotal.StringFixed(2),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Backend failures come
// back as a generic retry prompt; the details stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *invoice.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error(), Item: validationErr.Row})
		return
	}

	switch {
	case errors.Is(err, billing.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "bill not found"})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "something went wrong, please try again"})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	// No token on purpose: registration drops the fresh session so the
	// client lands on the login flow.
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userResponse{
		ID:    middleware.GetUserID(r.Context()),
		Email: middleware.GetEmail(r.Context()),
	})
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := s.repo.StreamBillsForOwner(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	bills := <-sub.C
	sub.Close()

	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	in, err := draftFromRequest(req).Finalize()
	if err != nil {
		writeError(w, err)
		return
	}

	billID, err := s.repo.CreateBill(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"bill_id": billID})
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bill, err := s.repo.GetBill(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(*bill))
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	in, err := draftFromRequest(req).Finalize()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.repo.UpdateBill(r.Context(), userID, r.PathValue("id"), in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.repo.DeleteBill(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := s.repo.ListItems(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = toItemResponse(it)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	billID := r.PathValue("id")

	bill, err := s.repo.GetBill(r.Context(), userID, billID)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.repo.ListItems(r.Context(), userID, billID)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.WriteHTML(&buf, export.Document{Bill: *bill, Items: items}); err != nil {
		writeError(w, &export.ExportError{Stage: "render", Err: err})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func draftFromRequest(req billRequest) *invoice.Draft {
	rows := make([]invoice.Row, len(req.Items))
	for i, it := range req.Items {
		rows[i] = invoice.Row{ItemName: it.ItemName, Quantity: it.Quantity, Price: it.Price}
	}
	return invoice.FromForm(req.CustomerName, req.CustomerPhone, rows)
}
