package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lbocquet/tombola/internal/ingest"
	"github.com/lbocquet/tombola/internal/logging"
	"github.com/lbocquet/tombola/internal/store"
	"github.com/lbocquet/tombola/internal/ticket"
)

// minDateLayout is the date-only format accepted on import filters.
const minDateLayout = "2006-01-02"

// handleHealth returns service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, map[string]string{"status": "ok"})
}

// OrdersResponse partitions the order book for the dashboard: orders waiting
// for a ticket range and orders already holding one.
type OrdersResponse struct {
	Pending  []ticket.Order `json:"pending"`
	Assigned []ticket.Order `json:"assigned"`
	Summary  OrdersSummary  `json:"summary"`
}

// OrdersSummary aggregates counts across both partitions.
type OrdersSummary struct {
	PendingOrders   int `json:"pending_orders"`
	AssignedOrders  int `json:"assigned_orders"`
	TicketsAssigned int `json:"tickets_assigned"`
	NextStartID     int `json:"next_start_id"`
}

// handleListOrders returns pending and assigned orders plus summary counts.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := s.store.ListPending(ctx)
	if err != nil {
		s.respondError(w, r, err, "failed to load orders", http.StatusInternalServerError)
		return
	}
	assigned, err := s.store.ListAssigned(ctx)
	if err != nil {
		s.respondError(w, r, err, "failed to load orders", http.StatusInternalServerError)
		return
	}

	maxID, span, err := s.store.MaxAssignedIDAndSpan(ctx)
	if err != nil {
		s.respondError(w, r, err, "failed to load orders", http.StatusInternalServerError)
		return
	}

	ticketsAssigned := 0
	for _, o := range assigned {
		ticketsAssigned += o.NumTickets
	}

	if pending == nil {
		pending = []ticket.Order{}
	}
	if assigned == nil {
		assigned = []ticket.Order{}
	}

	s.respondJSON(w, r, OrdersResponse{
		Pending:  pending,
		Assigned: assigned,
		Summary: OrdersSummary{
			PendingOrders:   len(pending),
			AssignedOrders:  len(assigned),
			TicketsAssigned: ticketsAssigned,
			NextStartID:     ticket.NextStart(maxID, span, s.cfg.Tickets.StartingID),
		},
	})
}

// ImportResponse reports the outcome of one export upload.
type ImportResponse struct {
	ImportID  string `json:"import_id"`
	Schema    string `json:"schema"`
	HeaderRow int    `json:"header_row"`
	Parsed    int    `json:"parsed"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"` // already imported
}

// handleImport ingests an uploaded storefront export (xlsx or csv).
// Rows already present keep their stored values; re-uploading a file is safe.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	importID := uuid.New().String()
	logger := logging.WithFields(ctx, "import_id", importID)

	if err := s.imports.acquire(ctx); err != nil {
		s.respondError(w, r, err, "too many concurrent imports, retry shortly", http.StatusTooManyRequests)
		return
	}
	defer s.imports.release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		s.respondError(w, r, err, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, err, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var minDate time.Time
	if raw := r.FormValue("min_date"); raw != "" {
		minDate, err = time.Parse(minDateLayout, raw)
		if err != nil {
			s.respondError(w, r, err, "min_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, "failed to read upload", http.StatusBadRequest)
		return
	}

	result, err := ingest.ParseExport(data, s.cfg.Import.Article, minDate)
	if err != nil {
		s.respondError(w, r, err, "file is not a readable export", http.StatusUnprocessableEntity)
		return
	}

	inserted, err := s.store.InsertBatch(ctx, result.Orders)
	if err != nil {
		s.respondError(w, r, err, "failed to save orders", http.StatusInternalServerError)
		return
	}

	logger.Info("export imported",
		"filename", header.Filename,
		"schema", result.Kind.String(),
		"parsed", len(result.Orders),
		"inserted", inserted,
	)

	s.respondJSON(w, r, ImportResponse{
		ImportID:  importID,
		Schema:    result.Kind.String(),
		HeaderRow: result.HeaderRow,
		Parsed:    len(result.Orders),
		Inserted:  inserted,
		Skipped:   len(result.Orders) - inserted,
	})
}

// CreateOrderRequest is a manually entered order, for purchases made outside
// the storefront (cash sales at the desk).
type CreateOrderRequest struct {
	Name       string `json:"customer_name"`
	Email      string `json:"customer_email"`
	Date       string `json:"order_date,omitempty"`
	NumTickets int    `json:"ticket_count"`
	Firm       string `json:"firm,omitempty"`
	Note       string `json:"purchase_note,omitempty"`
}

// handleCreateOrder inserts one manually entered order.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		s.respondError(w, r, nil, "customer_name and customer_email are required", http.StatusBadRequest)
		return
	}
	if req.NumTickets < 1 {
		s.respondError(w, r, nil, "ticket_count must be at least 1", http.StatusBadRequest)
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(ticket.DateLayout)
	} else if _, err := time.Parse(ticket.DateLayout, date); err != nil {
		s.respondError(w, r, err, "order_date must be YYYY-MM-DD HH:MM:SS", http.StatusBadRequest)
		return
	}

	o := ticket.Order{
		Date:       date,
		Firm:       req.Firm,
		Name:       req.Name,
		Email:      req.Email,
		NumTickets: req.NumTickets,
		Note:       req.Note,
	}
	if !s.store.InsertOne(r.Context(), o) {
		s.respondError(w, r, nil, "order already exists for this name and date", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	s.respondJSON(w, r, o)
}

// orderKeyRequest identifies one order by its natural key.
type orderKeyRequest struct {
	Name string `json:"customer_name"`
	Date string `json:"order_date"`
}

func (s *Server) decodeOrderKey(w http.ResponseWriter, r *http.Request, req *orderKeyRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.respondError(w, r, err, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	if req.Name == "" || req.Date == "" {
		s.respondError(w, r, nil, "customer_name and order_date are required", http.StatusBadRequest)
		return false
	}
	return true
}

// SendResponse reports the ticket range delivered to a purchaser.
type SendResponse struct {
	Name       string `json:"customer_name"`
	StartID    int    `json:"start_id"`
	EndID      int    `json:"end_id"`
	NumTickets int    `json:"ticket_count"`
	Recipient  string `json:"recipient"`
}

// handleSend allocates the next ticket range for a pending order, emails the
// purchaser, and records the assignment. Delivery and assignment succeed or
// fail together.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req orderKeyRequest
	if !s.decodeOrderKey(w, r, &req) {
		return
	}
	ctx := r.Context()

	o, found, err := s.store.Find(ctx, req.Name, req.Date)
	if err != nil {
		s.respondError(w, r, err, "failed to load order", http.StatusInternalServerError)
		return
	}
	if !found {
		s.respondError(w, r, nil, "order not found", http.StatusNotFound)
		return
	}
	if o.Assigned() {
		s.respondError(w, r, nil, "order already has tickets assigned, use resend", http.StatusConflict)
		return
	}

	start, err := s.store.AllocateAndAssign(ctx, o, s.cfg.Tickets.StartingID, func(startID int) error {
		return s.notifier.SendTickets(ctx, o.Email, o.Name, o.NumTickets, startID)
	})
	if errors.Is(err, store.ErrAlreadyAssigned) {
		s.respondError(w, r, err, "order already has tickets assigned, use resend", http.StatusConflict)
		return
	}
	if err != nil {
		s.respondError(w, r, err, "failed to send tickets", http.StatusBadGateway)
		return
	}

	logging.FromContext(ctx).Info("tickets sent",
		"name", o.Name,
		"start_id", start,
		"end_id", start+o.NumTickets-1,
		"num_tickets", o.NumTickets,
	)

	s.respondJSON(w, r, SendResponse{
		Name:       o.Name,
		StartID:    start,
		EndID:      start + o.NumTickets - 1,
		NumTickets: o.NumTickets,
		Recipient:  o.Email,
	})
}

// handleResend re-delivers the email for an already assigned order, keeping
// its existing ticket range. Used when the first email bounced or was lost.
func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	var req orderKeyRequest
	if !s.decodeOrderKey(w, r, &req) {
		return
	}
	ctx := r.Context()

	o, found, err := s.store.Find(ctx, req.Name, req.Date)
	if err != nil {
		s.respondError(w, r, err, "failed to load order", http.StatusInternalServerError)
		return
	}
	if !found {
		s.respondError(w, r, nil, "order not found", http.StatusNotFound)
		return
	}
	if !o.Assigned() {
		s.respondError(w, r, nil, "order has no tickets yet, use send", http.StatusConflict)
		return
	}

	if err := s.notifier.SendTickets(ctx, o.Email, o.Name, o.NumTickets, *o.AssignedID); err != nil {
		s.respondError(w, r, err, "failed to resend tickets", http.StatusBadGateway)
		return
	}

	s.respondJSON(w, r, SendResponse{
		Name:       o.Name,
		StartID:    *o.AssignedID,
		EndID:      o.RangeEnd(),
		NumTickets: o.NumTickets,
		Recipient:  o.Email,
	})
}

// UpdateNoteRequest sets the purchase annotation on an order.
type UpdateNoteRequest struct {
	Name string `json:"customer_name"`
	Date string `json:"order_date"`
	Note string `json:"purchase_note"`
}

// handleUpdateNote stores the achat annotation for an order.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, err, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Date == "" {
		s.respondError(w, r, nil, "customer_name and order_date are required", http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateNote(r.Context(), req.Name, req.Date, req.Note); err != nil {
		s.respondError(w, r, err, "failed to update note", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, r, map[string]string{"status": "updated"})
}

// handleDelete removes a pending order. Orders that already hold a ticket
// range cannot be deleted: their numbers are part of the contiguous sequence.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req orderKeyRequest
	if !s.decodeOrderKey(w, r, &req) {
		return
	}
	ctx := r.Context()

	o, found, err := s.store.Find(ctx, req.Name, req.Date)
	if err != nil {
		s.respondError(w, r, err, "failed to load order", http.StatusInternalServerError)
		return
	}
	if !found {
		s.respondError(w, r, nil, "order not found", http.StatusNotFound)
		return
	}
	if o.Assigned() {
		s.respondError(w, r, nil, "cannot delete an order with assigned tickets", http.StatusConflict)
		return
	}

	if err := s.store.DeleteUnassigned(ctx, req.Name, req.Date); err != nil {
		s.respondError(w, r, err, "failed to delete order", http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, r, map[string]string{"status": "deleted"})
}

// handleExport streams the one-row-per-ticket workbook for printing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	assigned, err := s.store.ListAssigned(r.Context())
	if err != nil {
		s.respondError(w, r, err, "failed to load orders", http.StatusInternalServerError)
		return
	}

	wb, err := buildTicketWorkbook(ticket.ExpandTickets(assigned))
	if err != nil {
		s.respondError(w, r, err, "failed to build export", http.StatusInternalServerError)
		return
	}
	defer wb.Close()

	filename := fmt.Sprintf("tickets_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := wb.Write(w); err != nil {
		logging.FromContext(r.Context()).Error("export write error", "error", err)
	}
}
