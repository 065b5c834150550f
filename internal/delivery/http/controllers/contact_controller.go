package controllers

import (
	"log/slog"
	"net/http"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{Logger: logger, Service: svc}
}

// AddContactRequest is the request body for POST /events/{eventID}/contacts.
type AddContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Channel   string `json:"invitation_channel"`
}

// Validate implements Validator. Identifier and channel rules live in the
// service, which also validates imported rows; only shape is checked here.
func (a AddContactRequest) Validate() []string {
	var errs []string
	if a.Email == "" && a.Phone == "" {
		errs = append(errs, "email or phone is required")
	}
	if a.Email != "" && !emailRegex.MatchString(a.Email) {
		errs = append(errs, "email format is invalid")
	}
	return errs
}

func (a AddContactRequest) toRow() domain.ContactImportRow {
	return domain.ContactImportRow{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Channel:   domain.InvitationChannel(a.Channel),
	}
}

// ContactSuccessResponse is the success envelope for endpoints returning one contact.
type ContactSuccessResponse struct {
	Data  *domain.Contact   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AddContact godoc
// @Summary Add a contact to the guest list
// @Description Rejects duplicates by email (case-insensitive) or phone within the event.
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param contact body AddContactRequest true "Contact data"
// @Success 201 {object} controllers.ContactSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate)"
// @Router /events/{eventID}/contacts [post]
func (c *ContactController) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	contact, err := c.Service.AddContact(r.Context(), r.PathValue("eventID"), userID, req.toRow())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, contact)
}

// ImportContactsRequest is the request body for POST /events/{eventID}/contacts/import.
// Rows are already parsed client-side; this endpoint does not accept CSV.
type ImportContactsRequest struct {
	Rows []AddContactRequest `json:"rows"`
}

// Validate implements Validator.
func (i ImportContactsRequest) Validate() []string {
	if len(i.Rows) == 0 {
		return []string{"rows must not be empty"}
	}
	return nil
}

// ImportContactsSuccessResponse is the success envelope for the import endpoint (200).
type ImportContactsSuccessResponse struct {
	Data  *domain.ContactImportResult `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ImportContacts godoc
// @Summary Bulk-import contacts
// @Description Imports rows one by one; invalid or duplicate rows are skipped and reported, never failing the batch.
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body ImportContactsRequest true "Parsed rows"
// @Success 200 {object} controllers.ImportContactsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/{eventID}/contacts/import [post]
func (c *ContactController) ImportContacts(w http.ResponseWriter, r *http.Request) {
	var req ImportContactsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	rows := make([]domain.ContactImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, row.toRow())
	}
	result, err := c.Service.ImportContacts(r.Context(), r.PathValue("eventID"), userID, rows)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListContactsResponse is the data payload for GET /events/{eventID}/contacts.
type ListContactsResponse struct {
	Contacts   []*domain.Contact      `json:"contacts"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListContactsSuccessResponse is the success envelope for GET /events/{eventID}/contacts (200).
type ListContactsSuccessResponse struct {
	Data  ListContactsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListContacts godoc
// @Summary List the event's contacts
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param search query string false "Filter over name, email and phone"
// @Param only_uninvited query bool false "Only contacts never invited"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListContactsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts [get]
func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	search := r.URL.Query().Get("search")
	onlyUninvited := r.URL.Query().Get("only_uninvited") == "true"
	contacts, total, err := c.Service.ListContacts(r.Context(), r.PathValue("eventID"), userID, search, onlyUninvited, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListContactsResponse{
		Contacts:   contacts,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// DeleteContact godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param contactID path string true "Contact ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/contacts/{contactID} [delete]
func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteContact(r.Context(), r.PathValue("eventID"), r.PathValue("contactID"), userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
