package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/invoicehub/backend/internal/auth"
	"github.com/invoicehub/backend/internal/user"
)

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required,min=2"`
	Surnames string  `json:"surnames" validate:"required,min=2"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=6"`
	Country  *string `json:"country,omitempty" validate:"omitempty,min=2"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Surnames  string    `json:"surnames"`
	Phone     *string   `json:"phone"`
	Country   *string   `json:"country"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListMeta struct {
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

type ListUsersResponse struct {
	Meta ListMeta       `json:"meta"`
	Data []UserResponse `json:"data"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Surnames:  u.Surnames,
		Phone:     u.Phone,
		Country:   u.Country,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserHandler struct {
	service  user.Service
	guard    *auth.Guard
	validate *validator.Validate
}

func NewUserHandler(service user.Service, guard *auth.Guard) *UserHandler {
	return &UserHandler{
		service:  service,
		guard:    guard,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth)
		r.Get("/api/users", h.handleListUsers)
		r.Get("/api/users/{id}", h.handleGetUser)
		r.Put("/api/users/{id}", h.handleUpdateUser)
		r.Get("/api/users/{id}/contacts", h.handleListContacts)
		r.Get("/api/users/{id}/contacts/{contactID}", h.handleGetContact)
		r.Get("/api/users/{id}/invoices", h.handleListInvoices)
	})
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	pagination := normalizePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	users, total, err := h.service.ListUsers(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list users")
		return
	}

	data := make([]UserResponse, 0, len(users))
	for i := range users {
		data = append(data, newUserResponse(&users[i]))
	}

	totalPages := total / int64(pagination.Limit)
	if total%int64(pagination.Limit) != 0 {
		totalPages++
	}

	meta := ListMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       pagination.Page,
		Limit:      pagination.Limit,
	}
	if int64(pagination.Page) < totalPages {
		next := pagination.Page + 1
		meta.NextPage = &next
	}
	if pagination.Page > 1 {
		prev := pagination.Page - 1
		meta.PrevPage = &prev
	}

	respondWithJSON(w, http.StatusOK, ListUsersResponse{Meta: meta, Data: data})
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.sameUserTarget(w, r)
	if !ok {
		return
	}

	foundUser, err := h.service.GetUser(r.Context(), targetID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", targetID).Msg("Failed to get user via service")
		respondWithError(w, mapErrorToStatusCode(err), "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(foundUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.sameUserTarget(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode update request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), targetID, user.UpdateProfile{
		Email:    requestPayload.Email,
		Name:     requestPayload.Name,
		Surnames: requestPayload.Surnames,
		Phone:    requestPayload.Phone,
		Country:  requestPayload.Country,
		Image:    requestPayload.Image,
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", targetID).Msg("Failed to update user via service")

		clientMessage := "Failed to update user"
		switch mapErrorToStatusCode(err) {
		case http.StatusNotFound:
			clientMessage = "User not found"
		case http.StatusConflict:
			clientMessage = "Email already exists"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(updated))
}

// handleListContacts is scoped to the session user: the contacts returned are
// always the caller's own, whatever id the path carries. The response is a
// bare array, unlike the paginated users envelope.
func (h *UserHandler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contacts, err := h.service.ListContacts(r.Context(), session.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", session.UserID).Msg("Failed to list contacts via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list contacts")
		return
	}

	data := make([]UserResponse, 0, len(contacts))
	for i := range contacts {
		data = append(data, newUserResponse(&contacts[i]))
	}

	respondWithJSON(w, http.StatusOK, data)
}

func (h *UserHandler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contactID, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contact id parameter")
		return
	}

	// Absent users and users outside the caller's contact list produce the
	// same 404.
	contact, err := h.service.GetContact(r.Context(), session.UserID, contactID)
	if err != nil {
		log.Error().Err(err).Int64("contact_id", contactID).Msg("Failed to get contact via service")
		respondWithError(w, mapErrorToStatusCode(err), "Contact not found")
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(contact))
}

func (h *UserHandler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.sameUserTarget(w, r)
	if !ok {
		return
	}

	invoices, err := h.service.ListInvoices(r.Context(), targetID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", targetID).Msg("Failed to list invoices via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list invoices")
		return
	}

	respondWithJSON(w, http.StatusOK, invoices)
}

// sameUserTarget parses the path id and applies the same-user rule. It writes
// the error response itself and reports ok=false when the request must stop.
func (h *UserHandler) sameUserTarget(w http.ResponseWriter, r *http.Request) (*auth.Session, int64, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, 0, false
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return nil, 0, false
	}

	if err := h.guard.RequireSameUser(session, targetID); err != nil {
		log.Warn().Int64("session_user_id", session.UserID).Int64("target_id", targetID).Msg("Cross-user access rejected")
		respondWithError(w, mapErrorToStatusCode(err), "Forbidden")
		return nil, 0, false
	}

	return session, targetID, true
}
