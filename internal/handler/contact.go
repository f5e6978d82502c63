package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/webfusionlab/webfusion/internal/mailer"
	"github.com/webfusionlab/webfusion/internal/model"
)

// ContactMailer delivers the contact form emails.
type ContactMailer interface {
	SendContact(ctx context.Context, c mailer.ContactDetails) (string, error)
	SendReply(ctx context.Context, r mailer.ReplyDetails) (string, error)
}

// ContactHandler serves the /api/contact routes.
type ContactHandler struct {
	mail   ContactMailer
	logger *slog.Logger
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(mail ContactMailer, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{mail: mail, logger: logger}
}

func (h *ContactHandler) Routes(r chi.Router) {
	r.Post("/send", h.Send)
	r.Post("/reply", h.Reply)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

const (
	msgContactRequired = `Os campos "name", "email", "subject" e "message" são obrigatórios`
	msgReplyRequired   = `Os campos "email", "subject" e "message" são obrigatórios`
	msgInvalidEmail    = "Email inválido"
)

// Send accepts a contact form submission. The operator is notified first;
// the submitter's confirmation is best effort.
// POST /api/contact/send
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		writeContactError(w, http.StatusBadRequest, msgContactRequired)
		return
	}

	details := mailer.ContactDetails{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if details.Name == "" || details.Email == "" || details.Subject == "" || details.Message == "" {
		writeContactError(w, http.StatusBadRequest, msgContactRequired)
		return
	}
	if !validEmail(details.Email) {
		writeContactError(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	id, err := h.mail.SendContact(r.Context(), details)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "contact submission failed",
			"notification_failed", errors.Is(err, mailer.ErrNotificationFailed), "error", err)
		writeContactError(w, http.StatusInternalServerError, "Erro ao processar o contacto")
		return
	}

	h.logger.InfoContext(r.Context(), "contact received", "message_id", id)
	writeJSON(w, http.StatusOK, model.ContactResponse{
		Success: true,
		Message: "Contacto recebido com sucesso. Receberá uma confirmação no seu email.",
	})
}

type replyRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Reply sends a manual answer to a previous contact.
// POST /api/contact/reply
func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := readJSON(w, r, &req); err != nil {
		writeContactError(w, http.StatusBadRequest, msgReplyRequired)
		return
	}

	details := mailer.ReplyDetails{
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if details.Email == "" || details.Subject == "" || details.Message == "" {
		writeContactError(w, http.StatusBadRequest, msgReplyRequired)
		return
	}
	if !validEmail(details.Email) {
		writeContactError(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	id, err := h.mail.SendReply(r.Context(), details)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "contact reply failed", "error", err)
		writeContactError(w, http.StatusInternalServerError, "Erro ao enviar resposta")
		return
	}

	h.logger.InfoContext(r.Context(), "contact reply sent", "message_id", id)
	writeJSON(w, http.StatusOK, model.ContactResponse{
		Success: true,
		Message: "Resposta enviada com sucesso",
	})
}
