package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"expensetracker/internal/controller"
	"expensetracker/internal/log"
	"expensetracker/internal/notify"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks the backend API is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("backend unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex loads list and summary, then renders the whole page. Load
// failures are already on the notification board; the page still renders.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Initialize(r.Context()); err != nil {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Initial load incomplete", log.FieldError, err)
	}

	m := s.ctrl.Model()
	b := NewHTMXResponse()
	if err := b.Render(func(buf *bytes.Buffer) error { return s.renderer.Page(buf, m) }); err != nil {
		s.renderFailed(w, r, "index", err)
		return
	}
	b.Write(w)
}

// handleCreateExpense submits the form and answers with the form partial:
// reset on success, as typed on failure.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	form, err := ParseExpenseForm(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable expense form", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	createErr := s.ctrl.CreateExpense(r.Context(), form)

	m := s.ctrl.Model()
	b := NewHTMXResponse()
	if createErr == nil {
		b.TriggerExpensesRefresh().TriggerFormReset()
	}
	s.announceLatest(b, m.Notifications)

	if err := b.Render(func(buf *bytes.Buffer) error { return s.renderer.Form(buf, m.Form) }); err != nil {
		s.renderFailed(w, r, "expense_form", err)
		return
	}
	b.Write(w)
}

// handleUpdateExpense saves an edited expense. Nothing is swapped; the list
// and summary re-fetch on success.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseExpenseID(r)
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}
	form, err := ParseExpenseForm(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable expense form", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	b := NewHTMXResponse()
	if err := s.ctrl.UpdateExpense(r.Context(), id, form); err == nil {
		b.TriggerExpensesRefresh()
	}
	s.announceLatest(b, s.ctrl.Model().Notifications)
	b.Write(w)
}

// handleDeleteExpense deletes only when the request carries confirmed=true.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseExpenseID(r)
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}

	confirmed := IsConfirmed(r)
	confirmer := controller.ConfirmFunc(func(context.Context, string) bool { return confirmed })

	sent, err := s.ctrl.DeleteExpense(r.Context(), id, confirmer)
	if !sent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	b := NewHTMXResponse()
	if err == nil {
		b.TriggerExpensesRefresh()
	}
	s.announceLatest(b, s.ctrl.Model().Notifications)
	b.Write(w)
}

func (s *Server) handleListPartial(w http.ResponseWriter, r *http.Request) {
	list := s.ctrl.Model().List
	s.writePartial(w, r, "expense_list", func(buf *bytes.Buffer) error { return s.renderer.List(buf, list) })
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	summary := s.ctrl.Model().Summary
	s.writePartial(w, r, "summary", func(buf *bytes.Buffer) error { return s.renderer.Summary(buf, summary) })
}

func (s *Server) handleFormPartial(w http.ResponseWriter, r *http.Request) {
	form := s.ctrl.Model().Form
	s.writePartial(w, r, "expense_form", func(buf *bytes.Buffer) error { return s.renderer.Form(buf, form) })
}

func (s *Server) handleNotificationsPartial(w http.ResponseWriter, r *http.Request) {
	ns := s.ctrl.Model().Notifications
	s.writePartial(w, r, "notifications", func(buf *bytes.Buffer) error { return s.renderer.Notifications(buf, ns) })
}

// handleRefresh re-runs both refreshes and tells the page to re-fetch.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b := NewHTMXResponse().TriggerExpensesRefresh()
	if err := s.ctrl.Refresh(r.Context()); err != nil {
		s.announceLatest(b, s.ctrl.Model().Notifications)
	}
	b.Status(http.StatusNoContent).Write(w)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	b := ErrorResponse(http.StatusTooManyRequests, MsgRateLimited)
	if s.notifier != nil {
		id := s.notifier.Show(notify.Error, MsgRateLimited)
		b.TriggerNotification(notify.Notification{ID: id, Severity: notify.Error, Message: MsgRateLimited}, s.notifyDuration)
	}
	b.Write(w)
}

func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, name string, render func(*bytes.Buffer) error) {
	b := NewHTMXResponse()
	if err := b.Render(render); err != nil {
		s.renderFailed(w, r, name, err)
		return
	}
	b.Write(w)
}

// announceLatest adds a show-notification trigger for the newest visible
// notification, if any.
func (s *Server) announceLatest(b *HTMXResponseBuilder, ns []notify.Notification) {
	for i := len(ns) - 1; i >= 0; i-- {
		if ns[i].Phase == notify.Visible {
			b.TriggerNotification(ns[i], s.notifyDuration)
			return
		}
	}
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
		append(log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice(), "template", name)...,
	)
	if errors.Is(err, context.Canceled) {
		return
	}
	InternalServerError("Something went wrong rendering the page").Write(w)
}
