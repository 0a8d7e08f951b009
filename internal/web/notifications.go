package web

import (
	"net/http"

	"Welog/internal/core/notifications"
)

// NotificationsPageData is the data of notifications.html.
type NotificationsPageData struct {
	Page
	Inbox *notifications.Inbox
}

// Notifications handles GET /notifications. The inbox is fetched only when
// this page opens.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	inbox, err := notifications.Open(r.Context(), h.notifications, state(r).UserID())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "notifications.html", NotificationsPageData{
		Page:  h.page(r, "Notifications"),
		Inbox: inbox,
	})
}

// MarkAllNotificationsRead handles POST /notifications/read-all.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context(), state(r).UserID()); err != nil {
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, "/notifications")
}

// MarkNotificationRead handles POST /notifications/{id}/read and then follows
// the notification's link.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, notifications.ErrInvalidID)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	seeOther(w, r, localPath(r.PostFormValue("next"), "/notifications"))
}
