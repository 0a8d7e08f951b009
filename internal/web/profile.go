package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"Welog/internal/blogapi"
	"Welog/internal/core/users"
)

// ProfilePageData is the data of profile.html.
type ProfilePageData struct {
	Page
	User *users.User
	// Name and Email prefill the edit form.
	Name  string
	Email string
	Self  bool
}

// MyProfile handles GET /profile.
func (h *Handlers) MyProfile(w http.ResponseWriter, r *http.Request) {
	h.showProfile(w, r, state(r).UserID())
}

// UserProfile handles GET /users/{id}.
func (h *Handlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, r, users.ErrInvalidUserID)
		return
	}
	h.showProfile(w, r, id)
}

func (h *Handlers) showProfile(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := ProfilePageData{Page: h.page(r, user.Name), User: user, Name: user.Name, Email: user.Email}
	data.Self = data.Viewer != nil && data.Viewer.ID == user.ID
	if data.Self && r.URL.Query().Get("updated") == "1" {
		data.Notice = "Profile updated."
	}
	h.render(w, r, http.StatusOK, "profile.html", data)
}

// UpdateProfile handles POST /profile. The stored user is merged with the
// server's answer so the header reflects the change at once.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.fail(w, r, fmt.Errorf("%w: %w", blogapi.ErrPayloadTooLarge, err))
		return
	}
	ctx := r.Context()
	s := state(r)
	data := ProfilePageData{
		Page:  h.page(r, "Your profile"),
		User:  s.User(),
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Self:  true,
	}

	photo, closePhoto, err := formFile(r, "photo")
	if err != nil {
		data.Error = "The photo could not be read."
		h.render(w, r, http.StatusBadRequest, "profile.html", data)
		return
	}
	defer closePhoto()

	updated, err := h.users.UpdateMe(ctx, users.UpdateMeRequest{Name: data.Name, Email: data.Email, Photo: photo})
	if err != nil {
		if errors.Is(err, blogapi.ErrSessionExpired) {
			h.fail(w, r, err)
			return
		}
		data.Error = messageFor(err)
		h.render(w, r, formStatus(err), "profile.html", data)
		return
	}

	// An empty answer (204 or no body) carries no user to merge.
	if updated.ID == 0 {
		updated, err = h.users.Get(ctx, s.UserID())
		if err != nil {
			h.logger.Warn("failed to reload profile after update", "user_id", s.UserID(), "error", err)
			updated = &users.User{ID: s.UserID(), Name: strings.TrimSpace(data.Name), Email: strings.TrimSpace(data.Email)}
		}
	}

	patch := users.Patch{Name: &updated.Name, Email: &updated.Email}
	if updated.Photo != "" {
		patch.Photo = &updated.Photo
	}
	if err := s.UpdateUser(ctx, patch); err != nil {
		h.logger.Warn("failed to store updated profile", "user_id", updated.ID, "error", err)
	}
	seeOther(w, r, "/profile?updated=1")
}
