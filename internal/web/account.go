package web

import (
	"errors"
	"net/http"

	"Welog/internal/core/auth"
)

// LoginPageData is the data of login.html.
type LoginPageData struct {
	Page
	Email string
	Next  string
}

// LoginPage handles GET /login.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := LoginPageData{Page: h.page(r, "Sign in"), Next: localPath(q.Get("next"), "")}
	switch {
	case q.Get("expired") == "1":
		data.Error = "Your session has expired. Please sign in again."
	case q.Get("registered") == "1":
		data.Notice = "Your account was created. Please sign in."
	}
	h.render(w, r, http.StatusOK, "login.html", data)
}

// Login handles POST /login. A rejected sign-in is shown as a login error and
// leaves the stored session untouched.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := LoginPageData{
		Page:  h.page(r, "Sign in"),
		Email: r.PostFormValue("email"),
		Next:  localPath(r.PostFormValue("next"), ""),
	}

	resp, err := h.auth.SignIn(ctx, auth.SignInRequest{
		Email:    data.Email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		status := formStatus(err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		data.Error = messageFor(err)
		h.render(w, r, status, "login.html", data)
		return
	}

	user, err := state(r).Login(ctx, resp, h.users.Get)
	if err != nil {
		h.logger.Warn("sign-in succeeded but the profile could not be loaded", "user_id", resp.ID, "error", err)
		data.Error = "Signed in, but your profile could not be loaded. Please try again."
		h.render(w, r, http.StatusBadGateway, "login.html", data)
		return
	}

	h.logger.Info("user signed in via web", "user_id", user.ID)
	seeOther(w, r, localPath(data.Next, "/"))
}

// RegisterPageData is the data of register.html.
type RegisterPageData struct {
	Page
	Name  string
	Email string
}

// RegisterPage handles GET /register.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", RegisterPageData{Page: h.page(r, "Create an account")})
}

// Register handles POST /register. The new account signs in separately.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	data := RegisterPageData{
		Page:  h.page(r, "Create an account"),
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}

	_, err := h.auth.SignUp(r.Context(), auth.SignUpRequest{
		Name:            data.Name,
		Email:           data.Email,
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	})
	if err != nil {
		data.Error = messageFor(err)
		h.render(w, r, formStatus(err), "register.html", data)
		return
	}
	seeOther(w, r, "/login?registered=1")
}

// Logout handles POST /logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := state(r).Logout(r.Context()); err != nil {
		h.logger.Warn("failed to clear session on logout", "error", err)
	}
	seeOther(w, r, "/")
}
