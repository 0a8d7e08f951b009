package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// apiCall is one request the fake API received.
type apiCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakeAPI is an in-memory Welog REST API. Threads are nested server-side
// the way the real backend does it.
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	calls    []apiCall
	fail     map[string]int
	users    map[int64]map[string]any
	posts    map[int64]map[string]any
	comments []map[string]any
	likers   map[int64][]int64
	inbox    []map[string]any
	nextID   int64
	mux      *http.ServeMux

	// emptyUpdates makes PATCH users/updateMe answer 204 without a body.
	emptyUpdates bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:    t,
		fail: make(map[string]int),
		users: map[int64]map[string]any{
			7: {"id": 7, "name": "Ada", "email": "ada@example.com", "roles": []string{"ROLE_USER"}, "createdAt": "2025-03-01T09:00:00"},
			9: {"id": 9, "name": "Grace", "email": "grace@example.com", "roles": []string{"ROLE_USER"}},
		},
		posts: map[int64]map[string]any{
			1: {"id": 1, "title": "Hello Welog", "content": "First post body", "excerpt": "First post",
				"author": map[string]any{"id": 9, "name": "Grace"}, "createdAt": "2026-01-01T10:00:00"},
		},
		likers: map[int64][]int64{1: {9}},
		nextID: 100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/signin", f.signIn)
	mux.HandleFunc("POST /api/v1/auth/signup", f.signUp)
	mux.HandleFunc("GET /api/v1/users/{id}", f.getUser)
	mux.HandleFunc("PATCH /api/v1/users/updateMe", f.updateMe)
	mux.HandleFunc("GET /api/v1/posts", f.listPosts)
	mux.HandleFunc("GET /api/v1/posts/search", f.listPosts)
	mux.HandleFunc("POST /api/v1/posts", f.createPost)
	mux.HandleFunc("GET /api/v1/posts/{id}", f.getPost)
	mux.HandleFunc("DELETE /api/v1/posts/{id}", f.noContent)
	mux.HandleFunc("GET /api/v1/posts/{id}/root-comments", f.rootComments)
	mux.HandleFunc("POST /api/v1/posts/{id}/comments", f.createComment)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", f.deleteComment)
	mux.HandleFunc("GET /api/v1/posts/{id}/likes", f.listLikers)
	mux.HandleFunc("POST /api/v1/posts/{id}/likes", f.like)
	mux.HandleFunc("DELETE /api/v1/posts/{id}/likes", f.unlike)
	mux.HandleFunc("GET /api/v1/users/{id}/notifications", f.listNotifications)
	mux.HandleFunc("PATCH /api/v1/users/{id}/notifications/read-all", f.readAll)
	mux.HandleFunc("PATCH /api/v1/notifications/{id}/read", f.noContent)
	f.mux = mux
	return f
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	status, failing := f.fail[r.Method+" "+path]
	f.mu.Unlock()

	if failing {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "upstream says no"})
		return
	}
	f.mux.ServeHTTP(w, r)
}

// failWith makes every "METHOD /path" request answer status.
func (f *fakeAPI) failWith(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[route] = status
}

// callsTo returns the recorded calls of "METHOD /path".
func (f *fakeAPI) callsTo(route string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method+" "+c.Path == route {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encoding fake response: %v", err)
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func (f *fakeAPI) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Email != "ada@example.com" || req.Password != "correct horse" {
		f.writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
		return
	}
	f.writeJSON(w, http.StatusOK, map[string]any{"token": "ada-token", "type": "Bearer", "id": 7, "email": req.Email})
}

func (f *fakeAPI) signUp(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, http.StatusCreated, map[string]any{"id": 11, "name": "New"})
}

func (f *fakeAPI) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	u, ok := f.users[pathID(r)]
	f.mu.Unlock()
	if !ok {
		f.writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
		return
	}
	f.writeJSON(w, http.StatusOK, u)
}

func (f *fakeAPI) updateMe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		f.writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	f.mu.Lock()
	u := f.users[7]
	u["name"] = r.FormValue("name")
	u["email"] = r.FormValue("email")
	if _, _, err := r.FormFile("photo"); err == nil {
		u["photo"] = "ada.png"
	}
	empty := f.emptyUpdates
	f.mu.Unlock()
	if empty {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	f.writeJSON(w, http.StatusOK, u)
}

func (f *fakeAPI) listPosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	content := make([]map[string]any, 0, len(f.posts))
	title := strings.ToLower(r.URL.Query().Get("title"))
	for _, p := range f.posts {
		if title == "" || strings.Contains(strings.ToLower(p["title"].(string)), title) {
			content = append(content, p)
		}
	}
	f.mu.Unlock()
	f.writeJSON(w, http.StatusOK, map[string]any{
		"content": content, "totalElements": len(content), "totalPages": 1, "number": 0, "size": 12,
	})
}

func (f *fakeAPI) createPost(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.nextID++
	req["id"] = f.nextID
	f.posts[f.nextID] = req
	f.mu.Unlock()
	f.writeJSON(w, http.StatusCreated, req)
}

func (f *fakeAPI) getPost(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	p, ok := f.posts[pathID(r)]
	f.mu.Unlock()
	if !ok {
		f.writeJSON(w, http.StatusNotFound, map[string]any{"message": "Post not found"})
		return
	}
	f.writeJSON(w, http.StatusOK, p)
}

func (f *fakeAPI) noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// addComment stores a comment and returns its id.
func (f *fakeAPI) addComment(postID, userID int64, parentID int64, content string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := map[string]any{
		"id": f.nextID, "postId": postID, "content": content,
		"user":      map[string]any{"id": userID, "name": f.users[userID]["name"]},
		"createdAt": "2026-01-02T10:00:00",
	}
	if parentID > 0 {
		c["parentId"] = parentID
	}
	f.comments = append(f.comments, c)
	return f.nextID
}

func (f *fakeAPI) nest(postID int64, parentID int64, level int) []map[string]any {
	out := []map[string]any{}
	for _, c := range f.comments {
		if c["postId"] != postID {
			continue
		}
		pid, _ := c["parentId"].(int64)
		if pid != parentID {
			continue
		}
		node := make(map[string]any, len(c)+2)
		for k, v := range c {
			node[k] = v
		}
		node["level"] = level
		node["replies"] = f.nest(postID, c["id"].(int64), level+1)
		out = append(out, node)
	}
	return out
}

func (f *fakeAPI) rootComments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	roots := f.nest(pathID(r), 0, 1)
	f.mu.Unlock()
	f.writeJSON(w, http.StatusOK, roots)
}

func (f *fakeAPI) createComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID *int64 `json:"parentId"`
		Content  string `json:"content"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	parent := int64(0)
	if req.ParentID != nil {
		parent = *req.ParentID
	}
	id := f.addComment(pathID(r), 7, parent, req.Content)
	f.writeJSON(w, http.StatusCreated, map[string]any{"id": id, "content": req.Content})
}

func (f *fakeAPI) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	f.mu.Lock()
	kept := f.comments[:0]
	for _, c := range f.comments {
		if c["id"] != id && c["parentId"] != id {
			kept = append(kept, c)
		}
	}
	f.comments = kept
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) listLikers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := []map[string]any{}
	for _, id := range f.likers[pathID(r)] {
		out = append(out, f.users[id])
	}
	f.mu.Unlock()
	f.writeJSON(w, http.StatusOK, out)
}

func (f *fakeAPI) like(w http.ResponseWriter, r *http.Request) {
	uid, _ := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	f.mu.Lock()
	f.likers[pathID(r)] = append(f.likers[pathID(r)], uid)
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeAPI) unlike(w http.ResponseWriter, r *http.Request) {
	uid, _ := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	f.mu.Lock()
	ids := f.likers[pathID(r)]
	kept := ids[:0]
	for _, id := range ids {
		if id != uid {
			kept = append(kept, id)
		}
	}
	f.likers[pathID(r)] = kept
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) listNotifications(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := append([]map[string]any{}, f.inbox...)
	f.mu.Unlock()
	f.writeJSON(w, http.StatusOK, out)
}

func (f *fakeAPI) readAll(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	for _, n := range f.inbox {
		n["read"] = true
	}
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
