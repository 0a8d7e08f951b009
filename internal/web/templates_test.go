package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Welog/internal/blogapi"
	"Welog/internal/core/comments"
	"Welog/internal/core/notifications"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
)

func TestTemplatesRender_AllPages(t *testing.T) {
	templates, err := NewTemplates(ImageLinks{Origin: "http://api.test", Proxy: true})
	require.NoError(t, err)

	viewer := &users.User{ID: 7, Name: "Ada", Photo: "ada.png"}
	post := posts.Post{
		ID:         1,
		Title:      "Hello Welog",
		Content:    "Body",
		Excerpt:    "<p>Short</p> excerpt",
		CoverImage: "cover.png",
		Author:     &users.User{ID: 9, Name: "Grace"},
		CreatedAt:  blogapi.Time{Time: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	list := &blogapi.Page[posts.Post]{Content: []posts.Post{post}, TotalElements: 1, TotalPages: 2}
	row := CommentRow{Row: comments.Row{
		Comment:   &comments.Comment{ID: 3, Content: "A comment", User: viewer},
		Depth:     1,
		CanReply:  true,
		CanDelete: true,
	}, ReplyOpen: true, ReplyContent: "draft reply"}

	tests := []struct {
		name string
		data any
		want []string
	}{
		{"posts.html", PostsPageData{Page: Page{Title: "Latest Posts"}, Posts: list, NextURL: "/?page=1"},
			[]string{"Hello Welog", "Older →", "/media/post_card/posts/cover.png", "Sign in"}},
		{"post.html", PostPageData{
			Page:      Page{Title: "Hello Welog", Viewer: viewer},
			Post:      &post,
			Like:      LikeView{Count: 2, Liked: true},
			Comments:  CommentsView{PostID: 1, Count: 1, Rows: []CommentRow{row}},
			CanDelete: true,
		}, []string{"♥ 2", "Comments (1)", "A comment", ">draft reply</textarea>", "Delete post", "January 1, 2026"}},
		{"search.html", SearchPageData{Page: Page{Title: "Search"}, Query: "hello", Results: list, Recent: []string{"go"}},
			[]string{"Search results", "1 posts found", "Recent searches"}},
		{"post_form.html", PostFormData{Page: Page{Title: "Write a post", Viewer: viewer}, Draft: posts.Draft{Title: "Draft title"}},
			[]string{`value="Draft title"`}},
		{"confirm.html", ConfirmPageData{Page: Page{Title: "Delete"}, Heading: "Delete this post?", Subject: "Hello", Action: "/posts/1/delete", Cancel: "/posts/1"},
			[]string{"Delete this post?", `action="/posts/1/delete"`}},
		{"login.html", LoginPageData{Page: Page{Title: "Sign in", Error: "Invalid email or password."}, Email: "ada@example.com"},
			[]string{"Invalid email or password.", `value="ada@example.com"`}},
		{"register.html", RegisterPageData{Page: Page{Title: "Create an account"}, Name: "Ada"},
			[]string{`value="Ada"`}},
		{"profile.html", ProfilePageData{Page: Page{Title: "Ada", Viewer: viewer}, User: viewer, Name: "Ada", Self: true},
			[]string{"/media/avatar_large/users/ada.png", "Account information"}},
		{"notifications.html", NotificationsPageData{Page: Page{Title: "Notifications", Viewer: viewer}, Inbox: &notifications.Inbox{
			Items: []notifications.Notification{{ID: 1, Message: "Grace liked your post"}},
		}}, []string{"Grace liked your post", "Mark all as read"}},
		{"error.html", ErrorPageData{Page: Page{Title: "Not Found"}, Status: 404, Message: "Gone"},
			[]string{"404", "Gone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, templates.Render(rec, http.StatusOK, tt.name, tt.data))
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestTemplatesRender_UnknownPage(t *testing.T) {
	templates, err := NewTemplates(ImageLinks{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = templates.Render(rec, http.StatusOK, "missing.html", nil)

	assert.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestTemplatesRender_FailureWritesNothing(t *testing.T) {
	templates, err := NewTemplates(ImageLinks{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = templates.Render(rec, http.StatusOK, "posts.html", PostsPageData{})

	assert.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"future", now.Add(time.Hour), "just now"},
		{"hours", now.Add(-5 * time.Hour), "5h ago"},
		{"one day", now.Add(-30 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(tt.t, now))
		})
	}
}

func TestImageLinks(t *testing.T) {
	direct := ImageLinks{Origin: "http://api.test/"}
	proxied := ImageLinks{Origin: "http://api.test", Proxy: true}

	assert.Equal(t, "", direct.URL("avatar", "users", " "))
	assert.Equal(t, "http://api.test/img/users/a.png", direct.URL("avatar", "users", "a.png"))
	assert.Equal(t, "/media/avatar/users/a%20b.png", proxied.URL("avatar", "users", "a b.png"))
	assert.Equal(t, "https://cdn.test/x.png", proxied.URL("avatar", "users", "https://cdn.test/x.png"))
}

func TestPageLinks(t *testing.T) {
	u := mustURL(t, "/search?q=go&page=1")

	prev, next := pageLinks(u, 1, true, true)

	assert.Equal(t, "/search?q=go", prev)
	assert.Equal(t, "/search?page=2&q=go", next)

	prev, next = pageLinks(mustURL(t, "/posts"), 0, false, false)
	assert.Empty(t, prev)
	assert.Empty(t, next)
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"/posts/1":          "/posts/1",
		"":                  "/",
		"https://evil.test": "/",
		"//evil.test":       "/",
		`/\evil.test`:       "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, localPath(in, "/"), in)
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
