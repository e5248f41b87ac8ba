package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"socialnet/internal/db"
	"socialnet/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	services.PasswordCost = bcrypt.MinCost
}

func newEngine(t *testing.T, d Deps) *gin.Engine {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	d.DB = conn
	if d.AdminName == "" {
		d.AdminName = "Test Admin"
	}
	r, err := New(d)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, w.Code, w.Body.String())
	}
	if message == "" {
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	if body.Message != message {
		t.Errorf("expected message %q, got %q", message, body.Message)
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	return v
}

type userJSON struct {
	ID         uint     `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	BirthDate  *string  `json:"birth_date"`
	IsVerified bool     `json:"is_verified"`
	Posts      []uint   `json:"posts"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
	Password   *string  `json:"password"`
}

type postJSON struct {
	ID            uint     `json:"id"`
	Status        string   `json:"status"`
	User          string   `json:"user"`
	Comments      []string `json:"comments"`
	LikedBy       []string `json:"liked_by"`
	LikesCount    int      `json:"likes_count"`
	CommentsCount int      `json:"comments_count"`
}

func createUser(t *testing.T, r http.Handler, name string) userJSON {
	t.Helper()
	w := do(r, http.MethodPost, "/users", `{"username":"`+name+`","password":"p","email":"`+name+`@x.com"}`)
	expect(t, w, http.StatusCreated, "")
	return decode[userJSON](t, w)
}

func TestCreateUserReturnsEmptyLists(t *testing.T) {
	r := newEngine(t, Deps{})

	w := do(r, http.MethodPost, "/users", `{"username":"a","password":"p","email":"a@x.com"}`)
	expect(t, w, http.StatusCreated, "")

	if strings.Contains(w.Body.String(), `"password"`) {
		t.Errorf("password leaked: %s", w.Body.String())
	}
	u := decode[userJSON](t, w)
	if u.Username != "a" || u.Email != "a@x.com" || u.IsVerified || u.BirthDate != nil {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.Posts == nil || u.Followers == nil || u.Following == nil {
		t.Errorf("lists must be empty, not null: %s", w.Body.String())
	}
	if len(u.Posts)+len(u.Followers)+len(u.Following) != 0 {
		t.Errorf("lists must be empty: %+v", u)
	}
}

func TestCreateUserValidation(t *testing.T) {
	r := newEngine(t, Deps{})
	createUser(t, r, "alice")

	cases := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"empty body", ``, 400, "No body provided"},
		{"empty object", `{}`, 400, "No body provided"},
		{"malformed", `{"username":`, 400, "Invalid JSON body"},
		{"no password", `{"username":"bob"}`, 400, "No password provided"},
		{"no email", `{"username":"bob","password":"p"}`, 400, "No email provided"},
		{"duplicate username", `{"username":"alice","password":"p","email":"b@x.com"}`, 400, "Username already exists"},
		{"duplicate email", `{"username":"bob","password":"p","email":"alice@x.com"}`, 400, "Email already exists"},
		{"bad birth date", `{"username":"bob","password":"p","email":"b@x.com","birth_date":"yesterday"}`, 400, "Invalid birth_date, expected YYYY-MM-DD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expect(t, do(r, http.MethodPost, "/users", tc.body), tc.code, tc.msg)
		})
	}

	list := decode[[]userJSON](t, do(r, http.MethodGet, "/users", ""))
	if len(list) != 1 {
		t.Errorf("expected 1 user after failed creates, got %d", len(list))
	}
}

func TestUserCRUD(t *testing.T) {
	r := newEngine(t, Deps{})
	u := createUser(t, r, "alice")

	expect(t, do(r, http.MethodGet, "/users/999", ""), 404, "User not found")
	expect(t, do(r, http.MethodGet, "/users/abc", ""), 404, "User not found")

	w := do(r, http.MethodPut, "/users/1", `{"birth_date":"1990-05-01","is_verified":true}`)
	expect(t, w, 200, "")
	got := decode[userJSON](t, w)
	if got.BirthDate == nil || *got.BirthDate != "1990-05-01" || !got.IsVerified || got.ID != u.ID {
		t.Errorf("unexpected update result: %+v", got)
	}

	expect(t, do(r, http.MethodDelete, "/users/1", ""), 200, "User deleted")
	expect(t, do(r, http.MethodDelete, "/users/1", ""), 404, "User not found")
}

func TestFollowFlow(t *testing.T) {
	r := newEngine(t, Deps{})
	createUser(t, r, "alice")
	createUser(t, r, "bob")

	expect(t, do(r, http.MethodPost, "/users/2/follow", ``), 400, "No body provided")
	expect(t, do(r, http.MethodPost, "/users/2/follow", `{"post_id":1}`), 400, "No follower_id provided")
	expect(t, do(r, http.MethodPost, "/users/9/follow", `{"follower_id":1}`), 404, "Followed not found")
	expect(t, do(r, http.MethodPost, "/users/2/follow", `{"follower_id":9}`), 404, "Follower not found")
	expect(t, do(r, http.MethodPost, "/users/1/follow", `{"follower_id":1}`), 400, "User cannot follow itself")

	w := do(r, http.MethodPost, "/users/2/follow", `{"follower_id":1}`)
	expect(t, w, 200, "")
	bob := decode[userJSON](t, w)
	if bob.Username != "bob" || len(bob.Followers) != 1 || bob.Followers[0] != "alice" {
		t.Errorf("unexpected followed user: %+v", bob)
	}
	expect(t, do(r, http.MethodPost, "/users/2/follow", `{"follower_id":1}`), 400, "User already follows this user")

	alice := decode[userJSON](t, do(r, http.MethodGet, "/users/1", ""))
	if len(alice.Following) != 1 || alice.Following[0] != "bob" {
		t.Errorf("alice.following = %v", alice.Following)
	}

	expect(t, do(r, http.MethodPost, "/users/2/unfollow", `{"follower_id":1}`), 200, "Unfollowed user")
	expect(t, do(r, http.MethodPost, "/users/2/unfollow", `{"follower_id":1}`), 400, "User does not follow this user")
	expect(t, do(r, http.MethodPost, "/users/9/unfollow", `{"follower_id":1}`), 404, "User not found")
	expect(t, do(r, http.MethodPost, "/users/2/unfollow", `{"follower_id":9}`), 404, "Follower not found")
}

func TestPostsLikesAndComments(t *testing.T) {
	r := newEngine(t, Deps{})
	createUser(t, r, "alice")
	createUser(t, r, "bob")

	expect(t, do(r, http.MethodPost, "/posts", `{"description":"d","media_url":"m","user_id":9}`), 404, "User not found")
	expect(t, do(r, http.MethodPost, "/posts", `{"description":"d","user_id":1}`), 400, "No media_url provided")

	w := do(r, http.MethodPost, "/posts", `{"description":"first","media_url":"https://img.example/a.png","user_id":1}`)
	expect(t, w, 201, "")
	p := decode[postJSON](t, w)
	if p.Status != "approved" || p.User != "alice" || p.Comments == nil || p.LikedBy == nil {
		t.Errorf("unexpected post: %s", w.Body.String())
	}
	expect(t, do(r, http.MethodPost, "/posts", `{"description":"second","media_url":"m","user_id":2}`), 201, "")

	expect(t, do(r, http.MethodPut, "/posts/1", `{"status":"viral"}`), 400, "Invalid status")
	w = do(r, http.MethodPut, "/posts/1", `{"status":"archived"}`)
	expect(t, w, 200, "")
	if got := decode[postJSON](t, w); got.Status != "archived" {
		t.Errorf("status = %q", got.Status)
	}

	// like / unlike
	expect(t, do(r, http.MethodPost, "/users/2/like", `{"post_id":9}`), 404, "Post not found")
	expect(t, do(r, http.MethodPost, "/users/9/like", `{"post_id":1}`), 404, "User not found")
	w = do(r, http.MethodPost, "/users/2/like", `{"post_id":1}`)
	expect(t, w, 200, "")
	if got := decode[postJSON](t, w); got.LikesCount != 1 || got.LikedBy[0] != "bob" {
		t.Errorf("unexpected liked post: %s", w.Body.String())
	}
	expect(t, do(r, http.MethodPost, "/users/2/like", `{"post_id":1}`), 400, "User already liked this post")
	w = do(r, http.MethodPost, "/users/2/unlike", `{"post_id":1}`)
	expect(t, w, 200, "")
	if got := decode[userJSON](t, w); got.Username != "bob" {
		t.Errorf("unlike must return the user: %s", w.Body.String())
	}
	expect(t, do(r, http.MethodPost, "/users/2/unlike", `{"post_id":1}`), 400, "User has not liked this post")

	// comments
	expect(t, do(r, http.MethodPost, "/posts/1/comments", `{"user_id":2}`), 400, "No text provided")
	expect(t, do(r, http.MethodPost, "/posts/9/comments", `{"text":"hi","user_id":2}`), 404, "Post not found")
	expect(t, do(r, http.MethodPost, "/posts/1/comments", `{"text":"hi","user_id":9}`), 404, "User not found")
	expect(t, do(r, http.MethodPost, "/posts/1/comments", `{"text":"hi","user_id":2}`), 201, "")

	comments := decode[[]map[string]any](t, do(r, http.MethodGet, "/posts/1/comments", ""))
	if len(comments) != 1 || comments[0]["user"] != "bob" || comments[0]["text"] != "hi" {
		t.Errorf("unexpected comments: %v", comments)
	}

	// comment 1 belongs to post 1, so post 2 must not see it
	expect(t, do(r, http.MethodPut, "/posts/2/comments/1", `{"text":"x"}`), 404, "Comment not found")
	expect(t, do(r, http.MethodDelete, "/posts/2/comments/1", ""), 404, "Comment not found")
	expect(t, do(r, http.MethodPut, "/posts/1/comments/1", `{"text":"edited"}`), 200, "")

	got := decode[postJSON](t, do(r, http.MethodGet, "/posts/1", ""))
	if got.CommentsCount != 1 || got.Comments[0] != "edited" {
		t.Errorf("unexpected post comments: %+v", got)
	}

	expect(t, do(r, http.MethodDelete, "/posts/1/comments/1", ""), 200, "Comment deleted")
	expect(t, do(r, http.MethodDelete, "/posts/1", ""), 200, "Post deleted")
	expect(t, do(r, http.MethodGet, "/posts/1", ""), 404, "Post not found")
}

func TestDeleteUserRemovesEverything(t *testing.T) {
	r := newEngine(t, Deps{})
	createUser(t, r, "alice")
	createUser(t, r, "bob")
	expect(t, do(r, http.MethodPost, "/posts", `{"description":"d","media_url":"m","user_id":1}`), 201, "")
	expect(t, do(r, http.MethodPost, "/users/1/follow", `{"follower_id":2}`), 200, "")
	expect(t, do(r, http.MethodPost, "/users/2/follow", `{"follower_id":1}`), 200, "")
	expect(t, do(r, http.MethodPost, "/users/2/like", `{"post_id":1}`), 200, "")
	expect(t, do(r, http.MethodPost, "/posts/1/comments", `{"text":"hi","user_id":2}`), 201, "")

	expect(t, do(r, http.MethodDelete, "/users/1", ""), 200, "User deleted")

	if posts := decode[[]postJSON](t, do(r, http.MethodGet, "/posts", "")); len(posts) != 0 {
		t.Errorf("posts left: %+v", posts)
	}
	bob := decode[userJSON](t, do(r, http.MethodGet, "/users/2", ""))
	if len(bob.Followers) != 0 || len(bob.Following) != 0 {
		t.Errorf("bob still has edges: %+v", bob)
	}
}

func TestSitemapHealthAndMetrics(t *testing.T) {
	r := newEngine(t, Deps{})

	w := do(r, http.MethodGet, "/", "")
	expect(t, w, 200, "")
	routes := decode[[]struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}](t, w)
	seen := map[string]bool{}
	for _, rt := range routes {
		seen[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{"GET /users", "POST /users/:id/follow", "DELETE /posts/:id/comments/:comment_id", "GET /admin/users"} {
		if !seen[want] {
			t.Errorf("sitemap missing %s", want)
		}
	}

	w = do(r, http.MethodGet, "/healthz", "")
	expect(t, w, 200, "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	do(r, http.MethodGet, "/users", "")
	w = do(r, http.MethodGet, "/metrics", "")
	expect(t, w, 200, "")
	if !strings.Contains(w.Body.String(), "socialnet_http_requests_total") {
		t.Error("metrics missing request counter")
	}
}

func form(r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminGrids(t *testing.T) {
	r := newEngine(t, Deps{})
	createUser(t, r, "alice")
	expect(t, do(r, http.MethodPost, "/posts", `{"description":"**bold** <script>x</script>","media_url":"https://img.example/a.png","user_id":1}`), 201, "")
	expect(t, do(r, http.MethodPost, "/posts/1/comments", `{"text":"hi","user_id":1}`), 201, "")

	for _, path := range []string{"/admin", "/admin/users", "/admin/posts", "/admin/comments", "/admin/users/new", "/admin/posts/1/edit", "/admin/comments/1/edit"} {
		w := do(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: %d", path, w.Code)
		}
	}

	body := do(r, http.MethodGet, "/admin/posts", "").Body.String()
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("description not rendered as markdown")
	}
	if strings.Contains(body, "<script>") {
		t.Error("description not sanitized")
	}
	if !strings.Contains(body, `loading="lazy"`) {
		t.Error("media preview missing lazy image")
	}
	if !strings.Contains(do(r, http.MethodGet, "/admin/users", "").Body.String(), "alice@x.com") {
		t.Error("users grid missing alice")
	}
}

func TestAdminCreateEditDelete(t *testing.T) {
	r := newEngine(t, Deps{})

	w := form(r, "/admin/users/new", url.Values{"username": {"carol"}, "password": {"p"}, "email": {"carol@x.com"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/users" {
		t.Fatalf("create: %d %s", w.Code, w.Header().Get("Location"))
	}

	// 重复用户名时重新渲染表单并提示
	w = form(r, "/admin/users/new", url.Values{"username": {"carol"}, "password": {"p"}, "email": {"c2@x.com"}})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Username already exists") {
		t.Errorf("duplicate: %d", w.Code)
	}

	w = form(r, "/admin/users/1/edit", url.Values{"username": {"caroline"}, "is_verified": {"on"}})
	if w.Code != http.StatusFound {
		t.Fatalf("edit: %d %s", w.Code, w.Body.String())
	}
	u := decode[userJSON](t, do(r, http.MethodGet, "/users/1", ""))
	if u.Username != "caroline" || !u.IsVerified || u.Email != "carol@x.com" {
		t.Errorf("unexpected user after edit: %+v", u)
	}

	w = form(r, "/admin/posts/new", url.Values{"description": {"d"}, "media_url": {"m"}, "status": {"pending"}, "user_id": {"1"}})
	if w.Code != http.StatusFound {
		t.Fatalf("create post: %d %s", w.Code, w.Body.String())
	}
	w = form(r, "/admin/comments/new", url.Values{"text": {"c"}, "user_id": {"1"}, "post_id": {"1"}})
	if w.Code != http.StatusFound {
		t.Fatalf("create comment: %d %s", w.Code, w.Body.String())
	}

	w = form(r, "/admin/users/1/delete", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("delete: %d", w.Code)
	}
	expect(t, do(r, http.MethodGet, "/users/1", ""), 404, "User not found")
	if posts := decode[[]postJSON](t, do(r, http.MethodGet, "/posts", "")); len(posts) != 0 {
		t.Errorf("posts survived user delete: %+v", posts)
	}
}

func TestAdminPasswordRequired(t *testing.T) {
	r := newEngine(t, Deps{AdminPassword: "s3cret"})

	if w := do(r, http.MethodGet, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.SetBasicAuth("admin", "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", w.Code)
	}
	// JSON API is not behind the admin password
	expect(t, do(r, http.MethodGet, "/users", ""), 200, "")
}
