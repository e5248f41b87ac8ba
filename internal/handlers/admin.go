package handlers

import (
	"html/template"
	"net/http"
	"socialnet/internal/logger"
	"socialnet/internal/models"
	"socialnet/internal/services"
	"socialnet/internal/utils"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const flashError = "error"

var adminSections = []string{"users", "posts", "comments"}

// AdminHandler serves the HTML grids under /admin. Every write goes through
// the same services as the JSON API.
type AdminHandler struct {
	name     string
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
	stats    *services.StatsService
}

func NewAdminHandler(name string, users *services.UserService, posts *services.PostService, comments *services.CommentService, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{name: name, users: users, posts: posts, comments: comments, stats: stats}
}

type gridRow struct {
	ID    uint
	Cells []template.HTML
}

type grid struct {
	Columns []string
	Rows    []gridRow
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type formField struct {
	Name    string
	Label   string
	Kind    string
	Value   string
	Checked bool
	Options []option
}

type statusCount struct {
	Status models.PostStatus
	Count  int64
}

// render 注入后台公共变量并消费 flash
func (h *AdminHandler) render(c *gin.Context, code int, view string, obj gin.H) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	errs := session.Flashes(flashError)
	if err := session.Save(); err != nil {
		logger.Warn.Printf("admin: save session: %v", err)
	}
	if e, ok := obj["Error"].(string); ok && e != "" {
		errs = append(errs, e)
	}

	obj["AdminName"] = h.name
	obj["Nav"] = adminSections
	obj["Flashes"] = flashes
	obj["Errors"] = errs
	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, view, obj)
}

func (h *AdminHandler) redirect(c *gin.Context, path, message string) {
	h.flash(c, path, message)
}

func (h *AdminHandler) redirectError(c *gin.Context, path string, err error) {
	h.flash(c, path, msg(err), flashError)
}

func (h *AdminHandler) flash(c *gin.Context, path, message string, vars ...string) {
	session := sessions.Default(c)
	session.AddFlash(message, vars...)
	if err := session.Save(); err != nil {
		logger.Warn.Printf("admin: save session: %v", err)
	}
	c.Redirect(http.StatusFound, path)
}

// failStatus picks the status for a form that could not be saved.
func failStatus(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case services.IsInvalid(err):
		return http.StatusBadRequest
	default:
		logger.Error.Printf("admin: %v", err)
		return http.StatusInternalServerError
	}
}

// Dashboard - GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts, err := h.stats.Counts(c.Request.Context())
	if err != nil {
		logger.Error.Printf("admin: counts: %v", err)
		h.render(c, http.StatusInternalServerError, "admin/dashboard", gin.H{"Title": "Dashboard", "Section": "", "Counts": services.Counts{}, "Error": "Could not load counts"})
		return
	}
	statuses := make([]statusCount, 0, len(models.PostStatuses))
	for _, s := range models.PostStatuses {
		statuses = append(statuses, statusCount{Status: s, Count: counts.ByStatus[s]})
	}
	h.render(c, http.StatusOK, "admin/dashboard", gin.H{
		"Title":    "Dashboard",
		"Section":  "",
		"Counts":   counts,
		"Statuses": statuses,
	})
}

// ---- users ----

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.users.ListWithActivity(c.Request.Context())
	if err != nil {
		h.listFailed(c, "users", err)
		return
	}
	g := grid{Columns: []string{"id", "username", "email", "is_verified", "created_at", "posts", "comments", "likes", "followed_by", "following"}}
	for _, u := range users {
		postIDs := make([]uint, 0, len(u.Posts))
		for _, p := range u.Posts {
			postIDs = append(postIDs, p.ID)
		}
		commentIDs := make([]uint, 0, len(u.Comments))
		for _, cm := range u.Comments {
			commentIDs = append(commentIDs, cm.ID)
		}
		likedIDs := make([]uint, 0, len(u.Likes))
		for _, l := range u.Likes {
			likedIDs = append(likedIDs, l.PostID)
		}
		resp := u.Serialize()
		g.Rows = append(g.Rows, gridRow{ID: u.ID, Cells: []template.HTML{
			text(strconv.FormatUint(uint64(u.ID), 10)),
			text(u.Username),
			text(u.Email),
			text(strconv.FormatBool(u.IsVerified)),
			text(u.CreatedAt.Format("2006-01-02 15:04")),
			text(joinIDs(postIDs)),
			text(joinIDs(commentIDs)),
			text(joinIDs(likedIDs)),
			text(strings.Join(resp.Followers, ", ")),
			text(strings.Join(resp.Following, ", ")),
		}})
	}
	h.renderList(c, "users", g)
}

func (h *AdminHandler) NewUser(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "users", "/admin/users/new", "New user", userFields("", "", "", false), "")
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	in := services.UserInput{
		Username:   formString(c, "username"),
		Password:   formString(c, "password"),
		Email:      formString(c, "email"),
		BirthDate:  formString(c, "birth_date"),
		IsVerified: formBool(c, "is_verified"),
	}
	user, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.renderForm(c, failStatus(err), "users", "/admin/users/new", "New user", postedUserFields(c), msg(err))
		return
	}
	h.stats.Invalidate()
	h.redirect(c, "/admin/users", "Created "+user.String())
}

func (h *AdminHandler) EditUser(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/users", services.ErrUserNotFound)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.redirectError(c, "/admin/users", err)
		return
	}
	bd := ""
	if s := models.FormatDate(user.BirthDate); s != nil {
		bd = *s
	}
	h.renderForm(c, http.StatusOK, "users", editPath("users", id), "Edit "+user.String(), userFields(user.Username, user.Email, bd, user.IsVerified), "")
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/users", services.ErrUserNotFound)
		return
	}
	birthDate := strings.TrimSpace(c.PostForm("birth_date"))
	in := services.UserInput{
		Username:   formString(c, "username"),
		Password:   formString(c, "password"),
		Email:      formString(c, "email"),
		BirthDate:  &birthDate,
		IsVerified: formBool(c, "is_verified"),
	}
	user, err := h.users.Update(c.Request.Context(), id, in)
	if err != nil {
		h.renderForm(c, failStatus(err), "users", editPath("users", id), "Edit user", postedUserFields(c), msg(err))
		return
	}
	h.redirect(c, "/admin/users", "Saved "+user.String())
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.deleteRecord(c, "users", services.ErrUserNotFound, func(id uint) error {
		return h.users.Delete(c.Request.Context(), id)
	})
}

func userFields(username, email, birthDate string, verified bool) []formField {
	return []formField{
		{Name: "username", Label: "Username", Kind: "text", Value: username},
		{Name: "email", Label: "Email", Kind: "email", Value: email},
		{Name: "password", Label: "Password", Kind: "password"},
		{Name: "birth_date", Label: "Birth date", Kind: "date", Value: birthDate},
		{Name: "is_verified", Label: "Verified", Kind: "checkbox", Checked: verified},
	}
}

func postedUserFields(c *gin.Context) []formField {
	return userFields(c.PostForm("username"), c.PostForm("email"), c.PostForm("birth_date"), c.PostForm("is_verified") == "on")
}

// ---- posts ----

func (h *AdminHandler) Posts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.listFailed(c, "posts", err)
		return
	}
	g := grid{Columns: []string{"id", "description", "media_url", "status", "created_at", "user_id", "user", "comments", "liked_by"}}
	for _, p := range posts {
		resp := p.Serialize()
		g.Rows = append(g.Rows, gridRow{ID: p.ID, Cells: []template.HTML{
			text(strconv.FormatUint(uint64(p.ID), 10)),
			utils.RenderMarkdown(utils.Truncate(p.Description, 200)),
			utils.MediaPreview(p.MediaURL),
			text(string(p.Status)),
			text(p.CreatedAt.Format("2006-01-02 15:04")),
			text(strconv.FormatUint(uint64(p.UserID), 10)),
			text(p.User.Username),
			text(strconv.Itoa(resp.CommentsCount)),
			text(strings.Join(resp.LikedBy, ", ")),
		}})
	}
	h.renderList(c, "posts", g)
}

func (h *AdminHandler) NewPost(c *gin.Context) {
	fields, err := h.postFields(c, "", "", string(models.PostStatusApproved), 0)
	if err != nil {
		h.listFailed(c, "posts", err)
		return
	}
	h.renderForm(c, http.StatusOK, "posts", "/admin/posts/new", "New post", fields, "")
}

func (h *AdminHandler) CreatePost(c *gin.Context) {
	in := postInput(c)
	post, err := h.posts.Create(c.Request.Context(), in)
	if err != nil {
		h.postFormFailed(c, "/admin/posts/new", "New post", err)
		return
	}
	h.stats.Invalidate()
	h.redirect(c, "/admin/posts", "Created "+post.String())
}

func (h *AdminHandler) EditPost(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/posts", services.ErrPostNotFound)
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.redirectError(c, "/admin/posts", err)
		return
	}
	fields, err := h.postFields(c, post.Description, post.MediaURL, string(post.Status), post.UserID)
	if err != nil {
		h.listFailed(c, "posts", err)
		return
	}
	h.renderForm(c, http.StatusOK, "posts", editPath("posts", id), "Edit "+post.String(), fields, "")
}

func (h *AdminHandler) UpdatePost(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/posts", services.ErrPostNotFound)
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, postInput(c))
	if err != nil {
		h.postFormFailed(c, editPath("posts", id), "Edit post", err)
		return
	}
	h.stats.Invalidate()
	h.redirect(c, "/admin/posts", "Saved "+post.String())
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	h.deleteRecord(c, "posts", services.ErrPostNotFound, func(id uint) error {
		return h.posts.Delete(c.Request.Context(), id)
	})
}

func postInput(c *gin.Context) services.PostInput {
	description := c.PostForm("description")
	mediaURL := strings.TrimSpace(c.PostForm("media_url"))
	in := services.PostInput{
		Status: formString(c, "status"),
		UserID: formUint(c, "user_id"),
	}
	if description != "" {
		in.Description = &description
	}
	if mediaURL != "" {
		in.MediaURL = &mediaURL
	}
	return in
}

func (h *AdminHandler) postFormFailed(c *gin.Context, action, title string, cause error) {
	userID, _ := utils.ParseID(c.PostForm("user_id"))
	fields, err := h.postFields(c, c.PostForm("description"), c.PostForm("media_url"), c.PostForm("status"), userID)
	if err != nil {
		h.listFailed(c, "posts", err)
		return
	}
	h.renderForm(c, failStatus(cause), "posts", action, title, fields, msg(cause))
}

func (h *AdminHandler) postFields(c *gin.Context, description, mediaURL, status string, userID uint) ([]formField, error) {
	userOpts, err := h.userOptions(c, userID)
	if err != nil {
		return nil, err
	}
	statusOpts := make([]option, 0, len(models.PostStatuses))
	for _, s := range models.PostStatuses {
		statusOpts = append(statusOpts, option{Value: string(s), Label: string(s), Selected: string(s) == status})
	}
	return []formField{
		{Name: "description", Label: "Description", Kind: "textarea", Value: description},
		{Name: "media_url", Label: "Media URL", Kind: "text", Value: mediaURL},
		{Name: "status", Label: "Status", Kind: "select", Options: statusOpts},
		{Name: "user_id", Label: "User", Kind: "select", Options: userOpts},
	}, nil
}

// ---- comments ----

func (h *AdminHandler) Comments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context())
	if err != nil {
		h.listFailed(c, "comments", err)
		return
	}
	g := grid{Columns: []string{"id", "text", "created_at", "user_id", "user", "post_id", "post"}}
	for _, cm := range comments {
		g.Rows = append(g.Rows, gridRow{ID: cm.ID, Cells: []template.HTML{
			text(strconv.FormatUint(uint64(cm.ID), 10)),
			utils.RenderMarkdown(utils.Truncate(cm.Text, 200)),
			text(cm.CreatedAt.Format("2006-01-02 15:04")),
			text(strconv.FormatUint(uint64(cm.UserID), 10)),
			text(cm.User.Username),
			text(strconv.FormatUint(uint64(cm.PostID), 10)),
			text(cm.Post.String()),
		}})
	}
	h.renderList(c, "comments", g)
}

func (h *AdminHandler) NewComment(c *gin.Context) {
	fields, err := h.commentFields(c, "", 0, 0)
	if err != nil {
		h.listFailed(c, "comments", err)
		return
	}
	h.renderForm(c, http.StatusOK, "comments", "/admin/comments/new", "New comment", fields, "")
}

func (h *AdminHandler) CreateComment(c *gin.Context) {
	in := commentInput(c)
	postID, ok := utils.ParseID(c.PostForm("post_id"))
	if !ok {
		h.commentFormFailed(c, "/admin/comments/new", "New comment", services.ErrPostNotFound)
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), postID, in)
	if err != nil {
		h.commentFormFailed(c, "/admin/comments/new", "New comment", err)
		return
	}
	h.stats.Invalidate()
	h.redirect(c, "/admin/comments", "Created "+comment.String())
}

func (h *AdminHandler) EditComment(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/comments", services.ErrCommentNotFound)
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		h.redirectError(c, "/admin/comments", err)
		return
	}
	fields, err := h.commentFields(c, comment.Text, comment.UserID, comment.PostID)
	if err != nil {
		h.listFailed(c, "comments", err)
		return
	}
	h.renderForm(c, http.StatusOK, "comments", editPath("comments", id), "Edit "+comment.String(), fields, "")
}

func (h *AdminHandler) UpdateComment(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, "/admin/comments", services.ErrCommentNotFound)
		return
	}
	current, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		h.redirectError(c, "/admin/comments", err)
		return
	}
	in := commentInput(c)
	in.PostID = formUint(c, "post_id")
	comment, err := h.comments.Update(c.Request.Context(), current.PostID, id, in)
	if err != nil {
		h.commentFormFailed(c, editPath("comments", id), "Edit comment", err)
		return
	}
	h.redirect(c, "/admin/comments", "Saved "+comment.String())
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	h.deleteRecord(c, "comments", services.ErrCommentNotFound, func(id uint) error {
		comment, err := h.comments.Get(c.Request.Context(), id)
		if err != nil {
			return err
		}
		return h.comments.Delete(c.Request.Context(), comment.PostID, id)
	})
}

func commentInput(c *gin.Context) services.CommentInput {
	in := services.CommentInput{UserID: formUint(c, "user_id")}
	if t := c.PostForm("text"); t != "" {
		in.Text = &t
	}
	return in
}

func (h *AdminHandler) commentFormFailed(c *gin.Context, action, title string, cause error) {
	userID, _ := utils.ParseID(c.PostForm("user_id"))
	postID, _ := utils.ParseID(c.PostForm("post_id"))
	fields, err := h.commentFields(c, c.PostForm("text"), userID, postID)
	if err != nil {
		h.listFailed(c, "comments", err)
		return
	}
	h.renderForm(c, failStatus(cause), "comments", action, title, fields, msg(cause))
}

func (h *AdminHandler) commentFields(c *gin.Context, body string, userID, postID uint) ([]formField, error) {
	userOpts, err := h.userOptions(c, userID)
	if err != nil {
		return nil, err
	}
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	postOpts := make([]option, 0, len(posts))
	for _, p := range posts {
		postOpts = append(postOpts, option{
			Value:    strconv.FormatUint(uint64(p.ID), 10),
			Label:    p.String() + " " + utils.Truncate(p.Description, 40),
			Selected: p.ID == postID,
		})
	}
	return []formField{
		{Name: "text", Label: "Text", Kind: "textarea", Value: body},
		{Name: "user_id", Label: "User", Kind: "select", Options: userOpts},
		{Name: "post_id", Label: "Post", Kind: "select", Options: postOpts},
	}, nil
}

// ---- shared ----

func (h *AdminHandler) renderList(c *gin.Context, section string, g grid) {
	h.render(c, http.StatusOK, "admin/list", gin.H{
		"Title":   strings.ToUpper(section[:1]) + section[1:],
		"Section": section,
		"Base":    "/admin/" + section,
		"Grid":    g,
	})
}

func (h *AdminHandler) renderForm(c *gin.Context, code int, section, action, title string, fields []formField, errMsg string) {
	h.render(c, code, "admin/form", gin.H{
		"Title":   title,
		"Section": section,
		"Base":    "/admin/" + section,
		"Action":  action,
		"Fields":  fields,
		"Error":   errMsg,
	})
}

func (h *AdminHandler) listFailed(c *gin.Context, section string, err error) {
	logger.Error.Printf("admin: %s: %v", section, err)
	h.render(c, http.StatusInternalServerError, "admin/list", gin.H{
		"Title":   section,
		"Section": section,
		"Base":    "/admin/" + section,
		"Grid":    grid{},
		"Error":   "Could not load " + section,
	})
}

func (h *AdminHandler) deleteRecord(c *gin.Context, section string, notFound error, del func(id uint) error) {
	list := "/admin/" + section
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		h.redirectError(c, list, notFound)
		return
	}
	if err := del(id); err != nil {
		if !services.IsNotFound(err) {
			logger.Error.Printf("admin: delete %s %d: %v", section, id, err)
		}
		h.redirectError(c, list, err)
		return
	}
	h.stats.Invalidate()
	h.redirect(c, list, "Deleted "+strings.TrimSuffix(section, "s")+" "+strconv.FormatUint(uint64(id), 10))
}

func (h *AdminHandler) userOptions(c *gin.Context, selected uint) ([]option, error) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	opts := make([]option, 0, len(users))
	for _, u := range users {
		opts = append(opts, option{
			Value:    strconv.FormatUint(uint64(u.ID), 10),
			Label:    u.String(),
			Selected: u.ID == selected,
		})
	}
	return opts, nil
}

func editPath(section string, id uint) string {
	return "/admin/" + section + "/" + strconv.FormatUint(uint64(id), 10) + "/edit"
}

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ", ")
}

func formString(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil
	}
	return &v
}

func formUint(c *gin.Context, key string) *uint {
	id, ok := utils.ParseID(c.PostForm(key))
	if !ok {
		return nil
	}
	return &id
}

func formBool(c *gin.Context, key string) *bool {
	v := c.PostForm(key) == "on"
	return &v
}
