package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PagesHandler renders the console's server-side pages. The gatekeeper has
// already decided admission by the time a handler here runs, so rendering
// never re-checks authorization.
type PagesHandler struct {
	templates *template.Template
}

// NewPagesHandler parses the embedded page templates.
func NewPagesHandler() (*PagesHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PagesHandler{templates: tmpl}, nil
}

type pageData struct {
	Title       string
	User        *dto.SessionUser
	CallbackURL string
}

func (h *PagesHandler) render(c *gin.Context, name, title string) {
	data := pageData{Title: title}
	if sess, ok := middleware.SessionFrom(c); ok && sess.Authenticated {
		user := dto.NewSessionUser(sess)
		data.User = &user
	}
	data.CallbackURL = c.Query("callbackUrl")

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// Login renders the sign-in screen.
// GET /login
func (h *PagesHandler) Login(c *gin.Context) { h.render(c, "login.html", "Iniciar sesión") }

// Dashboard renders the landing page.
// GET /dashboard
func (h *PagesHandler) Dashboard(c *gin.Context) { h.render(c, "dashboard.html", "Panel") }

// Users renders the user directory screen.
// GET /user
func (h *PagesHandler) Users(c *gin.Context) { h.render(c, "users.html", "Usuarios") }

// Reports renders the reports screen.
// GET /reports
func (h *PagesHandler) Reports(c *gin.Context) { h.render(c, "reports.html", "Reportes") }

// Admin renders the administration screen.
// GET /admin
func (h *PagesHandler) Admin(c *gin.Context) { h.render(c, "admin.html", "Administración") }

// AdminRoles renders the role management screen.
// GET /admin/roles
func (h *PagesHandler) AdminRoles(c *gin.Context) { h.render(c, "admin_roles.html", "Roles y permisos") }

// AccessDenied renders the denial page.
// GET /access-denied
func (h *PagesHandler) AccessDenied(c *gin.Context) {
	h.render(c, "access_denied.html", "Acceso denegado")
}

// Blocked renders the page shown to accounts barred from the web console.
// GET /blocked
func (h *PagesHandler) Blocked(c *gin.Context) { h.render(c, "blocked.html", "Cuenta bloqueada") }
