package httpapi

import (
	"strconv"
	"strings"

	"memorial-registry/internal/audit"
	"memorial-registry/internal/moderation"
	"memorial-registry/internal/reporting"
	"memorial-registry/internal/victims"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Victims    *victims.Service
	Moderation *moderation.Service
	Audit      *audit.Service
	Reporting  *reporting.Service
}

// RegisterPublic mounts the visitor routes on g. submitGate runs in front of
// the submission endpoints only.
func (h Handlers) RegisterPublic(g gin.IRouter, submitGate ...gin.HandlerFunc) {
	g.GET("/victims", h.ListVictims)
	g.GET("/victims/:slug", h.GetVictim)
	g.GET("/suggest", h.Suggest)
	g.GET("/tags", h.ListTags)
	g.GET("/summary", h.Summary)

	submit := append(append([]gin.HandlerFunc{}, submitGate...), h.Submit)
	g.POST("/submissions", submit...)
	submitFor := append(append([]gin.HandlerFunc{}, submitGate...), h.SubmitForVictim)
	g.POST("/victims/:slug/submissions", submitFor...)
}

// RegisterAdmin mounts the staff routes on g. Callers put authentication
// and the staff role gate on g beforehand.
func (h Handlers) RegisterAdmin(g gin.IRouter) {
	g.GET("/victims", h.AdminListVictims)
	g.GET("/victims/:id", h.AdminGetVictim)
	g.POST("/victims", h.CreateVictim)
	g.PUT("/victims/:id", h.UpdateVictim)
	g.DELETE("/victims/:id", h.DeleteVictim)
	g.POST("/victims/:id/tags/:tag_id", h.AttachTag)
	g.DELETE("/victims/:id/tags/:tag_id", h.DetachTag)

	g.POST("/tags", h.CreateTag)
	g.PUT("/tags/:id", h.UpdateTag)
	g.DELETE("/tags/:id", h.DeleteTag)

	g.POST("/sources", h.CreateSource)
	g.PUT("/sources/:id", h.UpdateSource)
	g.DELETE("/sources/:id", h.DeleteSource)

	g.POST("/photos", h.CreatePhoto)
	g.PUT("/photos/:id", h.UpdatePhoto)
	g.DELETE("/photos/:id", h.DeletePhoto)

	g.GET("/submissions", h.ListSubmissions)
	g.GET("/submissions/:id", h.GetSubmission)
	g.POST("/submissions/review", h.ReviewBatch)
	g.POST("/submissions/:id/review", h.Review)

	g.GET("/audit", h.ListAudit)
	g.DELETE("/audit", h.PurgeAudit)
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return nil, false
	}
	return &n, true
}
