package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"memorial-registry/internal/auth"
	"memorial-registry/internal/moderation"
	"memorial-registry/internal/victims"

	"github.com/gin-gonic/gin"
)

// searchQuery reads the visitor search parameters. A page that is not a
// number is treated as the first page.
func searchQuery(c *gin.Context) (victims.Query, bool) {
	q := victims.Query{
		Text: c.Query("q"),
		Filters: victims.FilterSet{
			City:     strings.TrimSpace(c.Query("city")),
			Province: strings.TrimSpace(c.Query("province")),
			Country:  strings.TrimSpace(c.Query("country")),
			Status:   victims.VerificationStatus(strings.TrimSpace(c.Query("verification_status"))),
			Tag:      strings.TrimSpace(c.Query("tag")),
		},
		Sort: victims.SortKey(strings.TrimSpace(c.Query("sort"))),
	}
	var ok bool
	if q.Filters.AgeMin, ok = queryInt(c, "age_min"); !ok {
		return victims.Query{}, false
	}
	if q.Filters.AgeMax, ok = queryInt(c, "age_max"); !ok {
		return victims.Query{}, false
	}
	size, ok := queryInt(c, "page_size")
	if !ok {
		return victims.Query{}, false
	}
	if size != nil {
		q.PageSize = *size
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	return q, true
}

func (h Handlers) ListVictims(c *gin.Context) {
	q, ok := searchQuery(c)
	if !ok {
		return
	}
	page, err := h.Victims.Search(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOut(page, publicVictimOut))
}

func (h Handlers) GetVictim(c *gin.Context) {
	d, err := h.Victims.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailOut(d))
}

// Suggest answers name autocompletion.
func (h Handlers) Suggest(c *gin.Context) {
	names, err := h.Victims.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"results": names})
}

func (h Handlers) ListTags(c *gin.Context) {
	tags, err := h.Victims.ListTags(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tagsOut(tags)})
}

func (h Handlers) Summary(c *gin.Context) {
	out, err := h.Reporting.Summary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) Submit(c *gin.Context) {
	var req moderation.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	h.submit(c, req)
}

// SubmitForVictim files a correction about the victim named in the path.
func (h Handlers) SubmitForVictim(c *gin.Context) {
	var req moderation.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	req.VictimID = nil
	req.VictimSlug = c.Param("slug")
	h.submit(c, req)
}

func (h Handlers) submit(c *gin.Context, req moderation.SubmitRequest) {
	sub, err := h.Moderation.Submit(c.Request.Context(), auth.ActorFrom(c.Request.Context()), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submissionReceipt{ID: sub.ID, Status: string(sub.Status), CreatedAt: sub.CreatedAt})
}
