package httpapi

import (
	"net/http"
	"strings"
	"time"

	"memorial-registry/internal/audit"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/moderation"
	"memorial-registry/internal/victims"

	"github.com/gin-gonic/gin"
)

// victimRequest carries dates as YYYY-MM-DD strings.
type victimRequest struct {
	victims.VictimInput
	DateOfBirth string `json:"date_of_birth"`
	DateOfDeath string `json:"date_of_death"`
}

func (r victimRequest) input() (victims.VictimInput, error) {
	in := r.VictimInput
	var err error
	if in.DateOfBirth, err = victims.ParseDate("date_of_birth", r.DateOfBirth); err != nil {
		return victims.VictimInput{}, err
	}
	if in.DateOfDeath, err = victims.ParseDate("date_of_death", r.DateOfDeath); err != nil {
		return victims.VictimInput{}, err
	}
	return in, nil
}

type sourceRequest struct {
	victims.SourceInput
	PublicationDate string `json:"publication_date"`
}

func (r sourceRequest) input() (victims.SourceInput, error) {
	in := r.SourceInput
	var err error
	in.PublicationDate, err = victims.ParseDate("publication_date", r.PublicationDate)
	return in, err
}

func actor(c *gin.Context) auth.Actor { return auth.ActorFrom(c.Request.Context()) }

// --- Victims ---

func (h Handlers) AdminListVictims(c *gin.Context) {
	q, ok := searchQuery(c)
	if !ok {
		return
	}
	page, err := h.Victims.Search(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOut(page, staffVictimOut))
}

func (h Handlers) AdminGetVictim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Victims.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, staffVictimOut(v))
}

func (h Handlers) CreateVictim(c *gin.Context) {
	var req victimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	in, err := req.input()
	if err != nil {
		abortWithError(c, err)
		return
	}
	v, err := h.Victims.CreateVictim(c.Request.Context(), actor(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staffVictimOut(v))
}

func (h Handlers) UpdateVictim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req victimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	in, err := req.input()
	if err != nil {
		abortWithError(c, err)
		return
	}
	v, err := h.Victims.UpdateVictim(c.Request.Context(), actor(c), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, staffVictimOut(v))
}

func (h Handlers) DeleteVictim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Victims.DeleteVictim(c.Request.Context(), actor(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) AttachTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}
	l, err := h.Victims.AttachTag(c.Request.Context(), actor(c), id, tagID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": l.ID, "victim_id": l.VictimID, "tag_id": l.TagID})
}

func (h Handlers) DetachTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}
	if err := h.Victims.DetachTag(c.Request.Context(), actor(c), id, tagID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tags ---

func (h Handlers) CreateTag(c *gin.Context) {
	var in victims.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json")
		return
	}
	t, err := h.Victims.CreateTag(c.Request.Context(), actor(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug})
}

func (h Handlers) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in victims.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json")
		return
	}
	t, err := h.Victims.UpdateTag(c.Request.Context(), actor(c), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug})
}

func (h Handlers) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Victims.DeleteTag(c.Request.Context(), actor(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Sources ---

func (h Handlers) CreateSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	in, err := req.input()
	if err != nil {
		abortWithError(c, err)
		return
	}
	s, err := h.Victims.CreateSource(c.Request.Context(), actor(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sourceOut(s))
}

func (h Handlers) UpdateSource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	in, err := req.input()
	if err != nil {
		abortWithError(c, err)
		return
	}
	s, err := h.Victims.UpdateSource(c.Request.Context(), actor(c), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sourceOut(s))
}

func (h Handlers) DeleteSource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Victims.DeleteSource(c.Request.Context(), actor(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Photos ---

func (h Handlers) CreatePhoto(c *gin.Context) {
	var in victims.PhotoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := h.Victims.CreatePhoto(c.Request.Context(), actor(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photoOut(p))
}

func (h Handlers) UpdatePhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in victims.PhotoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := h.Victims.UpdatePhoto(c.Request.Context(), actor(c), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoOut(p))
}

func (h Handlers) DeletePhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Victims.DeletePhoto(c.Request.Context(), actor(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Moderation ---

func (h Handlers) ListSubmissions(c *gin.Context) {
	f := moderation.ListFilter{Status: moderation.Status(strings.TrimSpace(c.Query("status")))}
	vid, ok := queryInt(c, "victim_id")
	if !ok {
		return
	}
	if vid != nil {
		f.VictimID = audit.ID(int64(*vid))
	}
	var limit, offset *int
	if limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	if offset, ok = queryInt(c, "offset"); !ok {
		return
	}
	if limit != nil {
		f.Limit = *limit
	}
	if offset != nil {
		f.Offset = *offset
	}
	subs, err := h.Moderation.List(c.Request.Context(), actor(c), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]submissionDTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, submissionOut(s))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h Handlers) GetSubmission(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.Moderation.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissionOut(s))
}

type reviewRequest struct {
	Decision moderation.Decision `json:"decision"`
	Notes    string              `json:"notes"`
}

func (h Handlers) Review(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	s, err := h.Moderation.Review(c.Request.Context(), actor(c), id, req.Decision, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissionOut(s))
}

type batchReviewRequest struct {
	IDs      []int64             `json:"ids"`
	Decision moderation.Decision `json:"decision"`
	Notes    string              `json:"notes"`
}

func (h Handlers) ReviewBatch(c *gin.Context) {
	var req batchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	res, err := h.Moderation.ReviewBatch(c.Request.Context(), actor(c), req.IDs, req.Decision, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Audit ---

func queryTime(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, name+" must be an RFC 3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

func (h Handlers) ListAudit(c *gin.Context) {
	f := audit.Filter{
		Action:      audit.Action(strings.TrimSpace(c.Query("action"))),
		TargetModel: strings.TrimSpace(c.Query("target_model")),
		ActorUserID: strings.TrimSpace(c.Query("actor_user_id")),
	}
	var ok bool
	if f.Since, ok = queryTime(c, "since"); !ok {
		return
	}
	if f.Until, ok = queryTime(c, "until"); !ok {
		return
	}
	target, ok := queryInt(c, "target_id")
	if !ok {
		return
	}
	if target != nil {
		f.TargetID = audit.ID(int64(*target))
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	if limit != nil {
		f.Limit = *limit
	}
	if offset != nil {
		f.Offset = *offset
	}
	entries, err := h.Audit.List(c.Request.Context(), actor(c), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// PurgeAudit deletes entries older than ?before=. Superuser only.
func (h Handlers) PurgeAudit(c *gin.Context) {
	before, ok := queryTime(c, "before")
	if !ok {
		return
	}
	n, err := h.Audit.Purge(c.Request.Context(), actor(c), before)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
