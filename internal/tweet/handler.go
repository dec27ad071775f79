package tweet

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/logs"
)

const maxTimelineLimit = 100

type Handler struct {
	composers *Composers
	reader    Reader
	auth      identity.Provider
	lang      string
	limit     int
}

func NewHandler(composers *Composers, reader Reader, auth identity.Provider, lang string, limit int) *Handler {
	if limit <= 0 || limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}
	return &Handler{composers: composers, reader: reader, auth: auth, lang: lang, limit: limit}
}

// Register mounts the tweet routes. requireAuth guards writes and
// optionalAuth lets anonymous viewers read.
func (h *Handler) Register(api *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	api.POST("/tweets", requireAuth, h.CreateTweet)
	api.GET("/tweets", optionalAuth, h.ListTweets)
	api.GET("/tweets/:id", optionalAuth, h.GetTweet)
}

func (h *Handler) viewer(c *gin.Context) *identity.Actor {
	actor, ok := h.auth.CurrentActor(c.Request.Context())
	if !ok {
		return nil
	}
	return &actor
}

func (h *Handler) fail(c *gin.Context, status int, key string) {
	c.JSON(status, gin.H{"error": Message(h.lang, key)})
}

// CreateTweet POST /api/tweets
func (h *Handler) CreateTweet(c *gin.Context) {
	route := c.FullPath()

	actor, ok := h.auth.CurrentActor(c.Request.Context())
	if !ok {
		h.fail(c, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	form := h.composers.For(actor.ID)

	draft := Draft{Text: c.PostForm("tweet")}
	header, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		h.fail(c, http.StatusBadRequest, msgBadAttachment)
		return
	default:
		attachment, err := readAttachment(header)
		if err != nil {
			h.fail(c, http.StatusBadRequest, msgBadAttachment)
			logs.LogJSON(logs.Warn, "Attachment unreadable", map[string]interface{}{
				"route":  route,
				"userID": actor.ID,
				"error":  err.Error(),
			})
			return
		}
		draft.Attachment = &attachment
	}

	res, err := form.SubmitDraft(c.Request.Context(), draft)
	if err != nil {
		h.rejectAttachment(c, err)
		return
	}
	switch res.Outcome {
	case OutcomeSubmitted:
		c.JSON(http.StatusCreated, gin.H{
			"message": Message(h.lang, msgPosted),
			"tweet":   Render(*res.Post, &actor),
		})
		logs.LogJSON(logs.Info, "Tweet posted", map[string]interface{}{
			"route":   route,
			"userID":  actor.ID,
			"tweetID": res.Post.ID,
		})
	case OutcomeIgnored:
		h.fail(c, ignoredStatus(res.Reason), ignoredMessage(res.Reason))
	default:
		body := gin.H{"error": Message(h.lang, msgSubmitFailed), "step": res.Step}
		if res.Post != nil {
			body["tweet"] = Render(*res.Post, &actor)
		}
		c.JSON(http.StatusBadGateway, body)
	}
}

func (h *Handler) rejectAttachment(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr) && verr.Code == msgFileTooLarge:
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": verr.Message})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": verr.Message})
	default:
		h.fail(c, http.StatusBadRequest, msgBadAttachment)
	}
}

func ignoredStatus(r Reason) int {
	switch r {
	case ReasonNoActor:
		return http.StatusUnauthorized
	case ReasonBusy:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func ignoredMessage(r Reason) string {
	switch r {
	case ReasonNoActor:
		return msgUnauthorized
	case ReasonBusy:
		return msgBusy
	case ReasonTextTooLong:
		return msgTextTooLong
	default:
		return msgEmptyText
	}
}

// readAttachment loads the upload into memory unless it is already known to
// exceed the limit, in which case only its size is reported.
func readAttachment(header *multipart.FileHeader) (Attachment, error) {
	a := Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if a.Size > MaxAttachmentBytes {
		return a, nil
	}

	file, err := header.Open()
	if err != nil {
		return Attachment{}, fmt.Errorf("ouverture fichier: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAttachmentBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("lecture fichier: %w", err)
	}
	a.Data = data
	return a, nil
}

// ListTweets GET /api/tweets
func (h *Handler) ListTweets(c *gin.Context) {
	limit := h.limit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit invalide"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	posts, err := h.reader.ListPosts(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, msgListFailed)
		logs.LogJSON(logs.Error, "Timeline query failed", map[string]interface{}{
			"route": c.FullPath(),
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tweets": RenderAll(posts, h.viewer(c))})
}

// GetTweet GET /api/tweets/:id
func (h *Handler) GetTweet(c *gin.Context) {
	id := c.Param("id")

	post, err := h.reader.GetPost(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.fail(c, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.fail(c, http.StatusInternalServerError, msgListFailed)
		logs.LogJSON(logs.Error, "Tweet query failed", map[string]interface{}{
			"route":   c.FullPath(),
			"tweetID": id,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tweet": Render(post, h.viewer(c))})
}
