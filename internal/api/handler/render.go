package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MaxCommentLength bounds a comment body after sanitising.
const MaxCommentLength = 2000

// CommentRenderer sanitises comment input and renders stored comments as HTML.
type CommentRenderer struct {
	markdown goldmark.Markdown
	strict   *bluemonday.Policy
	ugc      *bluemonday.Policy
}

// NewCommentRenderer creates a renderer with GFM markdown and a UGC output policy.
func NewCommentRenderer() *CommentRenderer {
	ugc := bluemonday.UGCPolicy()
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	ugc.RequireNoReferrerOnLinks(true)

	return &CommentRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		strict: bluemonday.StrictPolicy(),
		ugc:    ugc,
	}
}

// Sanitize strips all markup from raw comment input.
func (r *CommentRenderer) Sanitize(text string) string {
	return strings.TrimSpace(r.strict.Sanitize(text))
}

// Render converts a stored comment body to safe HTML.
func (r *CommentRenderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		return r.ugc.Sanitize(text)
	}
	return string(r.ugc.SanitizeBytes(buf.Bytes()))
}

// CommentView is a comment with its rendered body.
type CommentView struct {
	domain.Comment
	HTML string `json:"html"`
}

// MemeView is a meme as returned by the API, with rendered comments.
type MemeView struct {
	domain.Meme
	Comments []CommentView `json:"comments"`
}

func (r *CommentRenderer) comment(c domain.Comment) CommentView {
	return CommentView{Comment: c, HTML: r.Render(c.Text)}
}

func (r *CommentRenderer) meme(m domain.Meme) MemeView {
	view := MemeView{Meme: m, Comments: make([]CommentView, len(m.Comments))}
	for i, c := range m.Comments {
		view.Comments[i] = r.comment(c)
	}
	return view
}

func (r *CommentRenderer) memes(ms []domain.Meme) []MemeView {
	out := make([]MemeView, len(ms))
	for i, m := range ms {
		out[i] = r.meme(m)
	}
	return out
}

// internalError logs err against the request and answers 500 with msg.
func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	ctx := c.Request.Context()
	logger.CtxError(ctx, "%s: error=%v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "request_id": logger.GetRequestID(ctx)})
}
