package tweet

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/logs"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSubmitted
	OutcomeFailed
)

// Reason explains an ignored submission.
type Reason string

const (
	ReasonNoActor     Reason = "no_actor"
	ReasonBusy        Reason = "busy"
	ReasonEmptyText   Reason = "empty_text"
	ReasonTextTooLong Reason = "text_too_long"
)

// Step names the remote call that failed.
type Step string

const (
	StepCreate  Step = "create"
	StepUpload  Step = "upload"
	StepResolve Step = "resolve"
	StepPatch   Step = "patch"
)

// Result reports how a submission ended. Post is set on success, and on
// failure once the record exists.
type Result struct {
	Outcome Outcome
	Reason  Reason
	Step    Step
	Post    *Post
	Err     error
}

var ErrBusy = errors.New("formulaire occupé")

// ValidationError rejects an attachment before it reaches the draft.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type FormOption func(*Form)

func WithClock(now func() time.Time) FormOption {
	return func(f *Form) { f.now = now }
}

func WithLanguage(lang string) FormOption {
	return func(f *Form) { f.lang = lang }
}

// WithMediaPrefix sets the folder attachments are stored under.
func WithMediaPrefix(prefix string) FormOption {
	return func(f *Form) { f.mediaPrefix = strings.Trim(prefix, "/") }
}

// WithPublisher is called with every fully published tweet.
func WithPublisher(publish func(Post)) FormOption {
	return func(f *Form) { f.publish = publish }
}

// Form is one tweet composer. At most one submission runs at a time.
type Form struct {
	auth  identity.Provider
	docs  DocumentStore
	blobs BlobStore

	now         func() time.Time
	lang        string
	mediaPrefix string
	publish     func(Post)

	mu    sync.Mutex
	state State
	draft Draft
}

func NewForm(auth identity.Provider, docs DocumentStore, blobs BlobStore, opts ...FormOption) *Form {
	f := &Form{
		auth:        auth,
		docs:        docs,
		blobs:       blobs,
		now:         time.Now,
		lang:        defaultLanguage,
		mediaPrefix: Collection,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Busy() bool {
	return f.State() != StateIdle
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// SetText replaces the draft text. It returns false while submitting.
func (f *Form) SetText(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return false
	}
	f.draft.Text = text
	return true
}

// SelectAttachment sets the draft attachment. Oversized and non-image files
// are rejected and the previous attachment is kept.
func (f *Form) SelectAttachment(a Attachment) error {
	a, err := f.checkAttachment(a)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return ErrBusy
	}
	f.draft.Attachment = &a
	return nil
}

func (f *Form) ClearAttachment() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return false
	}
	f.draft.Attachment = nil
	return true
}

func (f *Form) checkAttachment(a Attachment) (Attachment, error) {
	if n := int64(len(a.Data)); n > a.Size {
		a.Size = n
	}
	if a.Size > MaxAttachmentBytes {
		return a, &ValidationError{Code: msgFileTooLarge, Message: Message(f.lang, msgFileTooLarge)}
	}
	if a.ContentType == "" && len(a.Data) > 0 {
		a.ContentType = http.DetectContentType(a.Data)
	}
	if !isImage(a.ContentType) {
		return a, &ValidationError{Code: msgNotImage, Message: Message(f.lang, msgNotImage)}
	}
	return a, nil
}

func isImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// Submit publishes the draft: create the record, then upload the attachment
// and patch the record with its URL. Failures are logged and never rolled
// back, so a tweet may exist without its photo.
func (f *Form) Submit(ctx context.Context) Result {
	return f.submit(ctx, nil)
}

// SubmitDraft installs d as the draft and submits it while holding the form,
// so a concurrent editor cannot change what gets published. An attachment
// rejected by validation is returned as a *ValidationError and the form is
// left untouched, as is a form that is busy or has no actor.
func (f *Form) SubmitDraft(ctx context.Context, d Draft) (Result, error) {
	if d.Attachment != nil {
		a, err := f.checkAttachment(*d.Attachment)
		if err != nil {
			return Result{}, err
		}
		d.Attachment = &a
	}
	return f.submit(ctx, &d), nil
}

func (f *Form) submit(ctx context.Context, replace *Draft) (res Result) {
	actor, draft, reason := f.acquire(ctx, replace)
	if reason != "" {
		return Result{Outcome: OutcomeIgnored, Reason: reason}
	}
	defer func() { f.release(res.Outcome == OutcomeSubmitted) }()

	post, step, err := f.run(ctx, actor, draft)
	if err != nil {
		f.setState(StateFailed)
		fields := map[string]interface{}{
			"userID": actor.ID,
			"step":   string(step),
			"error":  err.Error(),
		}
		if post != nil {
			fields["tweetID"] = post.ID
		}
		logs.LogJSON(logs.Error, "Tweet submission failed", fields)
		return Result{Outcome: OutcomeFailed, Step: step, Post: post, Err: err}
	}

	if f.publish != nil {
		f.publish(*post)
	}
	return Result{Outcome: OutcomeSubmitted, Post: post}
}

// acquire validates the draft and marks the form submitting. A non-nil
// replace becomes the draft first, under the same lock.
func (f *Form) acquire(ctx context.Context, replace *Draft) (identity.Actor, Draft, Reason) {
	actor, ok := f.auth.CurrentActor(ctx)
	if !ok {
		return identity.Actor{}, Draft{}, ReasonNoActor
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return identity.Actor{}, Draft{}, ReasonBusy
	}
	if replace != nil {
		f.draft = *replace
	}

	f.state = StateValidating
	draft := f.draft
	switch n := TextLength(draft.Text); {
	case n == 0:
		f.state = StateIdle
		return identity.Actor{}, Draft{}, ReasonEmptyText
	case n > MaxTextLength:
		f.state = StateIdle
		return identity.Actor{}, Draft{}, ReasonTextTooLong
	}
	f.state = StateSubmitting
	return actor, draft, ""
}

func (f *Form) release(published bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if published {
		f.draft = Draft{}
	}
	f.state = StateIdle
}

func (f *Form) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

func (f *Form) run(ctx context.Context, actor identity.Actor, draft Draft) (*Post, Step, error) {
	name := actor.DisplayName
	if name == "" {
		name = AnonymousName(f.lang)
	}
	createdAt := f.now().UnixMilli()

	handle, err := f.docs.CreateRecord(ctx, Collection, Fields{
		FieldText:      draft.Text,
		FieldCreatedAt: createdAt,
		FieldUsername:  name,
		FieldUserID:    actor.ID,
	})
	if err != nil {
		return nil, StepCreate, fmt.Errorf("create tweet: %w", err)
	}
	post := &Post{
		ID:                handle.ID,
		Text:              draft.Text,
		CreatedAt:         createdAt,
		AuthorDisplayName: name,
		AuthorID:          actor.ID,
	}
	if draft.Attachment == nil {
		return post, "", nil
	}

	blob, err := f.blobs.Upload(ctx, path.Join(f.mediaPrefix, actor.ID, handle.ID), *draft.Attachment)
	if err != nil {
		return post, StepUpload, fmt.Errorf("upload photo: %w", err)
	}
	url, err := f.blobs.ResolveURL(ctx, blob)
	if err != nil {
		return post, StepResolve, fmt.Errorf("resolve photo url: %w", err)
	}
	if err := f.docs.PatchRecord(ctx, handle, Fields{FieldPhoto: url}); err != nil {
		return post, StepPatch, fmt.Errorf("attach photo: %w", err)
	}
	post.PhotoURL = &url
	return post, "", nil
}
