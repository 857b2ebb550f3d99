// Package notification runs the customer notification dialogs: it holds each
// draft while the admin edits it, renders live previews and hands the raw
// template to the backend on submit.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/logger"
	"github.com/jwalitptl/solar-admin/pkg/mergetag"
	"github.com/jwalitptl/solar-admin/pkg/metrics"
	"github.com/jwalitptl/solar-admin/pkg/validator"
)

const defaultDraftTTL = 30 * time.Minute

type Config struct {
	// DraftTTL discards drafts that have not been touched for this long.
	DraftTTL   time.Duration
	Currency   string
	DateFormat string
}

// AddressBook resolves saved addresses picked into a draft.
type AddressBook interface {
	Get(ctx context.Context, adminID, id string) (*model.SavedAddress, error)
}

// entry is one open dialog. record and pickup are the read-only inputs.
type entry struct {
	mu     sync.Mutex
	draft  *model.Draft
	record *model.CustomerPreOrder
	pickup *model.PickupLocation
}

type Service struct {
	cfg       Config
	orders    repository.CustomerPreOrderRepository
	locations repository.ResourceRepository[model.PickupLocation]
	sender    repository.NotificationRepository
	addresses AddressBook
	validator validator.Validator
	auditor   *audit.AuditLogger
	logger    *logger.Logger
	metrics   *metrics.Metrics
	drafts    *cache.Cache
	now       func() time.Time
}

func NewService(
	cfg Config,
	orders repository.CustomerPreOrderRepository,
	locations repository.ResourceRepository[model.PickupLocation],
	sender repository.NotificationRepository,
	addresses AddressBook,
	v validator.Validator,
	auditor *audit.AuditLogger,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = defaultDraftTTL
	}
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Service{
		cfg:       cfg,
		orders:    orders,
		locations: locations,
		sender:    sender,
		addresses: addresses,
		validator: v,
		auditor:   auditor,
		logger:    log.With("component", "notification"),
		metrics:   m,
		drafts:    cache.New(cfg.DraftTTL, cfg.DraftTTL/2),
		now:       time.Now,
	}
	s.drafts.OnEvicted(func(string, interface{}) { s.trackOpen() })
	return s
}

// MergeTags lists the supported tags for the insertion buttons.
func (s *Service) MergeTags() []mergetag.Entry {
	return mergetag.Entries()
}

// Open starts a draft for a customer pre-order, seeded with the mode's defaults.
func (s *Service) Open(ctx context.Context, actor model.Actor, req *model.OpenDraftRequest) (*model.DraftView, error) {
	record, err := s.orders.Get(ctx, actor.Token, req.CustomerPreOrderID)
	if err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = req.CustomerPreOrderID
	}

	d, err := newDraft(uuid.NewString(), req.Kind, req.Mode, record, s.now())
	if err != nil {
		return nil, err
	}
	d.AdminID = actor.AdminID

	e := &entry{draft: d, record: record}
	s.drafts.Set(d.ID, e, cache.DefaultExpiration)
	s.trackOpen()
	if s.metrics != nil {
		s.metrics.DraftsOpened.WithLabelValues(string(d.Kind), string(d.Mode)).Inc()
	}
	s.logger.Debug("draft opened", "draft_id", d.ID, "kind", string(d.Kind), "mode", string(d.Mode))

	e.mu.Lock()
	defer e.mu.Unlock()
	return s.view(e, nil), nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id string) (*model.DraftView, error) {
	e, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return s.view(e, nil), nil
}

// Update applies an edit. A mode change is applied first and discards
// edits to subject, message and dates. The edit is applied to a copy and
// committed only when every lookup succeeds.
func (s *Service) Update(ctx context.Context, actor model.Actor, id string, upd *model.DraftUpdate) (*model.DraftView, error) {
	e, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := editable(e.draft); err != nil {
		return nil, err
	}
	d := cloneDraft(e.draft)
	pickup := e.pickup
	now := s.now()

	if upd.Mode != nil {
		if err := switchMode(d, *upd.Mode, now); err != nil {
			return nil, err
		}
	}
	if upd.Channels != nil {
		d.Channels = append([]model.Channel(nil), (*upd.Channels)...)
	}
	if upd.Subject != nil {
		d.Subject = *upd.Subject
	}
	if upd.Message != nil {
		d.Message = *upd.Message
	}
	if upd.Deadline != nil {
		d.Deadline = *upd.Deadline
	}
	if upd.Reason != nil {
		d.Reason = *upd.Reason
	}
	if upd.ReadyDate != nil {
		d.ReadyDate = *upd.ReadyDate
	}
	if upd.PickupLocationID != nil && *upd.PickupLocationID != d.PickupLocationID {
		loc, err := s.resolveLocation(ctx, actor, e.record, *upd.PickupLocationID)
		if err != nil {
			return nil, err
		}
		d.PickupLocationID = *upd.PickupLocationID
		pickup = loc
	}
	if upd.AddressBookID != nil && *upd.AddressBookID != "" {
		if s.addresses == nil {
			return nil, errors.NewBadRequest("address book is not available", nil)
		}
		saved, err := s.addresses.Get(ctx, actor.AdminID, *upd.AddressBookID)
		if err != nil {
			return nil, err
		}
		addr := saved.Address
		d.DeliveryAddress = &addr
	}
	if upd.DeliveryAddress != nil {
		addr := *upd.DeliveryAddress
		d.DeliveryAddress = &addr
	}

	var patched *bool
	if upd.Fulfillment != nil {
		attempted, ok := setFulfillment(d, *upd.Fulfillment)
		if attempted {
			patched = &ok
			if s.metrics != nil {
				s.metrics.AddressLinePatches.WithLabelValues(boolLabel(ok)).Inc()
			}
			if !ok {
				s.logger.Info("address line not found, message left unchanged", "draft_id", d.ID)
			}
		}
	}

	d.UpdatedAt = now
	e.draft = d
	e.pickup = pickup
	s.drafts.Set(d.ID, e, cache.DefaultExpiration)
	return s.view(e, patched), nil
}

// InsertTag places a merge tag at the cursor and returns the cursor after it.
func (s *Service) InsertTag(ctx context.Context, actor model.Actor, id string, req *model.InsertTagRequest) (*model.DraftView, int, error) {
	e, err := s.lookup(actor, id)
	if err != nil {
		return nil, 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := editable(e.draft); err != nil {
		return nil, 0, err
	}
	cursor, err := insertTag(e.draft, req.Field, req.Token, req.Position)
	if err != nil {
		return nil, 0, err
	}
	e.draft.UpdatedAt = s.now()
	s.drafts.Set(id, e, cache.DefaultExpiration)
	return s.view(e, nil), cursor, nil
}

// Submit validates the draft and sends it. Only one submission per draft may
// be in flight. On success the draft is closed; on failure it stays open with
// the admin's edits intact. Nothing is retried.
func (s *Service) Submit(ctx context.Context, actor model.Actor, id string) (*model.NotificationResult, error) {
	e, err := s.lookup(actor, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	d := e.draft
	if d.State == model.DraftSubmitting {
		e.mu.Unlock()
		return nil, errors.NewConflict("this notification is already being sent")
	}
	if err := s.validator.Validate(d); err != nil {
		e.mu.Unlock()
		s.countInvalid(d, err)
		return nil, err
	}
	d.State = model.DraftSubmitting
	kind, mode := d.Kind, d.Mode
	req := buildRequest(d)
	e.mu.Unlock()

	result, sendErr := s.sender.Send(ctx, actor.Token, kind, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if sendErr != nil {
		d.State = model.DraftOpen
		d.UpdatedAt = s.now()
		s.drafts.Set(id, e, cache.DefaultExpiration)
		s.countSent(kind, mode, "failed")
		s.logger.Error(sendErr, "notification submission failed", "draft_id", id, "customer_preorder_id", req.CustomerPreOrderID)
		return nil, submissionError(sendErr)
	}

	d.State = model.DraftClosed
	s.drafts.Delete(id)
	s.countSent(kind, mode, "sent")
	s.auditor.Log(ctx, actor, audit.ActionNotify, "customer_preorder", req.CustomerPreOrderID, map[string]interface{}{
		"kind":     kind,
		"mode":     mode,
		"channels": req.Channels,
	})
	return result, nil
}

// Close discards a draft. A draft that is being sent cannot be discarded.
func (s *Service) Close(ctx context.Context, actor model.Actor, id string) error {
	e, err := s.lookup(actor, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := editable(e.draft); err != nil {
		return err
	}
	e.draft.State = model.DraftClosed
	s.drafts.Delete(id)
	return nil
}

func (s *Service) lookup(actor model.Actor, id string) (*entry, error) {
	v, ok := s.drafts.Get(id)
	if !ok {
		return nil, errors.NewNotFound("draft", nil)
	}
	e := v.(*entry)
	if e.draft.AdminID != actor.AdminID {
		return nil, errors.NewNotFound("draft", nil)
	}
	return e, nil
}

// resolveLocation looks up the pickup location for id. A nil location means
// the record's own location (or none) is used.
func (s *Service) resolveLocation(ctx context.Context, actor model.Actor, record *model.CustomerPreOrder, id string) (*model.PickupLocation, error) {
	if id == "" || s.locations == nil {
		return nil, nil
	}
	if record.PickupLocation != nil && record.PickupLocation.ID == id {
		return nil, nil
	}
	return s.locations.Get(ctx, actor.Token, id)
}

func cloneDraft(src *model.Draft) *model.Draft {
	d := *src
	d.Channels = append([]model.Channel(nil), src.Channels...)
	if src.DeliveryAddress != nil {
		addr := *src.DeliveryAddress
		d.DeliveryAddress = &addr
	}
	return &d
}

// view renders the draft against its context. Callers hold e.mu.
func (s *Service) view(e *entry, patched *bool) *model.DraftView {
	d := cloneDraft(e.draft)

	ctx := BuildContext(e.record, d, ContextOptions{
		Currency:       s.cfg.Currency,
		DateFormat:     s.cfg.DateFormat,
		PickupLocation: e.pickup,
	})
	return &model.DraftView{
		Draft: d,
		Preview: model.Preview{
			Subject:            mergetag.Render(d.Subject, ctx),
			Message:            mergetag.Render(d.Message, ctx),
			UnknownTags:        unknownTags(d.Subject, d.Message),
			AddressLinePatched: patched,
		},
	}
}

func editable(d *model.Draft) error {
	if d.State == model.DraftSubmitting {
		return errors.NewConflict("this notification is being sent and cannot be changed")
	}
	return nil
}

func unknownTags(templates ...string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range templates {
		for _, tok := range mergetag.Unknown(t) {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}

// submissionError surfaces the backend's message, or a generic one.
func submissionError(err error) error {
	be, ok := backend.AsError(err)
	if !ok {
		return errors.NewUpstream(backend.GenericFailure, err)
	}
	code := errors.ErrUpstream
	switch {
	case be.Status == 401:
		code = errors.ErrUnauthorized
	case be.Status == 404:
		code = errors.ErrNotFound
	case be.Status >= 400 && be.Status < 500:
		code = errors.ErrBadRequest
	}
	return &errors.AppError{Code: code, Message: be.Message, Err: err}
}

func (s *Service) trackOpen() {
	if s.metrics != nil {
		s.metrics.DraftsOpen.Set(float64(s.drafts.ItemCount()))
	}
}

func (s *Service) countSent(kind model.DraftKind, mode model.NotificationMode, outcome string) {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(string(kind), string(mode), outcome).Inc()
	}
}

func (s *Service) countInvalid(d *model.Draft, err error) {
	s.countSent(d.Kind, d.Mode, "invalid")
	if s.metrics == nil {
		return
	}
	if appErr, ok := errors.As(err); ok {
		for _, f := range appErr.Fields {
			s.metrics.ValidationFailures.WithLabelValues(f).Inc()
		}
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
