package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/auth"
	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/charges"
	"github.com/mmynk/receiptsplit/internal/items"
	"github.com/mmynk/receiptsplit/internal/metrics"
	"github.com/mmynk/receiptsplit/internal/middleware"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/rounding"
	"github.com/mmynk/receiptsplit/internal/session"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// maxDistributeCount bounds Distribute so one request cannot allocate an arbitrary slice.
const maxDistributeCount = 10000

const unassignedWarning = "Some items are not assigned to anyone; the split does not cover the full receipt."

var (
	errMissingReceipt = errors.New("receipt is required")
	errUnknownPerson  = errors.New("assigned to unknown person")
	errMissingSession = errors.New("session_id is required")
	errInvalidCount   = fmt.Errorf("count must be between 1 and %d", maxDistributeCount)
)

// ReceiptService implements api.ReceiptServiceHandler.
type ReceiptService struct {
	store   storage.Store
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
	ttl     time.Duration
	now     func() time.Time

	// locks serializes Dispatch per session; a session hashes to one stripe.
	locks [64]sync.Mutex
}

var _ api.ReceiptServiceHandler = (*ReceiptService)(nil)

// NewReceiptService creates a service storing sessions for ttl. m may be nil.
func NewReceiptService(store storage.Store, tokens *auth.TokenManager, m *metrics.Metrics, ttl time.Duration) *ReceiptService {
	return &ReceiptService{
		store:   store,
		tokens:  tokens,
		metrics: m,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *ReceiptService) lock(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%uint32(len(s.locks))]
	mu.Lock()
	return mu.Unlock
}

// newView renders state with its derived splits and summary.
func newView(state session.State) api.SessionView {
	view := api.SessionView{
		State:   state,
		Splits:  state.Splits(),
		Summary: state.Summary(),
	}
	if state.Phase == session.PhaseEditing {
		view.Charges = state.ChargeViews()
	}
	if state.Receipt != nil && len(state.People) > 0 && !view.Summary.FullyAssigned() {
		view.Warning = unassignedWarning
	}
	return view
}

// CreateSession starts a session for a receipt and issues its access token.
func (s *ReceiptService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	if req.Msg.Receipt == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingReceipt)
	}
	if err := validateReceipt(req.Msg.Receipt); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	receipt := req.Msg.Receipt.Clone()
	for i := range receipt.Items {
		receipt.Items[i].Description = session.CleanText(receipt.Items[i].Description)
		receipt.Items[i].AssignedTo = []string{}
	}
	receipt.MerchantName = session.CleanText(receipt.MerchantName)

	sess := &storage.Session{
		State:     session.New("", receipt),
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		slog.Error("CreateSession failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.tokens.Generate(sess.ID)
	if err != nil {
		slog.Error("CreateSession token failed", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	slog.Info("Session created", "session_id", sess.ID, "items", len(receipt.Items), "expires_at", sess.ExpiresAt)

	return connect.NewResponse(&api.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		View:      newView(sess.State),
	}), nil
}

// authorize checks that the caller's token was issued for sessionID.
func authorize(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errMissingSession)
	}
	granted := middleware.GetSessionID(ctx)
	if granted == "" {
		return connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if granted != sessionID {
		return connect.NewError(connect.CodePermissionDenied, auth.ErrWrongSession)
	}
	return nil
}

// GetSession returns the current view of a session.
func (s *ReceiptService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	if err := authorize(ctx, req.Msg.SessionID); err != nil {
		return nil, err
	}

	sess, err := s.store.GetSession(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, storageError("GetSession", req.Msg.SessionID, err)
	}

	return connect.NewResponse(&api.GetSessionResponse{
		ExpiresAt: sess.ExpiresAt,
		View:      newView(sess.State),
	}), nil
}

// Dispatch applies one action to a session and persists the result.
// A rejected action leaves the stored session untouched.
func (s *ReceiptService) Dispatch(ctx context.Context, req *connect.Request[api.DispatchRequest]) (*connect.Response[api.DispatchResponse], error) {
	sessionID := req.Msg.SessionID
	if err := authorize(ctx, sessionID); err != nil {
		return nil, err
	}
	action := req.Msg.Action

	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, storageError("Dispatch", sessionID, err)
	}

	next, err := session.Reduce(sess.State, action)
	if err != nil {
		s.countAction(action.Type, "rejected")
		slog.Debug("Action rejected", "session_id", sessionID, "action", action.Type, "error", err)
		return nil, connect.NewError(actionCode(err), err)
	}

	sess.State = next
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, storageError("Dispatch", sessionID, err)
	}
	s.countAction(action.Type, "ok")
	slog.Debug("Action applied", "session_id", sessionID, "action", action.Type, "phase", next.Phase)

	return connect.NewResponse(&api.DispatchResponse{
		ExpiresAt: sess.ExpiresAt,
		View:      newView(next),
	}), nil
}

func (s *ReceiptService) countAction(t session.ActionType, outcome string) {
	if s.metrics != nil {
		s.metrics.ActionsApplied.WithLabelValues(string(t), outcome).Inc()
	}
}

// CalculateSplits computes splits for a receipt without creating a session.
func (s *ReceiptService) CalculateSplits(ctx context.Context, req *connect.Request[api.CalculateSplitsRequest]) (*connect.Response[api.CalculateSplitsResponse], error) {
	if req.Msg.Receipt == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingReceipt)
	}
	if err := validateReceipt(req.Msg.Receipt); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validateAssignees(req.Msg.Receipt, req.Msg.People); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	splits := calculator.CalculateSplits(req.Msg.Receipt, req.Msg.People)
	summary := calculator.Summarize(req.Msg.Receipt, splits)
	for _, split := range splits {
		slog.Debug("Person split",
			"person", split.PersonName,
			"subtotal", split.Subtotal,
			"tax", split.TaxAmount,
			"tip", split.TipAmount,
			"fees", split.FeeAmount,
			"total", split.Total,
			"items_count", len(split.Items),
		)
	}

	resp := &api.CalculateSplitsResponse{Splits: splits, Summary: summary}
	if len(req.Msg.People) > 0 && !summary.FullyAssigned() {
		resp.Warning = unassignedWarning
	}
	return connect.NewResponse(resp), nil
}

// Distribute divides a total into count 2-decimal shares that sum to the total.
func (s *ReceiptService) Distribute(ctx context.Context, req *connect.Request[api.DistributeRequest]) (*connect.Response[api.DistributeResponse], error) {
	if req.Msg.Count < 1 || req.Msg.Count > maxDistributeCount {
		return nil, connect.NewError(connect.CodeInvalidArgument, errInvalidCount)
	}
	return connect.NewResponse(&api.DistributeResponse{
		Amounts: rounding.Distribute(req.Msg.Total, req.Msg.Count),
	}), nil
}

// RoundToMatch rounds amounts to cents so that they sum to the rounded target.
func (s *ReceiptService) RoundToMatch(ctx context.Context, req *connect.Request[api.RoundToMatchRequest]) (*connect.Response[api.RoundToMatchResponse], error) {
	return connect.NewResponse(&api.RoundToMatchResponse{
		Amounts: rounding.RoundToMatch(req.Msg.Amounts, req.Msg.Target),
	}), nil
}

func validateReceipt(r *models.Receipt) error {
	seen := make(map[string]bool, len(r.Items))
	for i, item := range r.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d: id is required", i+1)
		}
		if seen[item.ID] {
			return fmt.Errorf("item %d: duplicate id %q", i+1, item.ID)
		}
		seen[item.ID] = true
		if item.Quantity < 1 || item.Quantity > items.MaxQuantity {
			return fmt.Errorf("item %q: %w", item.ID, items.ErrInvalidQuantity)
		}
		if item.Price < 0 {
			return fmt.Errorf("item %q: %w", item.ID, items.ErrInvalidPrice)
		}
	}
	if r.Tip < 0 || r.TaxTotal() < 0 || r.FeeTotal() < 0 {
		return charges.ErrInvalidAmount
	}
	return nil
}

// validateAssignees rejects items assigned to ids that are not among people.
func validateAssignees(r *models.Receipt, people []models.Person) error {
	known := make(map[string]bool, len(people))
	for _, p := range people {
		known[p.ID] = true
	}
	for _, item := range r.Items {
		for _, id := range item.AssignedTo {
			if !known[id] {
				return fmt.Errorf("item %q: %w: %s", item.ID, errUnknownPerson, id)
			}
		}
	}
	return nil
}

// actionCode maps a rejected action to a Connect code.
func actionCode(err error) connect.Code {
	switch {
	case errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrNoReceipt),
		errors.Is(err, items.ErrIDConflict):
		return connect.CodeFailedPrecondition
	case errors.Is(err, items.ErrItemNotFound):
		return connect.CodeNotFound
	case errors.Is(err, session.ErrDuplicateName):
		return connect.CodeAlreadyExists
	default:
		return connect.CodeInvalidArgument
	}
}

func storageError(op, sessionID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "session_id", sessionID, "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// SweepExpired deletes expired sessions. It is called periodically by the server's janitor.
func (s *ReceiptService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	if n > 0 && s.metrics != nil {
		s.metrics.SessionsEvicted.Add(float64(n))
	}
	return n, nil
}
