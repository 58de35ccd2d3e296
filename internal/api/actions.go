package api

import (
	"net/http"

	"github.com/rechargehub/cardflow/internal/flow"
)

// Action names accepted by the dispatch endpoint.
const (
	actionStartVerification   = "start_verification"
	actionStartPurchase       = "start_purchase"
	actionStartPromo          = "start_promo"
	actionSelectCard          = "select_card"
	actionQuickSignIn         = "quick_sign_in"
	actionSubmitEmail         = "submit_email"
	actionSubmitCode          = "submit_code"
	actionSelectAmount        = "select_amount"
	actionSelectPaymentMethod = "select_payment_method"
	actionSubmitPayment       = "submit_payment"
	actionRetryPayment        = "retry_payment"
	actionSubmitPromoAddress  = "submit_promo_address"
	actionSubmitPromoCard     = "submit_promo_card"
	actionFinishVerification  = "finish_verification"
	actionReturnToDashboard   = "return_to_dashboard"
	actionLogout              = "logout"
)

// cardEntryRequest carries the promo card fields over the wire. They are
// handed to the controller and discarded; the session never serializes them.
type cardEntryRequest struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type actionRequest struct {
	Action    string            `json:"action"`
	Card      *flow.CatalogRef  `json:"card,omitempty"`
	Email     string            `json:"email,omitempty"`
	Code      string            `json:"code,omitempty"`
	Amount    int               `json:"amount,omitempty"`
	Method    string            `json:"method,omitempty"`
	Address   *flow.Address     `json:"address,omitempty"`
	CardEntry *cardEntryRequest `json:"card_entry,omitempty"`
}

// handleAction dispatches one named action against the session and returns
// the refreshed view. Step-scoped validation failures are not HTTP errors;
// they surface as step_error in the view.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req actionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.dispatch(r, id, req); err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	view, err := s.controller.View(r.Context(), id)
	if err != nil {
		s.writeFlowError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) dispatch(r *http.Request, id string, req actionRequest) error {
	ctx := r.Context()

	switch req.Action {
	case actionStartVerification:
		return s.controller.StartVerification(ctx, id)
	case actionStartPurchase:
		return s.controller.StartPurchase(ctx, id)
	case actionStartPromo:
		return s.controller.StartPromo(ctx, id)
	case actionSelectCard:
		if req.Card == nil {
			return flow.ErrInvalidAction
		}
		return s.controller.SelectCard(ctx, id, *req.Card)
	case actionQuickSignIn:
		return s.controller.QuickSignIn(ctx, id, req.Email)
	case actionSubmitEmail:
		return s.controller.SubmitEmail(ctx, id, req.Email)
	case actionSubmitCode:
		return s.controller.SubmitCode(ctx, id, req.Code)
	case actionSelectAmount:
		return s.controller.SelectAmount(ctx, id, req.Amount)
	case actionSelectPaymentMethod:
		return s.controller.SelectPaymentMethod(ctx, id, flow.PaymentMethod(req.Method))
	case actionSubmitPayment:
		return s.controller.SubmitPayment(ctx, id)
	case actionRetryPayment:
		return s.controller.RetryPayment(ctx, id)
	case actionSubmitPromoAddress:
		if req.Address == nil {
			return flow.ErrInvalidAction
		}
		return s.controller.SubmitPromoAddress(ctx, id, *req.Address)
	case actionSubmitPromoCard:
		if req.CardEntry == nil {
			return flow.ErrInvalidAction
		}
		entry := flow.CardEntry{
			Number: req.CardEntry.Number,
			Expiry: req.CardEntry.Expiry,
			CVV:    req.CardEntry.CVV,
		}
		return s.controller.SubmitPromoCard(ctx, id, entry)
	case actionFinishVerification:
		return s.controller.FinishVerification(ctx, id)
	case actionReturnToDashboard:
		return s.controller.ReturnToDashboard(ctx, id)
	case actionLogout:
		return s.controller.Logout(ctx, id)
	default:
		return flow.ErrInvalidAction
	}
}
