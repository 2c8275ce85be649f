package offer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xolosArmy/RMZWallet-sub000/agora"
)

// LookupResult is the outcome of resolving one offer id. Err is set instead
// of Offer when the id is malformed, does not name an offer of the expected
// token, or names one whose covenant output is spent (ErrOfferSpent).
type LookupResult struct {
	OfferID string
	Offer   *agora.Offer
	Summary *agora.OfferSummary
	Err     error
}

// LookupOffers resolves ids concurrently, at most the configured lookup
// concurrency at a time. Results are in the order of ids; a failing id
// does not stop the others. Only ctx cancellation fails the whole call.
func (e *Engine) LookupOffers(ctx context.Context, ids []string, tokenID string) ([]LookupResult, error) {
	results := make([]LookupResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.lookupLimit)
	for i, raw := range ids {
		results[i].OfferID = raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.lookup(gctx, raw, tokenID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) lookup(ctx context.Context, raw, tokenID string) LookupResult {
	r := LookupResult{OfferID: raw}
	id, err := agora.ParseOfferID(raw)
	if err != nil {
		r.Err = err
		return r
	}
	r.OfferID = id.String()
	offer, err := e.FetchOffer(ctx, id, tokenID)
	if err != nil {
		r.Err = err
		return r
	}
	summary, err := offer.Summary(e.net)
	if err != nil {
		r.Err = err
		return r
	}
	r.Offer, r.Summary = offer, summary
	return r
}
