package client

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "reservas/pkg/errors"
	"reservas/pkg/logger"
	"reservas/pkg/model"
)

// nextLinkRegex extracts the rel="next" URL from an upstream Link header.
var nextLinkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

type ShopifyOptions struct {
	Domain     string
	Token      string
	APIVersion string
	PageSize   int
	Backoff    time.Duration
	RPS        int
	Timeout    time.Duration
}

// Shopify is the REST admin API client. It is the only component that talks
// to the commerce platform: the order listing feeds the booking reads, and
// the single-order GET/PUT pair is the primitive attendance updates ride on.
type Shopify struct {
	http     *HttpClient
	limiter  *rate.Limiter
	log      *logger.Logger
	version  string
	pageSize int
	backoff  time.Duration
}

func NewShopify(opts ShopifyOptions, log *logger.Logger) *Shopify {
	baseURL := fmt.Sprintf("https://%s/admin/api/%s", opts.Domain, opts.APIVersion)
	headers := map[string]string{
		"X-Shopify-Access-Token": opts.Token,
	}

	return &Shopify{
		http:     NewHttpClient(baseURL, opts.Timeout, headers),
		limiter:  rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		log:      log,
		version:  opts.APIVersion,
		pageSize: opts.PageSize,
		backoff:  opts.Backoff,
	}
}

// EachOrder streams every order in the store, page by page, calling fn for
// each one. The sequence is finite and restartable per call; it ends when the
// Link response header carries no rel="next" relation.
//
// Orders are deliberately not filtered by creation date at the API level:
// booking time is independent of when the order was placed, so creation-date
// windows would silently drop valid future bookings. Filtering by parsed
// booking time is the caller's job.
//
// A 429 suspends the loop for the configured backoff and retries the same
// page, so no page is skipped or duplicated. Any other non-2xx status aborts
// the sequence with a fetch failure.
func (s *Shopify) EachOrder(ctx context.Context, fn func(model.Order) error) error {
	url := fmt.Sprintf("/orders.json?status=any&limit=%d", s.pageSize)

	for url != "" {
		resp, err := s.fetchPage(ctx, url)
		if err != nil {
			return err
		}

		var page struct {
			Orders []model.Order `json:"orders"`
		}
		if err := resp.DecodeJSON(&page); err != nil {
			return apperrors.FetchFailed("failed to decode order listing", err)
		}

		for _, order := range page.Orders {
			if err := fn(order); err != nil {
				return err
			}
		}

		url = nextLink(resp.Header.Get("Link"))
	}

	return nil
}

// fetchPage performs one throttled page request, retrying the same URL after
// a fixed backoff for as long as upstream keeps answering 429.
func (s *Shopify) fetchPage(ctx context.Context, url string) (*Response, error) {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, apperrors.FetchFailed("order fetch cancelled", err)
		}

		resp, err := s.http.GET(ctx, url)
		if err != nil {
			return nil, apperrors.FetchFailed("order listing request failed", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			s.log.Warn("upstream rate limit hit, backing off",
				"backoff", s.backoff,
			)
			if err := sleep(ctx, s.backoff); err != nil {
				return nil, apperrors.FetchFailed("order fetch cancelled during backoff", err)
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, apperrors.FetchFailedStatus(resp.StatusCode, excerpt(resp.Body))
		}

		return resp, nil
	}
}

// GetOrder fetches a single order by ref. Both plain numeric ids and
// gid://shopify/Order/<id> refs are accepted.
func (s *Shopify) GetOrder(ctx context.Context, orderRef string) (*model.Order, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.FetchFailed("order fetch cancelled", err)
	}

	resp, err := s.http.GET(ctx, "/orders/"+NumericID(orderRef)+".json")
	if err != nil {
		return nil, apperrors.FetchFailed("order request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.FetchFailedStatus(resp.StatusCode, excerpt(resp.Body))
	}

	var wrapper struct {
		Order model.Order `json:"order"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.FetchFailed("failed to decode order", err)
	}

	return &wrapper.Order, nil
}

// UpdateNoteAttributes replaces an order's full note-attribute set. This is
// the write half of the attendance read-modify-write; callers must send every
// attribute they intend to keep, not just the changed ones.
func (s *Shopify) UpdateNoteAttributes(ctx context.Context, orderID int64, attrs []model.NoteAttribute) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperrors.FetchFailed("order update cancelled", err)
	}

	// The upstream API treats a null attribute list as "leave unchanged".
	if attrs == nil {
		attrs = []model.NoteAttribute{}
	}

	body := map[string]any{
		"order": map[string]any{
			"id":              orderID,
			"note_attributes": attrs,
		},
	}

	resp, err := s.http.PUT(ctx, fmt.Sprintf("/orders/%d.json", orderID), body)
	if err != nil {
		return apperrors.FetchFailed("order update request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.WriteFailed(resp.StatusCode, excerpt(resp.Body))
	}

	return nil
}

// Ping checks upstream reachability and credentials via the lightweight shop
// endpoint. Used by the readiness probe.
func (s *Shopify) Ping(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperrors.FetchFailed("ping cancelled", err)
	}

	resp, err := s.http.GET(ctx, "/shop.json")
	if err != nil {
		return apperrors.FetchFailed("shop request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.FetchFailedStatus(resp.StatusCode, excerpt(resp.Body))
	}
	return nil
}

// NumericID extracts the numeric order id from a ref. The storefront hands
// out gid://shopify/Order/<id> refs while the REST API wants bare ids.
func NumericID(orderRef string) string {
	if i := strings.LastIndex(orderRef, "/"); i >= 0 {
		return orderRef[i+1:]
	}
	return orderRef
}

func nextLink(header string) string {
	if m := nextLinkRegex.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func excerpt(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen])
	}
	return string(body)
}
