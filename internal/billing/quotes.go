package billing

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Simplici0/controlcenter/internal/apperror"
	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/orders"
)

const (
	quotePrefix         = "COT-"
	DefaultValidityDays = 15
)

// QuoteInput describes a new quote. ValidityDays defaults to
// DefaultValidityDays.
type QuoteInput struct {
	Customer     string            `json:"customer" validate:"required,max=120"`
	Description  string            `json:"description" validate:"max=500"`
	Items        []models.LineItem `json:"items" validate:"required,min=1,dive"`
	ValidityDays int               `json:"validityDays" validate:"gte=0,lte=365"`
}

func (s *Service) CreateQuote(ctx context.Context, in QuoteInput) (models.Quote, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Customer) == "" {
		fields["customer"] = "required"
	}
	if in.ValidityDays < 0 {
		fields["validityDays"] = "must be greater than or equal to 0"
	}
	validateItems(in.Items, fields)
	if len(fields) > 0 {
		return models.Quote{}, apperror.NewValidation(fields)
	}
	days := in.ValidityDays
	if days == 0 {
		days = DefaultValidityDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.repo.QuotesForUpdate(ctx)
	if err != nil {
		return models.Quote{}, err
	}
	now := s.now()
	q := models.Quote{
		ID:          uuid.NewString(),
		Number:      quotePrefix + strconv.FormatInt(nextQuoteNumber(quotes), 10),
		Customer:    strings.TrimSpace(in.Customer),
		Description: strings.TrimSpace(in.Description),
		Items:       in.Items,
		Total:       itemsTotal(in.Items),
		Status:      models.QuoteDraft,
		Date:        now,
		ValidUntil:  now.AddDate(0, 0, days),
	}
	if err := s.repo.SaveQuotes(ctx, append(quotes, q)); err != nil {
		return models.Quote{}, err
	}

	zerolog.Ctx(ctx).Info().Str("quote", q.Number).Msg("quote created")
	return q, nil
}

func nextQuoteNumber(quotes []models.Quote) int64 {
	return models.NextID(quotes, func(q models.Quote) int64 {
		n, err := strconv.ParseInt(strings.TrimPrefix(q.Number, quotePrefix), 10, 64)
		if err != nil {
			return 0
		}
		return n
	})
}

// Quotes lists quotes, newest first.
func (s *Service) Quotes(ctx context.Context) []models.Quote {
	quotes := s.repo.Quotes(ctx)
	slices.SortStableFunc(quotes, func(a, b models.Quote) int { return b.Date.Compare(a.Date) })
	return quotes
}

// ConvertQuote turns a draft quote into a pending order priced at the quote
// total. A converted quote cannot be converted again.
func (s *Service) ConvertQuote(ctx context.Context, id string, notifier orders.Notifier) (orders.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.repo.QuotesForUpdate(ctx)
	if err != nil {
		return orders.View{}, err
	}
	idx := slices.IndexFunc(quotes, func(q models.Quote) bool { return q.ID == id })
	if idx < 0 {
		return orders.View{}, &apperror.NotFoundError{Resource: "quote", ID: id}
	}
	q := quotes[idx]
	if q.Status == models.QuoteConverted {
		return orders.View{}, &apperror.InvalidInputError{Reason: "quote " + q.Number + " was already converted"}
	}

	description := q.Description
	if description == "" {
		description = "Cotización " + q.Number
	}
	created, err := s.orders.Create(ctx, orders.Input{
		Customer:    q.Customer,
		Description: description,
		Price:       q.Total,
		Status:      models.OrderPending,
	}, notifier)
	if err != nil {
		return orders.View{}, err
	}

	q.Status = models.QuoteConverted
	q.OrderID = &created.Order.ID
	quotes[idx] = q
	if err := s.repo.SaveQuotes(ctx, quotes); err != nil {
		// Drop the order again so the quote stays convertible exactly once.
		if rbErr := s.orders.Delete(ctx, created.Order.ID); rbErr != nil {
			zerolog.Ctx(ctx).Error().Err(rbErr).Int64("order_id", created.Order.ID).Str("quote", q.Number).
				Msg("remove order of failed quote conversion")
		}
		return orders.View{}, err
	}
	return created.Order, nil
}
