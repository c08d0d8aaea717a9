package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"belongings/internal/config"
	"belongings/internal/domain"
	models "belongings/internal/domain/models/inventory"
	aiSvc "belongings/internal/domain/services/enrichment"
	invSvc "belongings/internal/domain/services/inventory"
	"belongings/internal/metrics"
)

// Operation labels for metrics and logs.
const (
	opRecognize = "recognize"
	opPrice     = "price"
)

type service struct {
	items      invSvc.ItemService
	photos     invSvc.PhotoService
	recognizer aiSvc.Recognizer
	researcher aiSvc.PriceResearcher
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService creates the enrichment service. A nil recognizer or researcher
// makes the matching operations answer ErrUnavailable.
func NewService(
	items invSvc.ItemService,
	photos invSvc.PhotoService,
	recognizer aiSvc.Recognizer,
	researcher aiSvc.PriceResearcher,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) aiSvc.Service {
	return &service{
		items:      items,
		photos:     photos,
		recognizer: recognizer,
		researcher: researcher,
		timeout:    timeout,
		metrics:    m,
		logger:     logger,
	}
}

// RecognizePhoto implements aiSvc.Service.
func (s *service) RecognizePhoto(ctx context.Context, userID, photoID string) (*models.Recognition, error) {
	if s.recognizer == nil {
		return nil, unavailable(opRecognize)
	}
	photo, data, err := s.photos.ReadPhoto(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}
	return s.recognize(ctx, data, photo.ContentType)
}

// RecognizeImage implements aiSvc.Service.
func (s *service) RecognizeImage(ctx context.Context, userID string, image []byte) (*models.Recognition, error) {
	if s.recognizer == nil {
		return nil, unavailable(opRecognize)
	}
	if len(image) == 0 {
		return nil, &domain.ValidationError{Message: "image is empty"}
	}
	mt := mimetype.Detect(image)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", domain.ErrUnsupported, mt.String())
	}
	return s.recognize(ctx, image, baseMediaType(mt.String()))
}

// ResearchPrice implements aiSvc.Service.
func (s *service) ResearchPrice(ctx context.Context, userID string, req *aiSvc.PriceRequest) (*models.PriceEstimate, error) {
	if s.researcher == nil {
		return nil, unavailable(opPrice)
	}

	var query models.PriceQuery
	if req.ItemID != "" {
		item, err := s.items.GetItem(ctx, userID, req.ItemID)
		if err != nil {
			return nil, err
		}
		query = queryFromItem(item)
	} else {
		query = req.PriceQuery
		query.Name = strings.TrimSpace(query.Name)
		query.Currency = strings.ToUpper(strings.TrimSpace(query.Currency))
		if query.Currency == "" {
			query.Currency = "USD"
		}
		if err := validation.ValidateStruct(&query,
			validation.Field(&query.Name, validation.Required, validation.RuneLength(1, config.MaxItemNameLength)),
			validation.Field(&query.Currency, validation.Length(3, 3)),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	return s.researchPrice(ctx, &query)
}

// EnrichItem implements aiSvc.Service. Recognition reads the item's first
// photo; both enrichers run concurrently against the item as stored.
func (s *service) EnrichItem(ctx context.Context, userID, itemID string, req *aiSvc.EnrichRequest) (*models.EnrichResult, error) {
	item, err := s.items.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	wantRecognize := req.Recognize == nil || *req.Recognize
	wantPrice := req.Price == nil || *req.Price
	if req.Recognize != nil && *req.Recognize && item.PhotoCount == 0 {
		return nil, &domain.ValidationError{Message: "item has no photos to recognize"}
	}
	// only skip silently when recognition was implied
	if item.PhotoCount == 0 {
		wantRecognize = false
	}
	if !wantRecognize && !wantPrice {
		return nil, &domain.ValidationError{Message: "nothing to enrich"}
	}
	if (wantRecognize && s.recognizer == nil) || (wantPrice && s.researcher == nil) {
		return nil, unavailable("enrich")
	}

	result := &models.EnrichResult{Item: item, Applied: []string{}}

	g, gctx := errgroup.WithContext(ctx)
	if wantRecognize {
		g.Go(func() error {
			photos, err := s.photos.ListPhotos(gctx, userID, itemID)
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				return nil
			}
			_, data, err := s.photos.ReadPhoto(gctx, userID, photos[0].ID)
			if err != nil {
				return err
			}
			rec, err := s.recognize(gctx, data, photos[0].ContentType)
			if err != nil {
				return err
			}
			result.Recognition = rec
			return nil
		})
	}
	if wantPrice {
		g.Go(func() error {
			query := queryFromItem(item)
			est, err := s.researchPrice(gctx, &query)
			if err != nil {
				return err
			}
			result.Price = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	update, applied := buildUpdate(item, result.Recognition, result.Price, req.Overwrite)
	if len(applied) == 0 {
		return result, nil
	}

	updated, err := s.items.UpdateItem(ctx, userID, itemID, update)
	if err != nil {
		return nil, err
	}
	result.Item = updated
	result.Applied = applied

	s.logger.Info("item enriched", "user_id", userID, "item_id", itemID, "applied", applied)
	return result, nil
}

func (s *service) recognize(ctx context.Context, image []byte, mediaType string) (*models.Recognition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rec, err := s.recognizer.Recognize(ctx, image, mediaType)
	s.observe(opRecognize, start, err)
	return rec, err
}

func (s *service) researchPrice(ctx context.Context, query *models.PriceQuery) (*models.PriceEstimate, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	est, err := s.researcher.ResearchPrice(ctx, query)
	s.observe(opPrice, start, err)
	return est, err
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *service) observe(op string, start time.Time, err error) {
	s.metrics.AIRequest(op, err)
	if err != nil && !errors.Is(err, domain.ErrValidation) {
		s.logger.Warn("ai request failed", "operation", op, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Debug("ai request", "operation", op, "duration", time.Since(start))
}

func unavailable(op string) error {
	return fmt.Errorf("%w: %s is not configured", domain.ErrUnavailable, op)
}

func queryFromItem(item *models.Item) models.PriceQuery {
	return models.PriceQuery{
		Name:      item.Name,
		Brand:     item.Brand,
		Model:     item.Model,
		Condition: item.Condition,
		Currency:  item.Currency,
	}
}

// buildUpdate turns enrichment results into a partial item update. Without
// overwrite only empty fields are filled.
func buildUpdate(item *models.Item, rec *models.Recognition, est *models.PriceEstimate, overwrite bool) (*invSvc.UpdateItemRequest, []string) {
	update := &invSvc.UpdateItemRequest{}
	var applied []string

	fill := func(field, current, suggested string, dst **string) {
		if suggested == "" || suggested == current {
			return
		}
		if current != "" && !overwrite {
			return
		}
		v := suggested
		*dst = &v
		applied = append(applied, field)
	}

	if rec != nil {
		if overwrite {
			fill("name", item.Name, rec.Name, &update.Name)
		}
		fill("description", item.Description, rec.Description, &update.Description)
		fill("category", item.Category, rec.Category, &update.Category)
		fill("brand", item.Brand, rec.Brand, &update.Brand)
		fill("model", item.Model, rec.Model, &update.Model)
		fill("condition", item.Condition, rec.Condition, &update.Condition)
		if len(rec.Tags) > 0 && (len(item.Tags) == 0 || overwrite) {
			tags := append([]string(nil), rec.Tags...)
			update.Tags = &tags
			applied = append(applied, "tags")
		}
	}

	if est != nil && est.Estimate > 0 && strings.EqualFold(est.Currency, item.Currency) {
		if item.EstimatedValue == nil || overwrite {
			v := est.Estimate
			update.EstimatedValue = &v
			applied = append(applied, "estimated_value")
		}
	}

	return update, applied
}

func baseMediaType(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.TrimSpace(base)
}
