package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/assist"
	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrInvalidPostType = errors.New("post type must be POSTER, TEXT_OFFER or VIDEO_SCRIPT")
	ErrEmptyPost       = errors.New("post needs content or a product to advertise")
)

type PostInput struct {
	Type         model.PostType
	Content      string
	SummaryBn    string
	ImageURL     string
	OfferDetails string
	Channels     []string
	ExpiresAt    *time.Time

	// ProductID lets the assistant draft the content when Content is empty.
	ProductID *uuid.UUID
}

type FeedItem struct {
	Post       model.MarketingPost
	Shop       model.Shop
	DistanceKm float64
}

type FeedService struct {
	postRepo    repository.PostRepository
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	assistant   *assist.Guarded
	now         func() time.Time
}

func NewFeedService(
	postRepo repository.PostRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	assistant *assist.Guarded,
) *FeedService {
	return &FeedService{postRepo: postRepo, shopRepo: shopRepo, productRepo: productRepo, assistant: assistant, now: time.Now}
}

// Nearby joins posts to their shops and ranks them nearest first. Posts of
// deleted shops and expired posts are left out.
func (s *FeedService) Nearby(ctx context.Context, lat, lng float64, search string) ([]FeedItem, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	shops, err := s.shopRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	byID := make(map[uuid.UUID]model.Shop, len(shops))
	for _, sh := range shops {
		byID[sh.ID] = sh
	}

	now := s.now()
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		shop, ok := byID[p.ShopID]
		if !ok {
			continue
		}
		if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Content), term) &&
			!strings.Contains(strings.ToLower(shop.Name), term) {
			continue
		}
		out = append(out, FeedItem{Post: p, Shop: shop, DistanceKm: geo.DistanceKm(lat, lng, shop.Lat, shop.Lng)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

// Publish stores a post for the owner's shop. Empty content is drafted by the
// assistant from the referenced product, falling back to the product name.
func (s *FeedService) Publish(ctx context.Context, ownerID, shopID uuid.UUID, in PostInput) (*model.MarketingPost, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if shop.OwnerID != ownerID {
		return nil, ErrNotShopOwner
	}
	switch in.Type {
	case model.PostPoster, model.PostTextOffer, model.PostVideoScript:
	case "":
		in.Type = model.PostTextOffer
	default:
		return nil, ErrInvalidPostType
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		if in.ProductID == nil {
			return nil, ErrEmptyPost
		}
		product, err := s.productRepo.GetByID(ctx, *in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil || product.ShopID != shopID {
			return nil, ErrProductNotFound
		}
		content = s.assistant.AdCopy(ctx, assist.AdRequest{
			ProductName: product.Name, Price: product.Price, ShopName: shop.Name, Offer: in.OfferDetails,
		})
		if content == "" {
			content = product.Name
		}
	}

	post := &model.MarketingPost{
		ShopID:       shopID,
		Type:         in.Type,
		Content:      content,
		SummaryBn:    in.SummaryBn,
		ImageURL:     in.ImageURL,
		OfferDetails: in.OfferDetails,
		Channels:     in.Channels,
		CreatedAt:    s.now(),
		ExpiresAt:    in.ExpiresAt,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}
