package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
)

const ServicesStore = "services"

type Services struct {
	mu    sync.RWMutex
	items *store.Collection[domain.Service]
	log   *slog.Logger
}

func serviceID(s *domain.Service) *int64 { return &s.ID }

func NewServices(sub store.Substrate, opts store.Options) *Services {
	repo := store.NewRepository[domain.Service](sub, ServicesStore, opts)
	return &Services{
		items: store.NewCollection(repo, serviceID),
		log:   componentLogger(opts.Logger, "services"),
	}
}

func (s *Services) Load(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Load(ctx)
}

// Create offers a catalog entry as a bookable service. Each entry is offered
// at most once.
func (s *Services) Create(ctx context.Context, entry domain.CatalogEntry) (domain.Service, error) {
	if !entry.Valid() {
		return domain.Service{}, validationError(fmt.Sprintf("unknown catalog entry %q", entry))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEntry(entry); ok {
		return domain.Service{}, fmt.Errorf("service %s: %w", entry, store.ErrConflict)
	}
	return s.insert(ctx, entry)
}

// SeedCatalog offers every catalog entry that is not offered yet and returns
// how many services were added.
func (s *Services) SeedCatalog(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, item := range domain.Catalog() {
		if _, ok := s.byEntry(item.Entry); ok {
			continue
		}
		if _, err := s.insert(ctx, item.Entry); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Services) FindServiceByID(ctx context.Context, id int64) (domain.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Find(id)
}

func (s *Services) List() []domain.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.All()
}

func (s *Services) insert(ctx context.Context, entry domain.CatalogEntry) (domain.Service, error) {
	svc, err := s.items.Insert(ctx, domain.Service{Entry: entry})
	if err != nil {
		return domain.Service{}, err
	}
	s.log.Info("service offered",
		slog.Int64("service_id", svc.ID),
		slog.String("entry", string(svc.Entry)),
		slog.Int64("price_cents", svc.PriceCents()),
	)
	return svc, nil
}

func (s *Services) byEntry(entry domain.CatalogEntry) (domain.Service, bool) {
	for _, svc := range s.items.All() {
		if svc.Entry == entry {
			return svc, true
		}
	}
	return domain.Service{}, false
}
