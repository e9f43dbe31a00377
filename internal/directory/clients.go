package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
)

const ClientsStore = "clients"

type NewClient struct {
	Name       string `json:"name" validate:"required,max=120"`
	NationalID string `json:"national_id" validate:"required,max=32"`
	Phone      string `json:"phone" validate:"omitempty,min=6,max=32"`
}

type Clients struct {
	mu    sync.RWMutex
	items *store.Collection[domain.Client]
	log   *slog.Logger
}

func clientID(c *domain.Client) *int64 { return &c.ID }

func NewClients(sub store.Substrate, opts store.Options) *Clients {
	repo := store.NewRepository[domain.Client](sub, ClientsStore, opts)
	return &Clients{
		items: store.NewCollection(repo, clientID),
		log:   componentLogger(opts.Logger, "clients"),
	}
}

func (c *Clients) Load(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Load(ctx)
}

// Create registers a client. National IDs are unique.
func (c *Clients) Create(ctx context.Context, in NewClient) (domain.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in); err != nil {
		return domain.Client{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.items.All() {
		if existing.NationalID == in.NationalID {
			return domain.Client{}, fmt.Errorf("client with national id %s: %w", in.NationalID, store.ErrConflict)
		}
	}

	client, err := c.items.Insert(ctx, domain.Client{
		Name:       in.Name,
		NationalID: in.NationalID,
		Phone:      in.Phone,
	})
	if err != nil {
		return domain.Client{}, err
	}
	c.log.Info("client registered", slog.Int64("client_id", client.ID), slog.String("name", client.Name))
	return client, nil
}

func (c *Clients) FindClientByID(ctx context.Context, id int64) (domain.Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Find(id)
}

func (c *Clients) List() []domain.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.All()
}
