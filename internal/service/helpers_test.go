package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

var errIdempotencyMismatch = errors.New("idempotency key reused with different parameters")

type gatewayResult struct {
	source string
	charge *payment.Charge
	err    error
}

// fakeGateway replays the first result stored for an idempotency key,
// declines included, and refuses a key reused with another source.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []payment.ChargeRequest
	byKey   map[string]gatewayResult
	charges int
	decline map[string]bool
	err     error
	capture func(requested int64) int64
}

func (g *fakeGateway) Charge(_ context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	if g.byKey == nil {
		g.byKey = map[string]gatewayResult{}
	}
	if prev, ok := g.byKey[req.IdempotencyKey]; ok {
		if prev.source != req.Source {
			return nil, errIdempotencyMismatch
		}
		return prev.charge, prev.err
	}
	if g.decline[req.Source] {
		declined := fmt.Errorf("%w: card %s", payment.ErrDeclined, req.Source)
		g.byKey[req.IdempotencyKey] = gatewayResult{source: req.Source, err: declined}
		return nil, declined
	}
	amount := req.Amount
	if g.capture != nil {
		amount = g.capture(req.Amount)
	}
	g.charges++
	ch := &payment.Charge{ID: fmt.Sprintf("ch_%d", g.charges), Amount: amount, Status: "succeeded"}
	g.byKey[req.IdempotencyKey] = gatewayResult{source: req.Source, charge: ch}
	return ch, nil
}

func (g *fakeGateway) distinctCharges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges
}

type sentMail struct {
	to, subject, html string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return m.err
}

type publishedEvent struct {
	topic, key string
	event      any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		switch ev := e.event.(type) {
		case UserEvent:
			out = append(out, ev.Type)
		case ItemEvent:
			out = append(out, ev.Type)
		case CartEvent:
			out = append(out, ev.Type)
		case OrderEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

type fakeIndex struct {
	indexed map[uuid.UUID]models.Item
	deleted []uuid.UUID
	result  []models.Item
	err     error
}

func (x *fakeIndex) IndexItem(_ context.Context, item *models.Item) error {
	if x.indexed == nil {
		x.indexed = map[uuid.UUID]models.Item{}
	}
	x.indexed[item.ID] = *item
	return nil
}

func (x *fakeIndex) DeleteItem(_ context.Context, id uuid.UUID) error {
	x.deleted = append(x.deleted, id)
	return nil
}

func (x *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Item, error) {
	if x.err != nil {
		return 0, nil, x.err
	}
	return int64(len(x.result)), x.result, nil
}

type fakeImages struct{}

func (fakeImages) PresignUpload(_ context.Context, userID uuid.UUID, filename string) (*storage.Upload, error) {
	key := "items/" + userID.String() + "/" + filename
	return &storage.Upload{Key: key, UploadURL: "https://s3.local/" + key + "?X-Amz-Signature=x", PublicURL: "https://s3.local/" + key}, nil
}

// flakyOrders fails CreateOrder while failCreate is set.
type flakyOrders struct {
	OrderRepo
	failCreate bool
}

func (f *flakyOrders) CreateOrder(ctx context.Context, order *models.Order) error {
	if f.failCreate {
		return errors.New("connection reset by peer")
	}
	return f.OrderRepo.CreateOrder(ctx, order)
}

// flakyCart fails DeleteCartItems while failClear is set.
type flakyCart struct {
	CartRepo
	failClear bool
}

func (f *flakyCart) DeleteCartItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if f.failClear {
		return errors.New("deadlock detected")
	}
	return f.CartRepo.DeleteCartItems(ctx, userID, ids)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	Repo    *repo.GormRepo
	Issuer  *session.Issuer
	Gateway *fakeGateway
	Mailer  *fakeMailer
	Events  *fakePublisher
	Index   *fakeIndex
	Clock   *testClock
	Auth    *AuthService
	Catalog *CatalogService
	Cart    *CartService
	Orders  *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(dbtest.New(t))
	iss, err := session.NewIssuer(session.SigningKey("test-signing-key"), 0)
	require.NoError(t, err)

	env := &testEnv{
		Repo:    r,
		Issuer:  iss,
		Gateway: &fakeGateway{},
		Mailer:  &fakeMailer{},
		Events:  &fakePublisher{},
		Index:   &fakeIndex{},
		Clock:   &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	env.Auth = &AuthService{
		Users:       r,
		Sessions:    iss,
		Mailer:      env.Mailer,
		Events:      env.Events,
		FrontendURL: "http://localhost:7777",
		Now:         env.Clock.Now,
	}
	env.Catalog = &CatalogService{Items: r, Index: env.Index, Images: fakeImages{}, Events: env.Events}
	env.Cart = &CartService{Items: r, Cart: r, Events: env.Events}
	env.Orders = &OrderService{Cart: r, Orders: r, Gateway: env.Gateway, Currency: "USD", Events: env.Events}
	return env
}

func (env *testEnv) createUser(t *testing.T, email, password string, perms ...models.Permission) *models.User {
	t.Helper()
	if len(perms) == 0 {
		perms = []models.Permission{models.PermissionUser}
	}
	pw, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Name: "User " + email, Email: email, PasswordHash: pw, Permissions: models.PermissionSet(perms)}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) createItem(t *testing.T, owner *models.User, title string, price int64) *models.Item {
	t.Helper()
	it := &models.Item{Title: title, Description: title + " description", Image: title + ".jpg", Price: price, UserID: owner.ID}
	require.NoError(t, env.Repo.CreateItem(context.Background(), it))
	return it
}

func as(u *models.User) context.Context {
	return authz.WithIdentity(context.Background(), authz.Identity{UserID: u.ID, Permissions: u.Permissions})
}
