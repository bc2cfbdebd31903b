package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type publishedEvent struct {
	Type amqp.EventType
	ID   int64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishExpenseEvent(_ context.Context, t amqp.EventType, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{t, id})
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

// failingRepo returns err from the methods it overrides.
type failingRepo struct {
	storage.Repository
	err error
}

func (f failingRepo) FindAll(context.Context, core.SortKey, core.SortOrder) ([]core.Expense, error) {
	return nil, f.err
}

func (f failingRepo) SumByCategory(context.Context) ([]core.CategoryTotal, error) {
	return nil, f.err
}

func (f failingRepo) Save(context.Context, core.Expense) (core.Expense, error) {
	return core.Expense{}, f.err
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 15, 10, 0, 0, 0, time.UTC) }
}

func expense(amount string, c core.Category, d core.Date) core.Expense {
	return core.Expense{Amount: core.MustMoney(amount), Category: c, Date: d}
}

func newTestService(t *testing.T) (*ExpenseService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	return NewExpenseService(storage.NewMemoryRepository(), WithPublisher(pub), WithClock(fixedClock(2024))), pub
}

func TestExpenseService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	in := expense("12.50", core.CategoryFood, core.NewDate(2024, time.January, 5))
	in.ID = 99
	in.Description = "lunch"

	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "client supplied id is ignored")

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Amount.String())
	assert.Equal(t, core.CategoryFood, got.Category)
	assert.Equal(t, "lunch", got.Description)

	assert.Equal(t, []publishedEvent{{amqp.EventCreated, 1}}, pub.events)
}

func TestExpenseService_CreateRejectsInvalid(t *testing.T) {
	svc, pub := newTestService(t)

	_, err := svc.Create(context.Background(), core.Expense{Amount: core.MustMoney("-1")})
	var verrs core.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "amount")
	assert.Contains(t, verrs, "category")
	assert.Contains(t, verrs, "date")
	assert.Empty(t, pub.events)
}

func TestExpenseService_Update(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	created, err := svc.Create(ctx, expense("10", core.CategoryFood, core.NewDate(2024, time.January, 5)))
	require.NoError(t, err)

	replacement := expense("20", core.CategoryTravel, core.NewDate(2024, time.March, 3))
	replacement.Description = "bus"
	updated, err := svc.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.Amount.Cents())
	assert.Equal(t, core.CategoryTravel, got.Category)
	assert.Equal(t, "2024-03-03", got.Date.String())
	assert.Equal(t, "bus", got.Description)

	assert.Equal(t, amqp.EventUpdated, pub.events[len(pub.events)-1].Type)
}

func TestExpenseService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	svc := NewExpenseService(repo)

	_, err := svc.Update(ctx, 42, expense("20", core.CategoryTravel, core.NewDate(2024, time.March, 3)))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, repo.Len(), "update of a missing id must not insert")
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	created, err := svc.Create(ctx, expense("10", core.CategoryFood, core.NewDate(2024, time.January, 5)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, []publishedEvent{{amqp.EventCreated, 1}, {amqp.EventDeleted, 1}}, pub.events)
}

func TestExpenseService_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(storage.NewMemoryRepository(), WithPublisher(pub))

	created, err := svc.Create(context.Background(), expense("10", core.CategoryFood, core.NewDate(2024, time.January, 5)))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestExpenseService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, e := range []core.Expense{
		expense("100", core.CategoryFood, core.NewDate(2024, time.January, 5)),
		expense("50", core.CategoryTransport, core.NewDate(2024, time.February, 10)),
		expense("30", core.CategoryFood, core.NewDate(2024, time.February, 15)),
	} {
		_, err := svc.Create(ctx, e)
		require.NoError(t, err)
	}

	food := core.CategoryFood
	got, err := svc.List(ctx, core.ListQuery{Category: &food, SortBy: core.SortByAmount, Order: core.Ascending})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "30", got[0].Amount.String())
	assert.Equal(t, "100", got[1].Amount.String())

	byCategory, err := svc.List(ctx, core.ListQuery{SortBy: core.SortByCategory, Order: core.Descending})
	require.NoError(t, err)
	require.Len(t, byCategory, 3)
	assert.Equal(t, core.CategoryTransport, byCategory[0].Category)
	// Equal categories keep the storage order, which follows date in the same direction.
	assert.Equal(t, []int64{3, 1}, []int64{byCategory[1].ID, byCategory[2].ID})

	lo, hi := core.MustMoney("60"), core.MustMoney("40")
	none, err := svc.List(ctx, core.ListQuery{MinAmount: &lo, MaxAmount: &hi})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExpenseService_Summaries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, e := range []core.Expense{
		expense("100", core.CategoryFood, core.NewDate(2024, time.January, 5)),
		expense("50", core.CategoryTransport, core.NewDate(2024, time.February, 10)),
		expense("30", core.CategoryFood, core.NewDate(2024, time.February, 15)),
		expense("999", core.CategoryOther, core.NewDate(2023, time.December, 31)),
	} {
		_, err := svc.Create(ctx, e)
		require.NoError(t, err)
	}

	byCategory, err := svc.SummaryByCategory(ctx)
	require.NoError(t, err)
	body, err := byCategory.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"FOOD":130,"TRANSPORT":50,"OTHER":999}`, string(body))

	monthly, err := svc.MonthlySummary(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"JANUARY", "FEBRUARY"}, monthly.Keys())

	prior, err := svc.MonthlySummary(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, []string{"DECEMBER"}, prior.Keys())
}

func TestExpenseService_StorageFailuresPropagate(t *testing.T) {
	boom := errors.New("db unavailable")
	svc := NewExpenseService(failingRepo{Repository: storage.NewMemoryRepository(), err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx, core.ListQuery{})
	assert.ErrorIs(t, err, boom)

	_, err = svc.SummaryByCategory(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Create(ctx, expense("1", core.CategoryFood, core.NewDate(2024, time.January, 1)))
	assert.ErrorIs(t, err, boom)
}

func TestExpenseService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(storage.NewMemoryRepository(), WithPublisher(pub))

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}
