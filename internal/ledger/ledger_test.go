package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenstream/internal/model"
)

type memoryStore struct {
	mu          sync.Mutex
	progress    model.Progress
	loadErr     error
	purchaseErr error
	purchases   []model.Purchase
	saves       int
}

func (s *memoryStore) LoadProgress(context.Context) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return model.DefaultProgress(), s.loadErr
	}
	return s.progress.Clone(), nil
}

func (s *memoryStore) SaveProgress(_ context.Context, progress model.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if progress.Revision >= s.progress.Revision {
		s.progress = progress.Clone()
	}
	s.saves++
	return nil
}

func (s *memoryStore) RecordPurchase(_ context.Context, progress model.Progress, purchase model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.purchaseErr != nil {
		return s.purchaseErr
	}
	s.progress = progress.Clone()
	s.purchases = append(s.purchases, purchase)
	return nil
}

func (s *memoryStore) stored() model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

func openLedger(t *testing.T, store *memoryStore) *Ledger {
	t.Helper()
	l := Open(context.Background(), store, nil)
	t.Cleanup(l.Close)
	return l
}

func TestOpenWithEmptyStoreStartsFromDefaults(t *testing.T) {
	l := openLedger(t, &memoryStore{progress: model.DefaultProgress()})

	snapshot := l.Snapshot()
	assert.Equal(t, 0, snapshot.TotalMinutesFocused)
	assert.Empty(t, snapshot.UnlockedItems)
}

func TestOpenRecoversFromUnreadableStore(t *testing.T) {
	store := &memoryStore{loadErr: errors.New("corrupt record")}

	l := openLedger(t, store)

	snapshot := l.Snapshot()
	assert.Equal(t, 0, snapshot.TotalMinutesFocused)
	assert.NotNil(t, snapshot.UnlockedItems)
	assert.Empty(t, snapshot.UnlockedItems)
}

func TestAccrueMinutesPersistsLatestBalance(t *testing.T) {
	store := &memoryStore{progress: model.Progress{TotalMinutesFocused: 10, UnlockedItems: []model.RewardItem{model.RewardCat}}}
	l := Open(context.Background(), store, nil)

	for i := 0; i < 25; i++ {
		l.AccrueMinutes(1)
	}
	l.AccrueMinutes(0)
	l.AccrueMinutes(-3)
	l.Close()

	assert.Equal(t, 35, l.Snapshot().TotalMinutesFocused)
	stored := store.stored()
	assert.Equal(t, 35, stored.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardCat}, stored.UnlockedItems)
	assert.GreaterOrEqual(t, store.saves, 1)
}

func TestAccrueAfterCloseStillPersists(t *testing.T) {
	store := &memoryStore{progress: model.DefaultProgress()}
	l := Open(context.Background(), store, nil)
	l.Close()

	l.AccrueMinutes(2)

	assert.Equal(t, 2, store.stored().TotalMinutesFocused)
	l.Close()
}

func TestPurchaseScenario(t *testing.T) {
	store := &memoryStore{progress: model.Progress{TotalMinutesFocused: 60, UnlockedItems: []model.RewardItem{}}}
	l := openLedger(t, store)

	purchase, err := l.Purchase(context.Background(), model.RewardCat)
	require.NoError(t, err)
	assert.Equal(t, model.RewardCat, purchase.ItemID)
	assert.Equal(t, 60, purchase.Cost)
	assert.Equal(t, 0, purchase.BalanceAfter)
	assert.NotEmpty(t, purchase.ID)

	snapshot := l.Snapshot()
	assert.Equal(t, 0, snapshot.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardCat}, snapshot.UnlockedItems)

	_, err = l.Purchase(context.Background(), model.RewardPlant)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, snapshot, l.Snapshot())

	stored := store.stored()
	assert.Equal(t, 0, stored.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardCat}, stored.UnlockedItems)
	assert.Len(t, store.purchases, 1)
}

func TestPurchaseTwiceNeverChargesTwice(t *testing.T) {
	store := &memoryStore{progress: model.Progress{TotalMinutesFocused: 500, UnlockedItems: []model.RewardItem{}}}
	l := openLedger(t, store)

	_, err := l.Purchase(context.Background(), model.RewardLamp)
	require.NoError(t, err)

	_, err = l.Purchase(context.Background(), model.RewardLamp)
	require.ErrorIs(t, err, ErrAlreadyOwned)

	snapshot := l.Snapshot()
	assert.Equal(t, 320, snapshot.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardLamp}, snapshot.UnlockedItems)
	assert.Len(t, store.purchases, 1)
}

func TestPurchaseUnknownItem(t *testing.T) {
	l := openLedger(t, &memoryStore{progress: model.Progress{TotalMinutesFocused: 1000, UnlockedItems: []model.RewardItem{}}})

	_, err := l.Purchase(context.Background(), model.RewardItem("unicorn"))

	require.ErrorIs(t, err, ErrUnknownItem)
	assert.Equal(t, 1000, l.Snapshot().TotalMinutesFocused)
}

func TestPurchaseNeverDrivesBalanceNegative(t *testing.T) {
	for _, entry := range model.Catalog() {
		for _, balance := range []int{0, 1, entry.Cost - 1} {
			l := openLedger(t, &memoryStore{progress: model.Progress{TotalMinutesFocused: balance, UnlockedItems: []model.RewardItem{}}})

			_, err := l.Purchase(context.Background(), entry.ID)

			require.ErrorIs(t, err, ErrInsufficientBalance)
			snapshot := l.Snapshot()
			assert.Equal(t, balance, snapshot.TotalMinutesFocused)
			assert.Empty(t, snapshot.UnlockedItems)
		}
	}
}

func TestPurchaseLeavesStateUnchangedWhenStoreFails(t *testing.T) {
	store := &memoryStore{
		progress:    model.Progress{TotalMinutesFocused: 200, UnlockedItems: []model.RewardItem{}},
		purchaseErr: errors.New("disk full"),
	}
	l := openLedger(t, store)

	_, err := l.Purchase(context.Background(), model.RewardPlant)

	require.Error(t, err)
	snapshot := l.Snapshot()
	assert.Equal(t, 200, snapshot.TotalMinutesFocused)
	assert.Empty(t, snapshot.UnlockedItems)
}

func TestConcurrentAccrualAndPurchaseStayConsistent(t *testing.T) {
	store := &memoryStore{progress: model.Progress{TotalMinutesFocused: 0, UnlockedItems: []model.RewardItem{}}}
	l := Open(context.Background(), store, nil)

	var wg sync.WaitGroup
	for i := 0; i < 600; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.AccrueMinutes(1)
		}()
	}

	purchased := make(chan model.RewardItem, len(model.Catalog()))
	for _, entry := range model.Catalog() {
		wg.Add(1)
		go func(item model.RewardItem) {
			defer wg.Done()
			for {
				_, err := l.Purchase(context.Background(), item)
				if err == nil {
					purchased <- item
					return
				}
				if !errors.Is(err, ErrInsufficientBalance) {
					return
				}
			}
		}(entry.ID)
	}
	wg.Wait()
	close(purchased)
	l.Close()

	spent := 0
	for item := range purchased {
		entry, _ := model.LookupCatalogEntry(item)
		spent += entry.Cost
	}

	snapshot := l.Snapshot()
	assert.Equal(t, 600, spent, "catalog costs sum to the accrued total")
	assert.Equal(t, 0, snapshot.TotalMinutesFocused)
	assert.Len(t, snapshot.UnlockedItems, len(model.Catalog()))
	assert.Equal(t, snapshot.TotalMinutesFocused, store.stored().TotalMinutesFocused)
}

type slowPurchaseStore struct {
	memoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *slowPurchaseStore) RecordPurchase(ctx context.Context, progress model.Progress, purchase model.Purchase) error {
	close(s.entered)
	<-s.release
	return s.memoryStore.RecordPurchase(ctx, progress, purchase)
}

func TestAccrualIsNotBlockedByPurchaseWrite(t *testing.T) {
	store := &slowPurchaseStore{
		memoryStore: memoryStore{progress: model.Progress{TotalMinutesFocused: 60, UnlockedItems: []model.RewardItem{}}},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	l := Open(context.Background(), store, nil)

	purchased := make(chan error, 1)
	go func() {
		_, err := l.Purchase(context.Background(), model.RewardCat)
		purchased <- err
	}()
	<-store.entered

	accrued := make(chan struct{})
	go func() {
		l.AccrueMinutes(3)
		l.AccrueMinutes(2)
		close(accrued)
	}()
	select {
	case <-accrued:
	case <-time.After(time.Second):
		t.Fatal("accrual waited on the purchase write")
	}
	assert.Equal(t, 65, l.Snapshot().TotalMinutesFocused)

	close(store.release)
	require.NoError(t, <-purchased)
	l.Close()

	snapshot := l.Snapshot()
	assert.Equal(t, 5, snapshot.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardCat}, snapshot.UnlockedItems)
	stored := store.stored()
	assert.Equal(t, 5, stored.TotalMinutesFocused)
	assert.Equal(t, []model.RewardItem{model.RewardCat}, stored.UnlockedItems)
}

func TestDeferredAccrualSurvivesFailedPurchase(t *testing.T) {
	store := &slowPurchaseStore{
		memoryStore: memoryStore{
			progress:    model.Progress{TotalMinutesFocused: 60, UnlockedItems: []model.RewardItem{}},
			purchaseErr: errors.New("disk full"),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	l := Open(context.Background(), store, nil)

	purchased := make(chan error, 1)
	go func() {
		_, err := l.Purchase(context.Background(), model.RewardCat)
		purchased <- err
	}()
	<-store.entered
	l.AccrueMinutes(4)
	close(store.release)

	require.Error(t, <-purchased)
	l.Close()

	assert.Equal(t, 64, l.Snapshot().TotalMinutesFocused)
	assert.Empty(t, l.Snapshot().UnlockedItems)
	assert.Equal(t, 64, store.stored().TotalMinutesFocused)
}
