package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenstream/internal/model"
)

var (
	ErrUnknownItem         = errors.New("unknown reward item")
	ErrAlreadyOwned        = errors.New("reward item already owned")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Store persists the ledger record.
type Store interface {
	LoadProgress(ctx context.Context) (model.Progress, error)
	SaveProgress(ctx context.Context, progress model.Progress) error
	RecordPurchase(ctx context.Context, progress model.Progress, purchase model.Purchase) error
}

// Ledger owns the focused-minutes balance and the unlocked reward set.
// All mutations are serialized by mu.
type Ledger struct {
	// purchaseMu serializes purchases; mu guards the fields below and is never
	// held across a store call.
	purchaseMu sync.Mutex

	mu       sync.Mutex
	progress model.Progress
	store    Store
	logger   *slog.Logger
	closed   bool

	// While a purchase is being written, accruals land in memory only and
	// are counted in deferred; the purchase result folds them back in.
	purchasing bool
	deferred   int

	pending chan model.Progress
	done    chan struct{}
}

// Open loads the ledger from the store and starts its background writer.
// Load failures are recovered by starting from the default ledger.
func Open(ctx context.Context, store Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}

	progress, err := store.LoadProgress(ctx)
	if err != nil {
		logger.Warn("progress record unreadable, starting from defaults", "error", err)
		revision := progress.Revision
		progress = model.DefaultProgress()
		progress.Revision = revision
	}
	if progress.UnlockedItems == nil {
		progress.UnlockedItems = []model.RewardItem{}
	}

	l := &Ledger{
		progress: progress,
		store:    store,
		logger:   logger,
		pending:  make(chan model.Progress, 1),
		done:     make(chan struct{}),
	}
	go l.writeLoop()
	return l
}

// Snapshot returns a copy of the current ledger.
func (l *Ledger) Snapshot() model.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress.Clone()
}

// AccrueMinutes adds n focused minutes to the balance. Persistence happens
// in the background so the caller never waits on storage.
func (l *Ledger) AccrueMinutes(n int) {
	if n <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.progress.TotalMinutesFocused += n
	if l.purchasing {
		l.deferred += n
		return
	}
	l.progress.Revision++
	l.enqueueLocked(l.progress.Clone())
}

// Purchase charges the item's cost and grants it in a single step. The new
// ledger is written together with a receipt before it becomes visible.
// Accruals are not blocked by the write.
func (l *Ledger) Purchase(ctx context.Context, item model.RewardItem) (model.Purchase, error) {
	entry, ok := model.LookupCatalogEntry(item)
	if !ok {
		return model.Purchase{}, fmt.Errorf("%w: %q", ErrUnknownItem, item)
	}

	l.purchaseMu.Lock()
	defer l.purchaseMu.Unlock()

	next, err := l.stagePurchase(entry)
	if err != nil {
		return model.Purchase{}, err
	}

	purchase := model.Purchase{
		ID:           uuid.NewString(),
		ItemID:       item,
		Cost:         entry.Cost,
		BalanceAfter: next.TotalMinutesFocused,
		CreatedAt:    time.Now().UTC(),
	}

	writeErr := l.store.RecordPurchase(ctx, next, purchase)

	l.mu.Lock()
	defer l.mu.Unlock()

	deferred := l.deferred
	l.purchasing = false
	l.deferred = 0

	if writeErr != nil {
		// The in-memory balance already holds the deferred minutes.
		if deferred > 0 {
			l.progress.Revision++
			l.enqueueLocked(l.progress.Clone())
		}
		return model.Purchase{}, fmt.Errorf("record purchase: %w", writeErr)
	}

	l.progress = next
	if deferred > 0 {
		l.progress.TotalMinutesFocused += deferred
		l.progress.Revision++
		l.enqueueLocked(l.progress.Clone())
	}
	l.logger.Info("reward unlocked", "item", item, "cost", entry.Cost, "balance", l.progress.TotalMinutesFocused)
	return purchase, nil
}

// stagePurchase validates the purchase and builds the ledger to write. It
// marks the ledger as purchasing so concurrent accruals are deferred.
func (l *Ledger) stagePurchase(entry model.CatalogEntry) (model.Progress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.progress.Owns(entry.ID) {
		return model.Progress{}, fmt.Errorf("%w: %q", ErrAlreadyOwned, entry.ID)
	}
	if l.progress.TotalMinutesFocused < entry.Cost {
		return model.Progress{}, fmt.Errorf("%w: %q costs %d, balance is %d",
			ErrInsufficientBalance, entry.ID, entry.Cost, l.progress.TotalMinutesFocused)
	}

	next := l.progress.Clone()
	next.TotalMinutesFocused -= entry.Cost
	next.UnlockedItems = append(next.UnlockedItems, entry.ID)
	next.Revision++

	l.purchasing = true
	l.deferred = 0
	return next, nil
}

// Close flushes pending writes and stops the background writer.
func (l *Ledger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.pending)
	l.mu.Unlock()

	<-l.done
}

// enqueueLocked keeps only the newest unsaved snapshot.
func (l *Ledger) enqueueLocked(progress model.Progress) {
	if l.closed {
		l.persist(progress)
		return
	}
	select {
	case l.pending <- progress:
	default:
		select {
		case <-l.pending:
		default:
		}
		l.pending <- progress
	}
}

func (l *Ledger) writeLoop() {
	defer close(l.done)
	for progress := range l.pending {
		l.persist(progress)
	}
}

func (l *Ledger) persist(progress model.Progress) {
	if err := l.store.SaveProgress(context.Background(), progress); err != nil {
		l.logger.Error("save progress", "error", err, "revision", progress.Revision)
	}
}
